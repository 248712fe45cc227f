package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/transfmt/pkg/convert"
	"github.com/dmitrymomot/transfmt/pkg/formats"
)

type formatInfo struct {
	ID          string `json:"id"`
	Extension   string `json:"extension"`
	ContentType string `json:"content_type"`
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	list := s.svc.Formats()
	out := make([]formatInfo, len(list))
	for i, f := range list {
		out[i] = formatInfo{ID: f.String(), Extension: f.Extension(), ContentType: convert.ContentType(f)}
	}
	writeJSON(w, http.StatusOK, map[string]any{"formats": out})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	itf, err := s.svc.Import(r.Context(), chi.URLParam(r, "format"), body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, itf)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if !s.svc.Supports(format) {
		s.writeError(w, r, unsupported(format))
		return
	}

	var itf formats.ITF
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&itf); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			s.writeError(w, r, err)
			return
		}
		s.writeError(w, r, badRequest(CodeInvalidJSON, "request body is not a valid translation document", err))
		return
	}
	if dec.More() {
		s.writeError(w, r, badRequest(CodeInvalidJSON, "request body has trailing data", nil))
		return
	}

	out, err := s.svc.Export(r.Context(), format, &itf)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondFile(w, r, format, out)
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	to := chi.URLParam(r, "to")
	out, err := s.svc.Convert(r.Context(), chi.URLParam(r, "from"), to, body, r.URL.Query().Get("locale"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondFile(w, r, to, out)
}

// respondFile writes an exported file, or uploads it and returns its
// location when the request asks for ?store=true.
func (s *Server) respondFile(w http.ResponseWriter, r *http.Request, format string, data []byte) {
	f, err := formats.ParseFormat(format)
	if err != nil {
		f = formats.Format(format)
	}

	if store, _ := strconv.ParseBool(r.URL.Query().Get("store")); store {
		art, err := s.svc.Store(r.Context(), f.String(), data)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, art)
		return
	}

	w.Header().Set("Content-Type", convert.ContentType(f))
	w.Header().Set("Content-Disposition", `attachment; filename="translations`+f.Extension()+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		s.logger.WarnContext(r.Context(), "failed to write response", slog.String("error", err.Error()))
	}
}

func unsupported(format string) error {
	return &HTTPError{
		Err:       formats.ErrUnsupportedFormat,
		Code:      http.StatusNotFound,
		ErrorCode: CodeUnsupportedFormat,
		Message:   "unsupported format: " + strconv.Quote(format),
	}
}
