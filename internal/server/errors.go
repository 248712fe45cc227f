package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/transfmt/pkg/convert"
	"github.com/dmitrymomot/transfmt/pkg/formats"
	"github.com/dmitrymomot/transfmt/pkg/storage"
)

// Error codes returned in the "code" field of error responses.
const (
	CodeBadRequest         = "bad_request"
	CodeInvalidJSON        = "invalid_json"
	CodeMalformedInput     = "malformed_input"
	CodeUnsupportedFormat  = "unsupported_format"
	CodeUnsupportedVersion = "unsupported_version"
	CodeExportConflict     = "export_conflict"
	CodeInvalidLocale      = "invalid_locale"
	CodeBodyTooLarge       = "body_too_large"
	CodeStorageDisabled    = "storage_disabled"
	CodeStorageFailed      = "storage_failed"
	CodeEmptyExport        = "empty_export"
	CodeInternal           = "internal_error"
)

// HTTPError is an error carrying everything needed to render a response.
type HTTPError struct {
	// Err is the underlying error, logged but never exposed for 5xx codes.
	Err       error  `json:"-"`
	Code      int    `json:"-"`
	ErrorCode string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// badRequest builds a 400 error for request-shape problems found by handlers.
func badRequest(code, message string, err error) *HTTPError {
	return &HTTPError{Err: err, Code: http.StatusBadRequest, ErrorCode: code, Message: message}
}

// toHTTPError classifies err. Unsupported version is checked before
// malformed input because a rejected XLIFF 2.0 document wraps both.
func toHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	e := &HTTPError{Err: err, Message: err.Error()}
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		e.Code, e.ErrorCode = http.StatusRequestEntityTooLarge, CodeBodyTooLarge
	case errors.Is(err, formats.ErrUnsupportedFormat):
		e.Code, e.ErrorCode = http.StatusNotFound, CodeUnsupportedFormat
	case errors.Is(err, formats.ErrUnsupportedVersion):
		e.Code, e.ErrorCode = http.StatusBadRequest, CodeUnsupportedVersion
	case errors.Is(err, formats.ErrExportConflict):
		e.Code, e.ErrorCode = http.StatusConflict, CodeExportConflict
	case errors.Is(err, formats.ErrMalformedInput):
		e.Code, e.ErrorCode = http.StatusBadRequest, CodeMalformedInput
	case errors.Is(err, convert.ErrInvalidLocale):
		e.Code, e.ErrorCode = http.StatusBadRequest, CodeInvalidLocale
	case errors.Is(err, convert.ErrEmptyExport), errors.Is(err, storage.ErrEmptyFile):
		e.Code, e.ErrorCode = http.StatusUnprocessableEntity, CodeEmptyExport
	case errors.Is(err, convert.ErrStoreDisabled):
		e.Code, e.ErrorCode = http.StatusNotImplemented, CodeStorageDisabled
	case errors.Is(err, storage.ErrAccessDenied),
		errors.Is(err, storage.ErrUploadFailed),
		errors.Is(err, storage.ErrPresignFailed),
		errors.Is(err, storage.ErrNotFound):
		e.Code, e.ErrorCode = http.StatusBadGateway, CodeStorageFailed
		e.Message = "export storage is unavailable"
	default:
		e.Code, e.ErrorCode = http.StatusInternalServerError, CodeInternal
		e.Message = http.StatusText(http.StatusInternalServerError)
	}
	return e
}

// writeError renders err as JSON and logs server-side failures.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := toHTTPError(err)
	e.RequestID = RequestIDFromContext(r.Context())

	if e.Code >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed",
			slog.Int("status", e.Code),
			slog.String("error", err.Error()),
		)
	}

	writeJSON(w, e.Code, struct {
		Error *HTTPError `json:"error"`
	}{e})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
