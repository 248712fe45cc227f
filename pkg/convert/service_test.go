package convert_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/transfmt/pkg/convert"
	"github.com/dmitrymomot/transfmt/pkg/formats"
	"github.com/dmitrymomot/transfmt/pkg/logger"
	"github.com/dmitrymomot/transfmt/pkg/sanitizer"
	"github.com/dmitrymomot/transfmt/pkg/storage"
)

func newService(t *testing.T, opts ...convert.Option) *convert.Service {
	t.Helper()
	reg, err := formats.New()
	require.NoError(t, err)
	svc, err := convert.New(reg, opts...)
	require.NoError(t, err)
	return svc
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := convert.New(nil)
	require.ErrorIs(t, err, convert.ErrInvalidConfig)

	reg, err := formats.New()
	require.NoError(t, err)

	_, err = convert.New(reg, convert.WithConcurrency(0))
	require.ErrorIs(t, err, convert.ErrInvalidConfig)

	_, err = convert.New(reg, convert.WithLogger(nil))
	require.ErrorIs(t, err, convert.ErrInvalidConfig)
}

func TestImportExport(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	ctx := context.Background()

	itf, err := svc.Import(ctx, "jsonnested", []byte(`{"a":{"b":"x"},"c":"y"}`))
	require.NoError(t, err)
	assert.Equal(t, []formats.Entry{{Term: "a.b", Translation: "x"}, {Term: "c", Translation: "y"}}, itf.Translations)

	out, err := svc.Export(ctx, "jsonflat", itf)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a.b":"x","c":"y"}`, string(out))

	_, err = svc.Import(ctx, "docx", nil)
	require.ErrorIs(t, err, formats.ErrUnsupportedFormat)

	_, err = svc.Import(ctx, "jsonflat", []byte(`{`))
	require.ErrorIs(t, err, formats.ErrMalformedInput)
}

func TestExportValidatesLocale(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	ctx := context.Background()

	for _, iso := range []string{"", "de", "de_DE", "pt-BR", "zh-Hant-TW"} {
		_, err := svc.Export(ctx, "po", &formats.ITF{Iso: iso})
		require.NoError(t, err, iso)
	}

	for _, iso := range []string{"not a locale", "de__DE", "123456789"} {
		_, err := svc.Export(ctx, "po", &formats.ITF{Iso: iso})
		require.ErrorIs(t, err, convert.ErrInvalidLocale, iso)
	}
}

func TestCanceledContext(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Import(ctx, "jsonflat", []byte(`{}`))
	require.ErrorIs(t, err, context.Canceled)

	_, err = svc.Export(ctx, "jsonflat", &formats.ITF{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestConvert(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	po := []byte("msgid \"\"\nmsgstr \"\"\n\"Language: de\\n\"\n\nmsgid \"hello\"\nmsgstr \"<b>Hallo</b>\"\n")

	t.Run("keeps locale", func(t *testing.T) {
		t.Parallel()
		svc := newService(t)
		out, err := svc.Convert(ctx, "po", "xliff12", po, "")
		require.NoError(t, err)
		assert.Contains(t, string(out), `source-language="de"`)
		assert.Contains(t, string(out), "<target>&lt;b&gt;Hallo&lt;/b&gt;</target>")
	})

	t.Run("locale override", func(t *testing.T) {
		t.Parallel()
		svc := newService(t)
		out, err := svc.Convert(ctx, "po", "po", po, "fr")
		require.NoError(t, err)
		assert.Contains(t, string(out), `"Language: fr\n"`)
	})

	t.Run("sanitizes on import", func(t *testing.T) {
		t.Parallel()
		san, err := sanitizer.New(sanitizer.ModeStrict)
		require.NoError(t, err)

		var buf bytes.Buffer
		log, err := logger.New(&buf, logger.Config{Level: "info"})
		require.NoError(t, err)

		svc := newService(t, convert.WithSanitizer(san), convert.WithLogger(log))
		out, err := svc.Convert(ctx, "po", "jsonflat", po, "")
		require.NoError(t, err)
		assert.JSONEq(t, `{"hello":"Hallo"}`, string(out))
		assert.Contains(t, buf.String(), `"msg":"sanitized translations"`)
	})

	t.Run("unknown target fails before parsing", func(t *testing.T) {
		t.Parallel()
		svc := newService(t)
		_, err := svc.Convert(ctx, "po", "docx", []byte("garbage"), "")
		require.ErrorIs(t, err, formats.ErrUnsupportedFormat)
		require.NotErrorIs(t, err, formats.ErrMalformedInput)
	})

	t.Run("export conflict", func(t *testing.T) {
		t.Parallel()
		svc := newService(t)
		_, err := svc.Convert(ctx, "jsonflat", "jsonnested", []byte(`{"a":"x","a.b":"y"}`), "")
		require.ErrorIs(t, err, formats.ErrExportConflict)
	})
}

func TestConvertFiles(t *testing.T) {
	t.Parallel()

	svc := newService(t, convert.WithConcurrency(2))

	jobs := []convert.FileJob{
		{Name: "a.json", From: "jsonflat", To: "csv", Data: []byte(`{"a":"1"}`)},
		{Name: "broken.json", From: "jsonflat", To: "csv", Data: []byte(`{`)},
		{Name: "b.yml", From: "yamlflat", To: "properties", Data: []byte("b: \"2\"\n")},
		{Name: "c.po", From: "po", To: "docx", Data: nil},
	}

	results, err := svc.ConvertFiles(context.Background(), jobs)
	require.Error(t, err)
	require.ErrorIs(t, err, formats.ErrMalformedInput)
	require.ErrorIs(t, err, formats.ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "broken.json: ")
	assert.Contains(t, err.Error(), "c.po: ")

	require.Len(t, results, 4)
	assert.Equal(t, "a.json", results[0].Name)
	assert.Equal(t, "a,1\n", string(results[0].Output))
	assert.Error(t, results[1].Err)
	assert.Nil(t, results[1].Output)
	assert.Equal(t, "b = 2\n", string(results[2].Output))
	assert.Error(t, results[3].Err)

	results, err = svc.ConvertFiles(context.Background(), jobs[:1])
	require.NoError(t, err)
	require.Len(t, results, 1)

	results, err = svc.ConvertFiles(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	opts    int
	putErr  error
}

func (m *memStore) Put(_ context.Context, r io.Reader, _ int64, opts ...storage.Option) (*storage.FileInfo, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	key := fmt.Sprintf("obj-%d", len(m.objects))
	m.objects[key] = data
	m.opts = len(opts)
	return &storage.FileInfo{Key: key, Size: int64(len(data))}, nil
}

func (m *memStore) URL(_ context.Context, key string, _ ...storage.URLOption) (string, error) {
	return "https://signed.example/" + key, nil
}

func (m *memStore) Delete(context.Context, string) error { return nil }

func (m *memStore) Ping(context.Context) error { return nil }

func TestStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()
		_, err := newService(t).Store(ctx, "po", []byte("x"))
		require.ErrorIs(t, err, convert.ErrStoreDisabled)
	})

	t.Run("uploads and signs", func(t *testing.T) {
		t.Parallel()
		store := &memStore{}
		svc := newService(t, convert.WithStore(store), convert.WithLogger(slog.New(slog.DiscardHandler)))

		art, err := svc.Store(ctx, "po", []byte("msgid \"a\"\nmsgstr \"b\"\n"))
		require.NoError(t, err)
		assert.Equal(t, "obj-0", art.Key)
		assert.Equal(t, "https://signed.example/obj-0", art.URL)
		assert.Equal(t, int64(21), art.Size)
		assert.Equal(t, 3, store.opts)
	})

	t.Run("empty export", func(t *testing.T) {
		t.Parallel()
		store := &memStore{}
		_, err := newService(t, convert.WithStore(store)).Store(ctx, "csv", nil)
		require.ErrorIs(t, err, convert.ErrEmptyExport)
		assert.Zero(t, store.opts)
	})

	t.Run("upload failure", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, convert.WithStore(&memStore{putErr: storage.ErrAccessDenied}))
		_, err := svc.Store(ctx, "po", []byte("x"))
		require.ErrorIs(t, err, storage.ErrAccessDenied)
	})
}

type brokenCodec struct{}

func (brokenCodec) Parse([]byte) (*formats.ITF, error) { return nil, errors.New("boom") }

func (brokenCodec) Export(*formats.ITF) ([]byte, error) { return []byte("x"), nil }

func TestSelfTest(t *testing.T) {
	t.Parallel()

	require.NoError(t, newService(t).SelfTest(context.Background()))

	reg, err := formats.New(formats.WithCodec("broken", brokenCodec{}))
	require.NoError(t, err)
	svc, err := convert.New(reg)
	require.NoError(t, err)

	err = svc.SelfTest(context.Background())
	require.ErrorIs(t, err, convert.ErrSelfTestFailed)
	assert.Contains(t, err.Error(), "broken: boom")
}

func TestContentType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "application/json", convert.ContentType(formats.JSONNested))
	assert.Equal(t, "application/octet-stream", convert.ContentType("custom"))
	for _, f := range newService(t).Formats() {
		assert.NotEqual(t, "application/octet-stream", convert.ContentType(f), f)
	}
}
