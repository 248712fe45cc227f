package formats_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/transfmt/pkg/formats"
)

type stubCodec struct{}

func (stubCodec) Parse(data []byte) (*formats.ITF, error) {
	return &formats.ITF{Translations: []formats.Entry{{Term: "raw", Translation: string(data)}}}, nil
}

func (stubCodec) Export(itf *formats.ITF) ([]byte, error) {
	return []byte("custom"), nil
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("registers built-in formats", func(t *testing.T) {
		t.Parallel()
		reg, err := formats.New()
		require.NoError(t, err)

		assert.Equal(t, []formats.Format{
			formats.AndroidXML,
			formats.CSV,
			formats.JSONFlat,
			formats.JSONNested,
			formats.PHP,
			formats.PHPFlat,
			formats.PO,
			formats.Properties,
			formats.RESX,
			formats.Strings,
			formats.XLIFF12,
			formats.YAMLFlat,
			formats.YAMLNested,
		}, reg.Formats())
		assert.Equal(t, formats.DefaultConfig(), reg.Config())
	})

	t.Run("invalid options", func(t *testing.T) {
		t.Parallel()
		cases := []formats.Option{
			formats.WithMaxNestedLevels(0),
			formats.WithMaxNestedLevels(-1),
			formats.WithConfig(formats.Config{MaxNestedLevels: -5}),
			formats.WithCodec("", stubCodec{}),
			formats.WithCodec("custom", nil),
		}
		for _, opt := range cases {
			reg, err := formats.New(opt)
			require.ErrorIs(t, err, formats.ErrInvalidConfig)
			require.Nil(t, reg)
		}
	})

	t.Run("with config fills defaults", func(t *testing.T) {
		t.Parallel()
		reg, err := formats.New(formats.WithConfig(formats.Config{MaxNestedLevels: 3}))
		require.NoError(t, err)
		assert.Equal(t, formats.Config{MaxNestedLevels: 3, XLIFFVersion: "1.2"}, reg.Config())
	})

	t.Run("max nested levels reaches nested codecs", func(t *testing.T) {
		t.Parallel()
		reg, err := formats.New(formats.WithMaxNestedLevels(2))
		require.NoError(t, err)

		for _, format := range []string{"jsonnested", "yamlnested", "php"} {
			deep, err := reg.Serialize(format, &formats.ITF{Translations: []formats.Entry{{Term: "a.b.c", Translation: "x"}}})
			require.NoError(t, err)

			_, err = reg.Parse(format, deep)
			require.ErrorIs(t, err, formats.ErrMaxDepthExceeded, format)
		}
	})

	t.Run("custom codec", func(t *testing.T) {
		t.Parallel()
		reg, err := formats.New(
			formats.WithCodec("custom", stubCodec{}),
			formats.WithCodec(formats.CSV, stubCodec{}),
		)
		require.NoError(t, err)

		assert.True(t, reg.Supports("custom"))
		out, err := reg.Serialize("csv", &formats.ITF{})
		require.NoError(t, err)
		assert.Equal(t, "custom", string(out))
	})
}

func TestRegistryDispatch(t *testing.T) {
	t.Parallel()

	reg, err := formats.New()
	require.NoError(t, err)

	t.Run("unsupported format", func(t *testing.T) {
		t.Parallel()
		for _, format := range []string{"", "xml", "xliff20", "json"} {
			_, err := reg.Parse(format, []byte("{}"))
			require.ErrorIs(t, err, formats.ErrUnsupportedFormat, format)

			_, err = reg.Serialize(format, &formats.ITF{})
			require.ErrorIs(t, err, formats.ErrUnsupportedFormat, format)
			assert.False(t, reg.Supports(format))
		}
	})

	t.Run("identifier is case insensitive", func(t *testing.T) {
		t.Parallel()
		itf, err := reg.Parse(" JSONFlat ", []byte(`{"a": "b"}`))
		require.NoError(t, err)
		assert.Equal(t, 1, itf.Len())
	})

	t.Run("malformed input is distinguishable", func(t *testing.T) {
		t.Parallel()
		itf, err := reg.Parse("jsonflat", []byte(`[1,2,3]`))
		require.Error(t, err)
		require.Nil(t, itf)
		assert.True(t, errors.Is(err, formats.ErrMalformedInput))
		assert.False(t, errors.Is(err, formats.ErrUnsupportedFormat))
	})

	t.Run("serialize rejects empty terms", func(t *testing.T) {
		t.Parallel()
		_, err := reg.Serialize("csv", &formats.ITF{Translations: []formats.Entry{{Term: "", Translation: "x"}}})
		require.ErrorIs(t, err, formats.ErrMalformedInput)
	})

	t.Run("serialize accepts nil", func(t *testing.T) {
		t.Parallel()
		out, err := reg.Serialize("jsonflat", nil)
		require.NoError(t, err)
		assert.Equal(t, "{}", string(out))
	})

	t.Run("concurrent use", func(t *testing.T) {
		t.Parallel()
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for _, format := range reg.Formats() {
					out, err := reg.Serialize(format.String(), sampleITF())
					assert.NoError(t, err)
					_, err = reg.Parse(format.String(), out)
					assert.NoError(t, err)
				}
			}()
		}
		wg.Wait()
	})
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	f, err := formats.ParseFormat(" YAMLNested")
	require.NoError(t, err)
	assert.Equal(t, formats.YAMLNested, f)
	assert.Equal(t, ".yml", f.Extension())

	_, err = formats.ParseFormat("docx")
	require.ErrorIs(t, err, formats.ErrUnsupportedFormat)

	assert.Equal(t, ".xliff", formats.XLIFF12.Extension())
	assert.Equal(t, ".txt", formats.Format("custom").Extension())
}
