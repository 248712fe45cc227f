package formats_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/transfmt/pkg/formats"
)

func TestYAMLFlat(t *testing.T) {
	t.Parallel()

	t.Run("parse keeps order", func(t *testing.T) {
		t.Parallel()
		itf, err := formats.NewYAMLFlat().Parse([]byte("zeta: last letter\nalpha: 'first'\nempty: \"\"\n"))
		require.NoError(t, err)
		assert.Equal(t, []formats.Entry{
			{Term: "zeta", Translation: "last letter"},
			{Term: "alpha", Translation: "first"},
			{Term: "empty", Translation: ""},
		}, itf.Translations)
	})

	t.Run("export", func(t *testing.T) {
		t.Parallel()
		out, err := formats.NewYAMLFlat().Export(&formats.ITF{Translations: []formats.Entry{
			{Term: "a.b", Translation: "Hello"},
			{Term: "count", Translation: "42"},
		}})
		require.NoError(t, err)
		assert.Equal(t, "a.b: Hello\ncount: \"42\"\n", string(out))
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		t.Parallel()
		inputs := []string{
			"",
			"\n\n",
			"- a\n- b\n",
			"just a string",
			"key: 1\n",
			"key: true\n",
			"key: ~\n",
			"key:\n  nested: value\n",
			"key: [a, b]\n",
			"1: numeric key\n",
			"key: \"unterminated\n",
		}
		for _, in := range inputs {
			_, err := formats.NewYAMLFlat().Parse([]byte(in))
			require.ErrorIs(t, err, formats.ErrMalformedInput, "input %q", in)
		}
	})
}

func TestYAMLNested(t *testing.T) {
	t.Parallel()

	codec := formats.NewYAMLNested(formats.DefaultMaxNestedLevels)

	t.Run("parse", func(t *testing.T) {
		t.Parallel()
		in := "auth:\n  failed: Wrong credentials\n  form:\n    email: E-mail\ntitle: Home\n"
		itf, err := codec.Parse([]byte(in))
		require.NoError(t, err)
		assert.Equal(t, []formats.Entry{
			{Term: "auth.failed", Translation: "Wrong credentials"},
			{Term: "auth.form.email", Translation: "E-mail"},
			{Term: "title", Translation: "Home"},
		}, itf.Translations)
	})

	t.Run("follows aliases", func(t *testing.T) {
		t.Parallel()
		in := "base: &base\n  ok: OK\ncopy: *base\n"
		itf, err := codec.Parse([]byte(in))
		require.NoError(t, err)
		assert.Equal(t, []formats.Entry{
			{Term: "base.ok", Translation: "OK"},
			{Term: "copy.ok", Translation: "OK"},
		}, itf.Translations)
	})

	t.Run("alias expansion is bounded", func(t *testing.T) {
		t.Parallel()
		var b strings.Builder
		b.WriteString("l0: &l0\n")
		for k := range 8 {
			fmt.Fprintf(&b, "  k%d: v\n", k)
		}
		for level := 1; level < 8; level++ {
			fmt.Fprintf(&b, "l%d: &l%d\n", level, level)
			for k := range 8 {
				fmt.Fprintf(&b, "  a%d: *l%d\n", k, level-1)
			}
		}

		itf, err := codec.Parse([]byte(b.String()))
		require.ErrorIs(t, err, formats.ErrMalformedInput)
		require.Nil(t, itf)
		assert.Contains(t, err.Error(), "aliases")
	})

	t.Run("blank multi-line values", func(t *testing.T) {
		t.Parallel()
		in := &formats.ITF{Translations: []formats.Entry{
			{Term: "a.nl", Translation: "\n"},
			{Term: "a.nls", Translation: "\n\n"},
			{Term: "a.space", Translation: " \n"},
			{Term: "a.tail", Translation: "a\n\n"},
		}}
		out, err := codec.Export(in)
		require.NoError(t, err)
		assert.Contains(t, string(out), `nl: "\n"`)

		itf, err := codec.Parse(out)
		require.NoError(t, err)
		assert.Equal(t, in.Translations, itf.Translations)
	})

	t.Run("export", func(t *testing.T) {
		t.Parallel()
		out, err := codec.Export(&formats.ITF{Translations: []formats.Entry{
			{Term: "auth.failed", Translation: "Wrong credentials"},
			{Term: "title", Translation: "Home"},
			{Term: "auth.form.email", Translation: "E-mail"},
		}})
		require.NoError(t, err)
		assert.Equal(t, "auth:\n  failed: Wrong credentials\n  form:\n    email: E-mail\ntitle: Home\n", string(out))
	})

	t.Run("depth boundary", func(t *testing.T) {
		t.Parallel()
		build := func(levels int) []byte {
			var b strings.Builder
			for i := 0; i < levels-1; i++ {
				b.WriteString(strings.Repeat(" ", i) + "k:\n")
			}
			b.WriteString(strings.Repeat(" ", levels-1) + "leaf: v\n")
			return []byte(b.String())
		}

		_, err := codec.Parse(build(formats.DefaultMaxNestedLevels))
		require.NoError(t, err)

		_, err = codec.Parse(build(formats.DefaultMaxNestedLevels + 1))
		require.ErrorIs(t, err, formats.ErrMaxDepthExceeded)
	})

	t.Run("conflict on export", func(t *testing.T) {
		t.Parallel()
		_, err := codec.Export(&formats.ITF{Translations: []formats.Entry{
			{Term: "a", Translation: "x"},
			{Term: "a.b", Translation: "y"},
		}})
		require.ErrorIs(t, err, formats.ErrExportConflict)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		t.Parallel()
		inputs := []string{
			"",
			"- a\n",
			"a:\n  b: 1\n",
			"a:\n  - x\n",
			"a:\n  b: null\n",
		}
		for _, in := range inputs {
			_, err := codec.Parse([]byte(in))
			require.ErrorIs(t, err, formats.ErrMalformedInput, "input %q", in)
		}
	})
}
