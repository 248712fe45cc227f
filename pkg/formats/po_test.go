package formats_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/transfmt/pkg/formats"
)

func TestPOParse(t *testing.T) {
	t.Parallel()

	t.Run("fixture", func(t *testing.T) {
		t.Parallel()
		itf, err := formats.NewPO().Parse(fixture(t, "messages.po"))
		require.NoError(t, err)
		assert.Equal(t, "de", itf.Iso)
		assert.Equal(t, []formats.Entry{
			{Term: "hello", Translation: "Hallo"},
			{Term: "file.open", Translation: "Datei öffnen"},
			{Term: "apple", Translation: "Apfel"},
			{Term: "empty", Translation: ""},
		}, itf.Translations)
	})

	t.Run("entries without blank lines", func(t *testing.T) {
		t.Parallel()
		in := "msgid \"a\"\nmsgstr \"1\"\nmsgid \"b\"\nmsgstr \"2\"\n"
		itf, err := formats.NewPO().Parse([]byte(in))
		require.NoError(t, err)
		assert.Equal(t, []formats.Entry{
			{Term: "a", Translation: "1"},
			{Term: "b", Translation: "2"},
		}, itf.Translations)
	})

	t.Run("empty catalog", func(t *testing.T) {
		t.Parallel()
		itf, err := formats.NewPO().Parse([]byte("# nothing yet\n"))
		require.NoError(t, err)
		assert.Zero(t, itf.Len())
		assert.Empty(t, itf.Iso)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		t.Parallel()
		inputs := []string{
			"msgid \"a\"\n",
			"msgstr \"a\"\n",
			"msgid \"a\"\nmsgid \"b\"\nmsgstr \"c\"\n",
			"\"orphan continuation\"\n",
			"msgid \"a\nmsgstr \"b\"\n",
			"msgid a\nmsgstr \"b\"\n",
			"msgid \"a\"\nmsgstr \"b\" trailing\n",
			"msgid \"a\"\nmsgstr \"bad \\z escape\"\n",
			"msgid \"a\"\nmsgstr \"b\"\nfoo \"c\"\n",
			"msgid \"a\"\nmsgstr[0] \"b\"\n",
			"msgid \"a\"\nmsgid_plural \"as\"\nmsgstr \"b\"\n",
			"msgctxt \"ctx\"\nmsgid \"\"\nmsgstr \"b\"\n",
		}
		for _, in := range inputs {
			itf, err := formats.NewPO().Parse([]byte(in))
			require.ErrorIs(t, err, formats.ErrMalformedInput, "input %q", in)
			require.Nil(t, itf, "input %q", in)
		}
	})
}

func TestPOExport(t *testing.T) {
	t.Parallel()

	out, err := formats.NewPO().Export(&formats.ITF{
		Iso: "de_DE",
		Translations: []formats.Entry{
			{Term: "hello", Translation: "Hallo \"Welt\""},
			{Term: "multi", Translation: "eins\nzwei"},
		},
	})
	require.NoError(t, err)

	want := `msgid ""
msgstr ""
"Content-Type: text/plain; charset=utf-8\n"
"Content-Transfer-Encoding: 8bit\n"
"MIME-Version: 1.0\n"
"Language: de_DE\n"

msgid "hello"
msgstr "Hallo \"Welt\""

msgid "multi"
msgstr ""
"eins\n"
"zwei"
`
	assert.Equal(t, want, string(out))
}

func TestPOExportWithoutLocale(t *testing.T) {
	t.Parallel()

	out, err := formats.NewPO().Export(&formats.ITF{Translations: []formats.Entry{{Term: "a", Translation: "b"}}})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "Language:")
}
