package formats_test

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/transfmt/pkg/formats"
)

func TestCSVParse(t *testing.T) {
	t.Parallel()

	t.Run("two columns per row", func(t *testing.T) {
		t.Parallel()
		in := "greeting,Hello\n\"with, comma\",\"say \"\"hi\"\"\"\nempty,\n"
		itf, err := formats.NewCSV().Parse([]byte(in))
		require.NoError(t, err)
		assert.Equal(t, []formats.Entry{
			{Term: "greeting", Translation: "Hello"},
			{Term: "with, comma", Translation: `say "hi"`},
			{Term: "empty", Translation: ""},
		}, itf.Translations)
	})

	t.Run("line breaks inside cells come back as LF", func(t *testing.T) {
		t.Parallel()
		codec := formats.NewCSV()
		out, err := codec.Export(&formats.ITF{Translations: []formats.Entry{
			{Term: "crlf", Translation: "a\r\nb"},
			{Term: "lf", Translation: "a\nb"},
		}})
		require.NoError(t, err)

		itf, err := codec.Parse(out)
		require.NoError(t, err)
		assert.Equal(t, []formats.Entry{
			{Term: "crlf", Translation: "a\nb"},
			{Term: "lf", Translation: "a\nb"},
		}, itf.Translations)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		t.Parallel()
		inputs := []string{
			"",
			"\n",
			"only-one-column\n",
			"a,b\nc\n",
			"a,b,c\n",
			"a,b\nc,d,e\n",
			",no term\n",
			"\"unterminated,b\n",
		}
		for _, in := range inputs {
			itf, err := formats.NewCSV().Parse([]byte(in))
			require.ErrorIs(t, err, formats.ErrMalformedInput, "input %q", in)
			require.Nil(t, itf, "input %q", in)
		}
	})
}

func TestCSVExport(t *testing.T) {
	t.Parallel()

	t.Run("no header row", func(t *testing.T) {
		t.Parallel()
		out, err := formats.NewCSV().Export(&formats.ITF{Translations: []formats.Entry{
			{Term: "a", Translation: "x"},
			{Term: "b", Translation: "y, z"},
		}})
		require.NoError(t, err)
		assert.Equal(t, "a,x\nb,\"y, z\"\n", string(out))
	})

	t.Run("neutralizes formula payloads", func(t *testing.T) {
		t.Parallel()
		payloads := []string{
			"=cmd|' /C calc'!A0",
			"+1+1",
			"-2+3",
			"@SUM(A1:A2)",
			"\t=1",
			"\r=1",
		}
		for _, payload := range payloads {
			out, err := formats.NewCSV().Export(&formats.ITF{Translations: []formats.Entry{
				{Term: "term", Translation: payload},
				{Term: payload, Translation: "value"},
			}})
			require.NoError(t, err)

			records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
			require.NoError(t, err)
			require.Len(t, records, 2)

			assert.NotEqual(t, payload, records[0][1], "payload %q", payload)
			assert.Equal(t, "'"+payload, records[0][1])
			assert.NotEqual(t, payload, records[1][0], "payload %q", payload)
			assert.Equal(t, "'"+payload, records[1][0])
		}
	})

	t.Run("keeps ordinary values", func(t *testing.T) {
		t.Parallel()
		out, err := formats.NewCSV().Export(&formats.ITF{Translations: []formats.Entry{
			{Term: "sum", Translation: "a = b"},
		}})
		require.NoError(t, err)
		assert.Equal(t, "sum,a = b\n", string(out))
	})
}
