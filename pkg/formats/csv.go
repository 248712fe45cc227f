package formats

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// formulaTriggers are leading characters that make spreadsheet software
// evaluate a cell as a formula.
const formulaTriggers = "=+-@\t\r"

// formulaGuard is prepended to cells that start with a formula trigger.
const formulaGuard = "'"

// CSVCodec handles two-column term,translation files without a header row.
type CSVCodec struct{}

// NewCSV creates the csv codec.
func NewCSV() *CSVCodec {
	return &CSVCodec{}
}

// Parse reads rows of exactly two columns. Any row with a different column
// count fails the whole parse.
func (c *CSVCodec) Parse(data []byte) (*ITF, error) {
	data = trimBOM(data)
	if err := requireNonBlank(data); err != nil {
		return nil, err
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = 2
	r.ReuseRecord = true

	itf := &ITF{}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformed(err)
		}
		line, _ := r.FieldPos(0)
		if record[0] == "" {
			return nil, malformedf("line %d: empty term", line)
		}
		if err := itf.add(record[0], record[1]); err != nil {
			return nil, err
		}
	}
	return itf, nil
}

// Export writes one row per folded entry. Cells that a spreadsheet would
// evaluate as a formula are prefixed with a single quote.
func (c *CSVCodec) Export(itf *ITF) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, e := range itf.fold() {
		if err := w.Write([]string{neutralizeFormula(e.Term), neutralizeFormula(e.Translation)}); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func neutralizeFormula(cell string) string {
	if cell != "" && strings.ContainsRune(formulaTriggers, rune(cell[0])) {
		return formulaGuard + cell
	}
	return cell
}
