package csvtable

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// ErrMalformedInput is returned when input has no header row plus at least
// one data row.
var ErrMalformedInput = eris.New("csvtable: input must include a header row and at least one data row")

// Record is one data row keyed by normalized header. Line is 1-based among
// non-blank rows with the header on line 1.
type Record struct {
	Line   int
	Fields map[string]string
}

// Get returns the first non-empty value among keys. Exports name the same
// column differently, so callers pass every alias they accept.
func (r Record) Get(keys ...string) string {
	for _, k := range keys {
		if v := r.Fields[k]; v != "" {
			return v
		}
	}
	return ""
}

// Table is a parsed export: the normalized header and its records in input
// order.
type Table struct {
	Header  []string
	Records []Record
}

var headerRe = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeHeader turns a header cell into a lookup key: lowercase, runs of
// non-alphanumerics joined by single underscores. "Seed Source-URL" becomes
// "seed_source_url".
func NormalizeHeader(s string) string {
	s = strings.TrimSpace(headerRe.ReplaceAllString(strings.ToLower(s), " "))
	return strings.Join(strings.Fields(s), "_")
}

// Build drops blank rows, takes the first remaining row as the header and
// maps every later row onto it. Cells are trimmed; missing cells read as "".
func Build(rows [][]string) (*Table, error) {
	var kept [][]string
	for _, row := range rows {
		if !isBlank(row) {
			kept = append(kept, row)
		}
	}
	if len(kept) < 2 {
		return nil, eris.Wrapf(ErrMalformedInput, "found %d non-blank rows", len(kept))
	}

	header := make([]string, len(kept[0]))
	for i, col := range kept[0] {
		header[i] = NormalizeHeader(col)
	}

	records := make([]Record, 0, len(kept)-1)
	for i, cols := range kept[1:] {
		fields := make(map[string]string, len(header))
		for j, key := range header {
			var v string
			if j < len(cols) {
				v = strings.TrimSpace(cols[j])
			}
			fields[key] = v
		}
		records = append(records, Record{Line: i + 2, Fields: fields})
	}

	return &Table{Header: header, Records: records}, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Read parses CSV text from r into a Table.
func Read(r io.Reader) (*Table, error) {
	rows, err := NewScanner(r).ReadAll()
	if err != nil {
		return nil, err
	}
	return Build(rows)
}

// Parse parses CSV text into a Table.
func Parse(raw string) (*Table, error) {
	return Read(strings.NewReader(raw))
}

// ReadFile loads a table from path. Files ending in .xlsx are read from
// their first worksheet; anything else is treated as CSV.
func ReadFile(path string) (*Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		rows, err := readXLSX(path)
		if err != nil {
			return nil, err
		}
		return Build(rows)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "csvtable: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	return Read(f)
}

func readXLSX(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "csvtable: open xlsx %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Wrapf(ErrMalformedInput, "xlsx %s has no sheets", path)
	}

	var rows [][]string
	for _, row := range f.Sheets[0].Rows {
		if row == nil {
			continue
		}
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}
