// Package csvtable turns delimited exports into header-keyed records. The
// reader is a small quote-aware state machine rather than encoding/csv so
// that ragged rows, bare quotes inside fields and stray carriage returns in
// scraped exports parse the same way every time.
package csvtable

import (
	"bufio"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Scanner yields one raw row at a time from quoted-field CSV text.
//
// Outside quotes a comma ends a field, a newline ends a row and a carriage
// return is dropped. A double quote toggles quote mode; inside quotes a
// doubled quote is a literal quote and every other character, newlines
// included, belongs to the field.
type Scanner struct {
	r   *bufio.Reader
	err error
}

// NewScanner reads from r. A leading byte-order mark is stripped, and UTF-16
// input announced by its BOM is decoded to UTF-8.
func NewScanner(r io.Reader) *Scanner {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	return &Scanner{r: bufio.NewReader(decoded)}
}

// Next returns the next row, or io.EOF once input is exhausted. A trailing
// row without a final newline is returned if it holds any data.
func (s *Scanner) Next() ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}

	var (
		row      []string
		field    strings.Builder
		inQuotes bool
	)
	for {
		c, _, err := s.r.ReadRune()
		if err == io.EOF {
			s.err = io.EOF
			if field.Len() > 0 || len(row) > 0 {
				return append(row, field.String()), nil
			}
			return nil, io.EOF
		}
		if err != nil {
			s.err = eris.Wrap(err, "csvtable: read")
			return nil, s.err
		}

		if inQuotes {
			if c != '"' {
				field.WriteRune(c)
				continue
			}
			next, _, err := s.r.ReadRune()
			if err == nil && next == '"' {
				field.WriteRune('"')
				continue
			}
			if err == nil {
				_ = s.r.UnreadRune()
			}
			inQuotes = false
			continue
		}

		switch c {
		case '"':
			inQuotes = true
		case ',':
			row = append(row, field.String())
			field.Reset()
		case '\n':
			return append(row, field.String()), nil
		case '\r':
		default:
			field.WriteRune(c)
		}
	}
}

// ReadAll drains the scanner.
func (s *Scanner) ReadAll() ([][]string, error) {
	var rows [][]string
	for {
		row, err := s.Next()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}
