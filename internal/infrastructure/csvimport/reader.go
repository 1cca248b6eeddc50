// Package csvimport reads spreadsheet exports. Excel and Google Sheets
// produce UTF-8 with or without a BOM, UTF-16 with a BOM ("Unicode text"),
// or Windows-1252 from older Excel builds; all of them come out as UTF-8.
package csvimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	ErrEmptyFile     = errors.New("CSV file is empty")
	ErrMissingHeader = errors.New("CSV file missing header row")
)

// RowError locates a record the csv package could not parse
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

func (e *RowError) Unwrap() error { return e.Err }

// Option configures a Reader
type Option func(*Reader)

// Columns names fields by position instead of by the header row, which is
// then skipped. Short records are padded with empty strings and extra
// fields are dropped.
func Columns(names ...string) Option {
	return func(r *Reader) { r.columns = names }
}

// KeepSpace leaves surrounding whitespace on field values
func KeepSpace() Option {
	return func(r *Reader) { r.trim = false }
}

// Comma sets the field delimiter
func Comma(c rune) Option {
	return func(r *Reader) { r.csv.Comma = c }
}

// Strict rejects stray quotes inside unquoted fields
func Strict() Option {
	return func(r *Reader) { r.csv.LazyQuotes = false }
}

// Reader yields one Row per record
type Reader struct {
	csv     *csv.Reader
	columns []string
	trim    bool
	header  bool
	line    int
}

// NewReader detects the encoding from the first 4 KiB of src
func NewReader(src io.Reader, opts ...Option) (*Reader, error) {
	text, err := decode(src)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(text)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	r := &Reader{csv: cr, trim: true}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func decode(src io.Reader) (io.Reader, error) {
	buf := bufio.NewReaderSize(src, 4096)
	head, err := buf.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("read CSV: %w", err)
	}
	if len(head) == 0 {
		return nil, ErrEmptyFile
	}

	switch {
	case bytes.HasPrefix(head, []byte{0xEF, 0xBB, 0xBF}),
		bytes.HasPrefix(head, []byte{0xFF, 0xFE}),
		bytes.HasPrefix(head, []byte{0xFE, 0xFF}):
		return transform.NewReader(buf, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	case validPrefix(head, len(head) == 4096):
		return buf, nil
	default:
		return transform.NewReader(buf, charmap.Windows1252.NewDecoder()), nil
	}
}

// validPrefix tolerates a multi-byte rune cut off by the peek window
func validPrefix(b []byte, truncated bool) bool {
	if truncated {
		for i := 0; i < utf8.UTFMax-1 && len(b) > 0 && !utf8.Valid(b); i++ {
			b = b[:len(b)-1]
		}
	}
	return utf8.Valid(b)
}

// Header consumes the first record. It returns the column names in
// effect, which are the Columns option when one was given.
func (r *Reader) Header() ([]string, error) {
	record, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	r.line, r.header = 1, true
	if r.columns == nil {
		r.columns = make([]string, len(record))
		for i, h := range record {
			r.columns[i] = strings.TrimSpace(h)
		}
	}
	return r.columns, nil
}

// Row is one record keyed by column
type Row struct {
	Line   int
	Fields map[string]string
}

// Get returns the value for column, or "" when the record was short
func (r Row) Get(column string) string { return r.Fields[column] }

// Blank reports whether every field is whitespace
func (r Row) Blank() bool {
	for _, v := range r.Fields {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Next reads the next record, reading the header first if Header was not
// called. It returns io.EOF at the end of input.
func (r *Reader) Next() (Row, error) {
	if !r.header {
		if _, err := r.Header(); err != nil {
			return Row{}, err
		}
	}
	record, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		return Row{}, io.EOF
	}
	r.line++
	if err != nil {
		return Row{}, &RowError{Line: r.line, Err: err}
	}

	row := Row{Line: r.line, Fields: make(map[string]string, len(r.columns))}
	for i, col := range r.columns {
		var v string
		if i < len(record) {
			v = record[i]
		}
		if r.trim {
			v = strings.TrimSpace(v)
		}
		row.Fields[col] = v
	}
	return row, nil
}

// All reads the remaining records, skipping blank ones
func (r *Reader) All() ([]Row, error) {
	var rows []Row
	for {
		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		if !row.Blank() {
			rows = append(rows, row)
		}
	}
}
