// Package csvimport reads order spreadsheets (CSV, XLS, XLSX) into rows and
// normalizes each row into an order patch.
package csvimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// CSVParser handles parsing of CSV files with encoding detection
type CSVParser struct {
	delimiter  rune
	headers    []string
	currentRow int
	reader     *csv.Reader
	decoded    bool
}

// ParserOption is a functional option for CSVParser configuration
type ParserOption func(*CSVParser)

// WithDelimiter sets the field delimiter (default is comma)
func WithDelimiter(d rune) ParserOption {
	return func(p *CSVParser) {
		p.delimiter = d
	}
}

// NewCSVParser creates a parser from r. A UTF-8 BOM is stripped and input
// that is not valid UTF-8 is decoded as Windows-1252, the default encoding
// of spreadsheet exports.
func NewCSVParser(r io.Reader, opts ...ParserOption) (*CSVParser, error) {
	parser := &CSVParser{delimiter: ','}
	for _, opt := range opts {
		opt(parser)
	}

	buf := bufio.NewReader(r)
	bom, err := buf.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = buf.Discard(3)
	}

	isUTF8, err := detectUTF8(buf)
	if err != nil {
		return nil, err
	}

	var src io.Reader = buf
	if !isUTF8 {
		src = charmap.Windows1252.NewDecoder().Reader(buf)
		parser.decoded = true
	}

	parser.reader = csv.NewReader(src)
	parser.reader.Comma = parser.delimiter
	parser.reader.LazyQuotes = true
	parser.reader.TrimLeadingSpace = true
	parser.reader.FieldsPerRecord = -1
	return parser, nil
}

// detectUTF8 inspects the first block of input. A rune cut by the block
// boundary does not count as invalid.
func detectUTF8(r *bufio.Reader) (bool, error) {
	const checkSize = 4096
	content, err := r.Peek(checkSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return false, fmt.Errorf("failed to read file for encoding detection: %w", err)
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return false, ErrEmptyFile
	}
	if len(content) == checkSize {
		for i := 0; i < utf8.UTFMax-1 && !utf8.Valid(content); i++ {
			content = content[:len(content)-1]
		}
	}
	return utf8.Valid(content), nil
}

// Decoded reports whether the input was transcoded from Windows-1252
func (p *CSVParser) Decoded() bool {
	return p.decoded
}

// ParseHeader reads and parses the header row
func (p *CSVParser) ParseHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	p.headers = make([]string, len(record))
	for i, h := range record {
		p.headers[i] = strings.TrimSpace(h)
	}
	p.currentRow = 1
	return nil
}

// Headers returns the parsed header names
func (p *CSVParser) Headers() []string {
	return p.headers
}

// ReadRow reads the next row
func (p *CSVParser) ReadRow() (*Row, error) {
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	p.currentRow++
	if err != nil {
		return nil, fmt.Errorf("error reading row %d: %w", p.currentRow, err)
	}
	return newRow(p.currentRow, p.headers, record), nil
}

// ReadAllRows reads all remaining rows, skipping empty ones
func (p *CSVParser) ReadAllRows() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := p.ReadRow()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
	}
}

// ParseCSV reads a whole CSV document into rows
func ParseCSV(r io.Reader, opts ...ParserOption) ([]*Row, error) {
	parser, err := NewCSVParser(r, opts...)
	if err != nil {
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}
	return parser.ReadAllRows()
}
