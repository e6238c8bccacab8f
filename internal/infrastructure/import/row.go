package csvimport

import "strings"

// Row is one data row keyed by header
type Row struct {
	LineNumber int
	Data       map[string]string
	folded     map[string]string
}

func newRow(line int, headers, record []string) *Row {
	row := &Row{
		LineNumber: line,
		Data:       make(map[string]string, len(headers)),
		folded:     make(map[string]string, len(headers)),
	}
	for i, h := range headers {
		if h == "" {
			continue
		}
		var v string
		if i < len(record) {
			v = strings.TrimSpace(record[i])
		}
		row.Data[h] = v
		// First column wins when two headers differ only in case.
		key := strings.ToLower(h)
		if _, dup := row.folded[key]; !dup {
			row.folded[key] = v
		}
	}
	return row
}

// NewRow builds a row from a header to value map
func NewRow(line int, data map[string]string) *Row {
	headers := make([]string, 0, len(data))
	record := make([]string, 0, len(data))
	for h, v := range data {
		headers = append(headers, h)
		record = append(record, v)
	}
	return newRow(line, headers, record)
}

// Get returns the value of a column. Header names match case-insensitively.
func (r *Row) Get(header string) string {
	if v, ok := r.Data[header]; ok {
		return v
	}
	return r.folded[strings.ToLower(header)]
}

// FirstOf returns the first non-empty value among the headers
func (r *Row) FirstOf(headers ...string) string {
	for _, h := range headers {
		if v := r.Get(h); v != "" {
			return v
		}
	}
	return ""
}

// IsEmpty returns true if the row has no non-empty values
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}
