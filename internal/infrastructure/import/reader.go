package csvimport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Supported upload extensions
const (
	ExtCSV  = ".csv"
	ExtXLS  = ".xls"
	ExtXLSX = ".xlsx"
)

// IsSupported reports whether filename has a readable extension
func IsSupported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ExtCSV, ExtXLS, ExtXLSX:
		return true
	}
	return false
}

// ReadFile parses the file at path, choosing the reader by the extension of
// originalName (uploads are stored under generated names).
func ReadFile(path, originalName string) ([]*Row, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !IsSupported(originalName) {
		return nil, ErrUnsupportedFileType
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	if ext == ExtCSV {
		return ParseCSV(f)
	}
	return ParseXLSX(f)
}

func trimHeader(h string) string {
	return strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
}
