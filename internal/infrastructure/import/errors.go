package csvimport

import (
	"errors"
	"fmt"
)

// FileError means the upload as a whole could not be read as a table
type FileError struct {
	reason string
}

func (e *FileError) Error() string { return e.reason }

var (
	ErrEmptyFile           = &FileError{reason: "file is empty"}
	ErrMissingHeader       = &FileError{reason: "file missing header row"}
	ErrUnsupportedFileType = &FileError{reason: "unsupported file type, expected csv, xls or xlsx"}
	ErrUnreadableFile      = &FileError{reason: "file could not be read"}
)

// IsFileError reports whether err, or anything it wraps, is a FileError
func IsFileError(err error) bool {
	var fe *FileError
	return errors.As(err, &fe)
}

// RowError is a row rejected before it reached the store
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
}

// RowErrorf builds a RowError for the given sheet line
func RowErrorf(row int, column, format string, args ...any) RowError {
	return RowError{Row: row, Column: column, Message: fmt.Sprintf(format, args...)}
}

func (e RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %s", e.Row, e.Message)
	}
	return fmt.Sprintf("line %d (%s): %s", e.Row, e.Column, e.Message)
}
