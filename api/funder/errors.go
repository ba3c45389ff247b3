package funder

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedFormat is returned for file extensions no reader handles.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// MissingColumnsError lists every required column absent from a file's
// header, so the caller can tell "wrong file entirely" from minor drift.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// ConversionError reports a cell that could not be read as a currency value.
type ConversionError struct {
	Column string
	Value  string
	Err    error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("type conversion error for column %s: failed to parse %q: %v", e.Column, e.Value, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}
