package combine

import "fmt"

// MissingFieldError reports a record that lacks a required field
type MissingFieldError struct {
	Path   string
	Record int // zero-based position of the record in the file
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: record %d: missing field %q", e.Path, e.Record, e.Field)
}
