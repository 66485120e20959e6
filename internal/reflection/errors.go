package reflection

import (
	"errors"
	"fmt"
)

// Sentinel causes carried by the typed errors below.
var (
	// ErrMalformedJSON indicates the input is not well-formed JSON.
	ErrMalformedJSON = errors.New("input is not well-formed JSON")

	// ErrUnexpectedShape indicates the top level is neither a record array nor an
	// object holding one under the configured key.
	ErrUnexpectedShape = errors.New("unexpected top-level shape")

	// ErrNotObject indicates a record entry is not a JSON object.
	ErrNotObject = errors.New("record is not an object")

	// ErrMissingType indicates a record has no usable type name.
	ErrMissingType = errors.New("record has no type name")
)

// ParseError reports input that could not be read as a reflection document.
type ParseError struct {
	// Path is the input file, when known.
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse error: %v", e.Err)
	}
	return fmt.Sprintf("parse error in %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SchemaError reports a record that does not fit the expected schema.
type SchemaError struct {
	// Index is the zero-based position of the offending record.
	Index int
	Err   error
	// Detail adds context such as the keys that were searched.
	Detail string
}

func (e *SchemaError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("schema error at record %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("schema error at record %d: %v (%s)", e.Index, e.Err, e.Detail)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// WriteError reports a failure writing one output table.
type WriteError struct {
	// Reflection is the type name of the table being written.
	Reflection string
	// Path is the destination file.
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %q to %s: %v", e.Reflection, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
