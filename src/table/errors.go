package table

import "fmt"

// NotFoundError reports a missing input file.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("input file not found: %s", e.Path)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// SchemaError reports a table whose header or cells do not match what a caller asked for.
// Row is 1-based over data rows and zero when the problem is in the header.
type SchemaError struct {
	Path   string
	Column string
	Row    int
	Reason string
	Err    error
}

func (e *SchemaError) Error() string {
	msg := "schema error in " + e.Path
	if e.Column != "" {
		msg += fmt.Sprintf(" column %q", e.Column)
	}
	if e.Row > 0 {
		msg += fmt.Sprintf(" row %d", e.Row)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SchemaError) Unwrap() error { return e.Err }
