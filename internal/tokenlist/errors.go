package tokenlist

import (
	"fmt"
	"strings"
)

// SchemaError is a structural problem: a missing field, a wrong type or an
// unknown enum value.
type SchemaError struct {
	Path   string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// IOError wraps failures to read, parse or write the document.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ValidationError is returned by Report.Err when at least one violation was
// found.
type ValidationError struct {
	Report Report
}

func (e *ValidationError) Error() string {
	n := len(e.Report.Violations)
	if n == 1 {
		return "validation failed: " + e.Report.Violations[0].String()
	}
	return fmt.Sprintf("validation failed with %d errors:\n%s", n, strings.Join(e.Report.Lines(), "\n"))
}

func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.Report.Violations))
	for i, v := range e.Report.Violations {
		errs[i] = v
	}
	return errs
}
