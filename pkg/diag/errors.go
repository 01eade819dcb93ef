package diag

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedDiagnosticText is matched by every parse failure in this package.
	ErrMalformedDiagnosticText = errors.New("malformed diagnostic text")
)

// MalformedTextError carries the raw text that failed to parse.
type MalformedTextError struct {
	Kind    string
	Text    string
	Wrapped error
}

func (e *MalformedTextError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("invalid %s text %q: %v", e.Kind, e.Text, e.Wrapped)
	}

	return fmt.Sprintf("invalid %s text %q", e.Kind, e.Text)
}

func (*MalformedTextError) Is(target error) bool {
	return target == ErrMalformedDiagnosticText
}

func (e *MalformedTextError) Unwrap() error {
	return e.Wrapped
}
