package config

import "fmt"

// ValidationError reports a settings field whose raw value failed type
// conversion, or a required field that is absent from every source. A single
// ValidationError fails the entire load.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("setting %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("setting %s: invalid value %q: %s", e.Field, e.Value, e.Reason)
}
