package matches

import "fmt"

// LoadError reports a source that could not be fetched, read or decoded.
// Status is the HTTP status for remote sources and 0 otherwise.
type LoadError struct {
	Source string
	Status int
	Err    error
}

func (e *LoadError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("load %s (status %d): %v", e.Source, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("load %s: status %d", e.Source, e.Status)
	default:
		return fmt.Sprintf("load %s: %v", e.Source, e.Err)
	}
}

func (e *LoadError) Unwrap() error { return e.Err }

// ParseWarning marks a field that was degraded rather than dropped. Line is the
// 1-based source line; header problems use line 1.
type ParseWarning struct {
	Line   int    `json:"line"`
	Field  string `json:"field"`
	Value  string `json:"value,omitempty"`
	Reason string `json:"reason"`
}

func (w ParseWarning) String() string {
	return fmt.Sprintf("line %d: %s %q: %s", w.Line, w.Field, w.Value, w.Reason)
}

// CriteriaError is returned when a caller-supplied criterion cannot be parsed.
type CriteriaError struct {
	Field string
	Value string
}

func (e *CriteriaError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}
