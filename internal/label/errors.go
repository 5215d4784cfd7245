package label

import "fmt"

// ParseError describes a label that could not be parsed.
type ParseError struct {
	Input   string // The label as given
	Message string // Description of the problem
}

func (e *ParseError) Error() string {
	if e.Input == "" {
		return "label error: " + e.Message
	}
	return fmt.Sprintf("invalid label %q: %s", e.Input, e.Message)
}
