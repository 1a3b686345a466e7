package spec

import "fmt"

// SyntaxError is an error in a grammar description source.
type SyntaxError struct {
	Row     int
	Message string
}

func newSyntaxError(row int, format string, a ...interface{}) *SyntaxError {
	return &SyntaxError{
		Row:     row,
		Message: fmt.Sprintf(format, a...),
	}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v: %v", e.Row, e.Message)
}
