package parse

import (
	"fmt"
	"strings"
)

// ValidationErrors contains multiple validation errors
type ValidationErrors struct {
	Errors []error
}

// Error implements the error interface
func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}

	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString("  - ")
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}

// Unwrap returns the collected errors for errors.Is/As
func (e *ValidationErrors) Unwrap() []error {
	return e.Errors
}

// HasErrors returns true if there are any errors
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// ParseError is a malformed document. Line and Column are 1-based and
// zero when the position is unknown.
type ParseError struct {
	Source  string
	Line    int
	Column  int
	Message string
	Cause   error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.Source, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Message)
}

// Unwrap returns the underlying cause
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ReferenceError is an element of a graph that points at something that
// does not exist, or an id used twice
type ReferenceError struct {
	// Graph is "main" or "function <name>"
	Graph   string
	Element string
	ID      string
	Message string
}

// Error implements the error interface
func (e *ReferenceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s: %s %q: %s", e.Graph, e.Element, e.ID, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Graph, e.Element, e.Message)
}

// FieldError is a struct field rejected by the validator
type FieldError struct {
	Namespace string
	Tag       string
	Param     string
}

// Error implements the error interface
func (e *FieldError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: failed %s=%s", e.Namespace, e.Tag, e.Param)
	}
	return fmt.Sprintf("%s: failed %s", e.Namespace, e.Tag)
}

// NewParseError creates a new parse error
func NewParseError(source, message string, cause error) *ParseError {
	return &ParseError{
		Source:  source,
		Message: message,
		Cause:   cause,
	}
}

// NewReferenceError creates a new reference error
func NewReferenceError(graph, element, id, message string) *ReferenceError {
	return &ReferenceError{
		Graph:   graph,
		Element: element,
		ID:      id,
		Message: message,
	}
}

// CombineErrors combines multiple errors into one
func CombineErrors(errors ...error) error {
	var nonNil []error
	for _, err := range errors {
		if err != nil {
			nonNil = append(nonNil, err)
		}
	}

	if len(nonNil) == 0 {
		return nil
	}
	if len(nonNil) == 1 {
		return nonNil[0]
	}

	return &ValidationErrors{Errors: nonNil}
}

// Messages flattens err into one message per leaf error
func Messages(err error) []string {
	if err == nil {
		return nil
	}
	verrs, ok := err.(*ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	var msgs []string
	for _, e := range verrs.Errors {
		msgs = append(msgs, Messages(e)...)
	}
	return msgs
}

// position converts a byte offset into a 1-based line and column
func position(data []byte, offset int64) (line, column int) {
	if offset <= 0 || offset > int64(len(data)) {
		return 0, 0
	}
	line, column = 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			column = 1
			continue
		}
		column++
	}
	return line, column
}
