package annotations

import "fmt"

// AnnotationError defines the interface for annotation-related errors
type AnnotationError interface {
	error
	Location() SourceLocation
	Suggestion() string
}

// SyntaxError represents an annotation that does not follow the tether:: grammar
type SyntaxError struct {
	Msg  string         // Error message
	Loc  SourceLocation // Where the error occurred
	Hint string         // Suggested fix
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: syntax error: %s. %s",
		e.Loc.File, e.Loc.Line, e.Loc.Column, e.Msg, e.Hint)
}

func (e *SyntaxError) Location() SourceLocation { return e.Loc }
func (e *SyntaxError) Suggestion() string       { return e.Hint }

// ValidationError represents a parameter that breaks its schema
type ValidationError struct {
	Annotation AnnotationType // Annotation being validated
	Parameter  string         // Parameter name that failed validation
	Expected   string         // What was expected
	Actual     string         // What was provided
	Loc        SourceLocation // Where the error occurred
	Hint       string         // Suggested fix
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s annotation parameter '%s' is invalid: expected %s, got %s. %s",
		e.Loc.File, e.Loc.Line, e.Loc.Column, e.Annotation, e.Parameter, e.Expected, e.Actual, e.Hint)
}

func (e *ValidationError) Location() SourceLocation { return e.Loc }
func (e *ValidationError) Suggestion() string       { return e.Hint }
