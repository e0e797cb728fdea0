package annotations

import (
	"fmt"
	"time"
)

// Prefix is the marker every tether annotation starts with after the comment slashes
const Prefix = "tether::"

// AnnotationType represents the type of annotation
type AnnotationType int

const (
	ClientAnnotation AnnotationType = iota
	ComponentAnnotation
	TagAnnotation
	LogAnnotation
	RetryAnnotation
	TimeoutAnnotation
)

// String returns the string representation of the annotation type
func (a AnnotationType) String() string {
	switch a {
	case ClientAnnotation:
		return "client"
	case ComponentAnnotation:
		return "component"
	case TagAnnotation:
		return "tag"
	case LogAnnotation:
		return "log"
	case RetryAnnotation:
		return "retry"
	case TimeoutAnnotation:
		return "timeout"
	default:
		return "unknown"
	}
}

// IsAspect reports whether the annotation asks for cross-cutting behavior that
// has to be woven in by a generated proxy.
func (a AnnotationType) IsAspect() bool {
	switch a {
	case LogAnnotation, RetryAnnotation, TimeoutAnnotation:
		return true
	default:
		return false
	}
}

// ParseAnnotationType converts string to AnnotationType
func ParseAnnotationType(s string) (AnnotationType, error) {
	switch s {
	case "client":
		return ClientAnnotation, nil
	case "component":
		return ComponentAnnotation, nil
	case "tag":
		return TagAnnotation, nil
	case "log":
		return LogAnnotation, nil
	case "retry":
		return RetryAnnotation, nil
	case "timeout":
		return TimeoutAnnotation, nil
	default:
		return 0, fmt.Errorf("unknown annotation type: %s", s)
	}
}

// SourceLocation represents the location of an annotation in source code
type SourceLocation struct {
	File   string // File path
	Line   int    // Line number (1-based)
	Column int    // Column number (1-based)
}

// ParsedAnnotation represents a fully parsed annotation with typed parameters
type ParsedAnnotation struct {
	Type       AnnotationType         // Annotation type enum
	Target     string                 // Declaration the annotation is attached to
	Parameters map[string]interface{} // Typed parameters, positional ones included under their schema names
	Location   SourceLocation         // Source location
	Raw        string                 // Original annotation text
}

// GetString returns a string parameter value with optional default
func (p *ParsedAnnotation) GetString(paramName string, defaultValue ...string) string {
	if value, exists := p.Parameters[paramName]; exists {
		if strValue, ok := value.(string); ok {
			return strValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// GetBool returns a boolean parameter value with optional default
func (p *ParsedAnnotation) GetBool(paramName string, defaultValue ...bool) bool {
	if value, exists := p.Parameters[paramName]; exists {
		if boolValue, ok := value.(bool); ok {
			return boolValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return false
}

// GetInt returns an integer parameter value with optional default
func (p *ParsedAnnotation) GetInt(paramName string, defaultValue ...int) int {
	if value, exists := p.Parameters[paramName]; exists {
		if intValue, ok := value.(int); ok {
			return intValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return 0
}

// GetStringSlice returns a string slice parameter value with optional default
func (p *ParsedAnnotation) GetStringSlice(paramName string, defaultValue ...[]string) []string {
	if value, exists := p.Parameters[paramName]; exists {
		if sliceValue, ok := value.([]string); ok {
			return sliceValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return nil
}

// GetDuration returns a duration parameter value with optional default
func (p *ParsedAnnotation) GetDuration(paramName string, defaultValue ...time.Duration) time.Duration {
	if value, exists := p.Parameters[paramName]; exists {
		if d, ok := value.(time.Duration); ok {
			return d
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return 0
}

// HasParameter checks if a parameter exists
func (p *ParsedAnnotation) HasParameter(paramName string) bool {
	_, exists := p.Parameters[paramName]
	return exists
}

// ParameterType represents the type of a parameter
type ParameterType int

const (
	StringType ParameterType = iota
	BoolType
	IntType
	StringSliceType
	DurationType
)

// String returns the string representation of the parameter type
func (p ParameterType) String() string {
	switch p {
	case StringType:
		return "string"
	case BoolType:
		return "bool"
	case IntType:
		return "int"
	case StringSliceType:
		return "[]string"
	case DurationType:
		return "time.Duration"
	default:
		return "unknown"
	}
}

// ParameterSpec defines the specification for an annotation parameter
type ParameterSpec struct {
	Type         ParameterType           // Parameter type
	Required     bool                    // Whether parameter is required
	DefaultValue interface{}             // Value used for a bare -Flag and by readers as a fallback
	Description  string                  // Parameter description
	Validator    func(interface{}) error // Custom validator function, receives the converted value
}

// CustomValidator represents a custom validation function for annotations
type CustomValidator func(*ParsedAnnotation) error

// AnnotationSchema defines the schema for an annotation type
type AnnotationSchema struct {
	Type        AnnotationType           // Annotation type enum
	Description string                   // Human-readable description
	Positional  []string                 // Parameter names filled by positional arguments, in order
	Parameters  map[string]ParameterSpec // Parameter specifications
	Validators  []CustomValidator        // Custom validation functions
	Examples    []string                 // Usage examples
}
