package annotations

import (
	"fmt"
	"go/token"
	"time"
)

// Built-in annotation schemas

// ClientAnnotationSchema defines the schema for //tether::client annotations
var ClientAnnotationSchema = AnnotationSchema{
	Type:        ClientAnnotation,
	Description: "Marks an interface as a remote-service client contract whose implementation is generated",
	Parameters: map[string]ParameterSpec{
		"Name": {
			Type:        StringType,
			Required:    false,
			Description: "Service name used in operation names (defaults to the interface name)",
			Validator: func(v interface{}) error {
				if v.(string) == "" {
					return fmt.Errorf("must not be empty")
				}
				return nil
			},
		},
	},
	Examples: []string{
		"//tether::client",
		"//tether::client -Name=payments",
	},
}

// ComponentAnnotationSchema defines the schema for //tether::component annotations
var ComponentAnnotationSchema = AnnotationSchema{
	Type:        ComponentAnnotation,
	Description: "Marks a constructor function as an explicit provider in the application graph",
	Parameters: map[string]ParameterSpec{
		"Tags": {
			Type:        StringSliceType,
			Required:    false,
			Description: "Comma-separated tags carried by the provided value",
		},
	},
	Examples: []string{
		"//tether::component",
		"//tether::component -Tags=primary",
	},
}

// TagAnnotationSchema defines the schema for //tether::tag annotations
var TagAnnotationSchema = AnnotationSchema{
	Type:        TagAnnotation,
	Description: "Qualifies one constructor parameter with tags",
	Positional:  []string{"param", "tags"},
	Parameters: map[string]ParameterSpec{
		"param": {
			Type:        StringType,
			Required:    true,
			Description: "Name of the constructor parameter",
			Validator: func(v interface{}) error {
				if !token.IsIdentifier(v.(string)) {
					return fmt.Errorf("'%s' is not a valid parameter name", v)
				}
				return nil
			},
		},
		"tags": {
			Type:        StringSliceType,
			Required:    true,
			Description: "Comma-separated tags required from the provider",
		},
	},
	Examples: []string{
		"//tether::tag store primary",
		"//tether::tag cache local,fast",
	},
}

// LogAnnotationSchema defines the schema for //tether::log annotations
var LogAnnotationSchema = AnnotationSchema{
	Type:        LogAnnotation,
	Description: "Logs calls through the generated aspect proxy",
	Parameters: map[string]ParameterSpec{
		"Level": {
			Type:         StringType,
			Required:     false,
			DefaultValue: "info",
			Description:  "Log level: debug, info (default), warn or error",
			Validator: func(v interface{}) error {
				switch v.(string) {
				case "debug", "info", "warn", "error":
					return nil
				}
				return fmt.Errorf("must be one of debug, info, warn, error, got '%s'", v)
			},
		},
	},
	Examples: []string{
		"//tether::log",
		"//tether::log -Level=debug",
	},
}

// RetryAnnotationSchema defines the schema for //tether::retry annotations
var RetryAnnotationSchema = AnnotationSchema{
	Type:        RetryAnnotation,
	Description: "Retries failed calls through the generated aspect proxy",
	Parameters: map[string]ParameterSpec{
		"Attempts": {
			Type:         IntType,
			Required:     false,
			DefaultValue: 3,
			Description:  "Total number of attempts (default 3)",
			Validator: func(v interface{}) error {
				if v.(int) < 1 {
					return fmt.Errorf("must be at least 1, got %d", v)
				}
				return nil
			},
		},
	},
	Examples: []string{
		"//tether::retry",
		"//tether::retry -Attempts=5",
	},
}

// TimeoutAnnotationSchema defines the schema for //tether::timeout annotations
var TimeoutAnnotationSchema = AnnotationSchema{
	Type:        TimeoutAnnotation,
	Description: "Bounds call duration through the generated aspect proxy",
	Positional:  []string{"duration"},
	Parameters: map[string]ParameterSpec{
		"duration": {
			Type:        DurationType,
			Required:    true,
			Description: "Maximum call duration, e.g. 500ms or 5s",
			Validator: func(v interface{}) error {
				if v.(time.Duration) <= 0 {
					return fmt.Errorf("must be positive, got %s", v)
				}
				return nil
			},
		},
	},
	Examples: []string{
		"//tether::timeout 5s",
	},
}

// GetBuiltinSchemas returns all built-in annotation schemas
func GetBuiltinSchemas() []AnnotationSchema {
	return []AnnotationSchema{
		ClientAnnotationSchema,
		ComponentAnnotationSchema,
		TagAnnotationSchema,
		LogAnnotationSchema,
		RetryAnnotationSchema,
		TimeoutAnnotationSchema,
	}
}

// RegisterBuiltinSchemas registers all built-in annotation schemas with the given registry
func RegisterBuiltinSchemas(registry AnnotationRegistry) error {
	for _, schema := range GetBuiltinSchemas() {
		if err := registry.Register(schema.Type, schema); err != nil {
			return fmt.Errorf("failed to register %s schema: %w", schema.Type.String(), err)
		}
	}
	return nil
}
