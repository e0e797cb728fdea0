package annotations

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// AnnotationRegistry defines the interface for managing annotation schemas
type AnnotationRegistry interface {
	// Register a new annotation type with its schema
	Register(annotationType AnnotationType, schema AnnotationSchema) error

	// GetSchema retrieves the schema for an annotation type
	GetSchema(annotationType AnnotationType) (AnnotationSchema, error)

	// ListTypes returns all registered annotation types
	ListTypes() []AnnotationType

	// IsRegistered checks if an annotation type is registered
	IsRegistered(annotationType AnnotationType) bool
}

type registry struct {
	mu      sync.RWMutex
	schemas map[AnnotationType]AnnotationSchema
}

// NewRegistry creates a new, empty annotation registry
func NewRegistry() AnnotationRegistry {
	return &registry{
		schemas: make(map[AnnotationType]AnnotationSchema),
	}
}

var (
	builtinRegistry     AnnotationRegistry
	builtinRegistryOnce sync.Once
)

// BuiltinRegistry returns the shared registry holding every built-in schema
func BuiltinRegistry() AnnotationRegistry {
	builtinRegistryOnce.Do(func() {
		builtinRegistry = NewRegistry()
		if err := RegisterBuiltinSchemas(builtinRegistry); err != nil {
			panic(fmt.Sprintf("tether: invalid built-in annotation schema: %v", err))
		}
	})
	return builtinRegistry
}

// Register adds a new annotation type with its schema to the registry
func (r *registry) Register(annotationType AnnotationType, schema AnnotationSchema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if schema.Type != annotationType {
		return fmt.Errorf("schema type %s does not match annotation type %s",
			schema.Type.String(), annotationType.String())
	}

	if _, exists := r.schemas[annotationType]; exists {
		return fmt.Errorf("annotation type %s is already registered", annotationType.String())
	}

	if err := r.validateSchema(schema); err != nil {
		return fmt.Errorf("invalid schema for %s: %w", annotationType.String(), err)
	}

	r.schemas[annotationType] = schema
	return nil
}

// GetSchema retrieves the schema for an annotation type
func (r *registry) GetSchema(annotationType AnnotationType) (AnnotationSchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schema, exists := r.schemas[annotationType]
	if !exists {
		return AnnotationSchema{}, fmt.Errorf("annotation type %s is not registered", annotationType.String())
	}
	return schema, nil
}

// ListTypes returns all registered annotation types in declaration order
func (r *registry) ListTypes() []AnnotationType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]AnnotationType, 0, len(r.schemas))
	for annotationType := range r.schemas {
		types = append(types, annotationType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// IsRegistered checks if an annotation type is registered
func (r *registry) IsRegistered(annotationType AnnotationType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.schemas[annotationType]
	return exists
}

func (r *registry) validateSchema(schema AnnotationSchema) error {
	for paramName, paramSpec := range schema.Parameters {
		if paramName == "" {
			return fmt.Errorf("parameter name cannot be empty")
		}

		if paramSpec.Type < StringType || paramSpec.Type > DurationType {
			return fmt.Errorf("invalid parameter type for %s: %d", paramName, paramSpec.Type)
		}

		if paramSpec.DefaultValue != nil {
			if err := validateDefaultValue(paramName, paramSpec.Type, paramSpec.DefaultValue); err != nil {
				return err
			}
		}
	}

	for _, name := range schema.Positional {
		if _, exists := schema.Parameters[name]; !exists {
			return fmt.Errorf("positional parameter %s has no parameter spec", name)
		}
	}

	return nil
}

func validateDefaultValue(paramName string, paramType ParameterType, defaultValue interface{}) error {
	var ok bool
	switch paramType {
	case StringType:
		_, ok = defaultValue.(string)
	case BoolType:
		_, ok = defaultValue.(bool)
	case IntType:
		_, ok = defaultValue.(int)
	case StringSliceType:
		_, ok = defaultValue.([]string)
	case DurationType:
		_, ok = defaultValue.(time.Duration)
	}
	if !ok {
		return fmt.Errorf("default value for %s parameter %s must be %s, got %T",
			paramType.String(), paramName, paramType.String(), defaultValue)
	}
	return nil
}
