package annotations

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	t.Run("register and fetch", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.Register(RetryAnnotation, RetryAnnotationSchema))

		assert.True(t, registry.IsRegistered(RetryAnnotation))
		assert.False(t, registry.IsRegistered(ClientAnnotation))

		schema, err := registry.GetSchema(RetryAnnotation)
		require.NoError(t, err)
		assert.Equal(t, 3, schema.Parameters["Attempts"].DefaultValue)
	})

	t.Run("missing schema", func(t *testing.T) {
		_, err := NewRegistry().GetSchema(LogAnnotation)
		assert.EqualError(t, err, "annotation type log is not registered")
	})

	t.Run("duplicate registration", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.Register(LogAnnotation, LogAnnotationSchema))
		err := registry.Register(LogAnnotation, LogAnnotationSchema)
		assert.EqualError(t, err, "annotation type log is already registered")
	})

	t.Run("type mismatch", func(t *testing.T) {
		err := NewRegistry().Register(ClientAnnotation, LogAnnotationSchema)
		assert.EqualError(t, err, "schema type log does not match annotation type client")
	})

	t.Run("default of wrong type", func(t *testing.T) {
		schema := AnnotationSchema{
			Type: TimeoutAnnotation,
			Parameters: map[string]ParameterSpec{
				"duration": {Type: DurationType, DefaultValue: "5s"},
			},
		}
		err := NewRegistry().Register(TimeoutAnnotation, schema)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "default value for time.Duration parameter duration")
	})

	t.Run("default of right type", func(t *testing.T) {
		schema := AnnotationSchema{
			Type: TimeoutAnnotation,
			Parameters: map[string]ParameterSpec{
				"duration": {Type: DurationType, DefaultValue: time.Second},
			},
		}
		assert.NoError(t, NewRegistry().Register(TimeoutAnnotation, schema))
	})

	t.Run("positional without spec", func(t *testing.T) {
		schema := AnnotationSchema{
			Type:       TagAnnotation,
			Positional: []string{"param"},
			Parameters: map[string]ParameterSpec{},
		}
		err := NewRegistry().Register(TagAnnotation, schema)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "positional parameter param has no parameter spec")
	})
}

func TestBuiltinRegistry(t *testing.T) {
	registry := BuiltinRegistry()
	assert.Same(t, registry, BuiltinRegistry())
	assert.Equal(t, []AnnotationType{
		ClientAnnotation,
		ComponentAnnotation,
		TagAnnotation,
		LogAnnotation,
		RetryAnnotation,
		TimeoutAnnotation,
	}, registry.ListTypes())
}

func TestRegisterBuiltinSchemasTwice(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, RegisterBuiltinSchemas(registry))
	err := RegisterBuiltinSchemas(registry)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to register client schema")
}
