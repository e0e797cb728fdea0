package annotations

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotationTypeRoundTrip(t *testing.T) {
	for _, annotationType := range []AnnotationType{
		ClientAnnotation, ComponentAnnotation, TagAnnotation,
		LogAnnotation, RetryAnnotation, TimeoutAnnotation,
	} {
		parsed, err := ParseAnnotationType(annotationType.String())
		require.NoError(t, err)
		assert.Equal(t, annotationType, parsed)
	}

	_, err := ParseAnnotationType("route")
	assert.EqualError(t, err, "unknown annotation type: route")
	assert.Equal(t, "unknown", AnnotationType(99).String())
}

func TestAnnotationTypeIsAspect(t *testing.T) {
	assert.True(t, LogAnnotation.IsAspect())
	assert.True(t, RetryAnnotation.IsAspect())
	assert.True(t, TimeoutAnnotation.IsAspect())

	assert.False(t, ClientAnnotation.IsAspect())
	assert.False(t, ComponentAnnotation.IsAspect())
	assert.False(t, TagAnnotation.IsAspect())
}

func TestParsedAnnotationGetters(t *testing.T) {
	parsed := &ParsedAnnotation{
		Type: RetryAnnotation,
		Parameters: map[string]interface{}{
			"Name":     "orders",
			"Enabled":  true,
			"Attempts": 4,
			"Tags":     []string{"a", "b"},
			"Timeout":  2 * time.Second,
		},
	}

	assert.Equal(t, "orders", parsed.GetString("Name"))
	assert.Equal(t, "fallback", parsed.GetString("Missing", "fallback"))
	assert.Equal(t, "", parsed.GetString("Attempts"))

	assert.True(t, parsed.GetBool("Enabled"))
	assert.True(t, parsed.GetBool("Missing", true))

	assert.Equal(t, 4, parsed.GetInt("Attempts"))
	assert.Equal(t, 3, parsed.GetInt("Missing", 3))

	assert.Equal(t, []string{"a", "b"}, parsed.GetStringSlice("Tags"))
	assert.Nil(t, parsed.GetStringSlice("Missing"))

	assert.Equal(t, 2*time.Second, parsed.GetDuration("Timeout"))
	assert.Equal(t, time.Minute, parsed.GetDuration("Missing", time.Minute))

	assert.True(t, parsed.HasParameter("Name"))
	assert.False(t, parsed.HasParameter("Missing"))
}
