package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/venari/internal/interfaces"
)

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, extractJSON(`{"a": 1}`))
	assert.Equal(t, `{"a": 1}`, extractJSON("```json\n{\"a\": 1}\n```"))
	assert.Equal(t, `{"a": 1}`, extractJSON("```\n{\"a\": 1}\n```"))
	assert.Equal(t, `{"a": 1}`, extractJSON("Here is the result:\n{\"a\": 1}"))
	assert.Equal(t, `[1, 2]`, extractJSON("The list: [1, 2]"))
}

func TestParseStructured(t *testing.T) {
	var out struct {
		Name string `json:"name"`
	}
	require.NoError(t, parseStructured("```json\n{\"name\": \"x\"}\n```", &out))
	assert.Equal(t, "x", out.Name)

	assert.Error(t, parseStructured("no json here at all", &out))
	assert.Error(t, parseStructured("", &out))
}

func TestRetryMessages(t *testing.T) {
	original := []interfaces.Message{{Role: "user", Content: "do the thing"}}
	extended := retryMessages(original, "bad output", assert.AnError)

	require.Len(t, extended, 3)
	assert.Equal(t, "assistant", extended[1].Role)
	assert.Equal(t, "bad output", extended[1].Content)
	assert.Equal(t, "user", extended[2].Role)
	assert.Contains(t, extended[2].Content, "could not be parsed")
	// The original slice is untouched
	assert.Len(t, original, 1)
}

func TestWithSchemaSuffix(t *testing.T) {
	messages := []interfaces.Message{
		{Role: "system", Content: "be precise"},
		{Role: "user", Content: "parse this"},
	}
	extended := withSchemaSuffix(messages, `{"a": 0}`)

	assert.Contains(t, extended[1].Content, `{"a": 0}`)
	assert.Equal(t, "parse this", messages[1].Content, "input messages must not be mutated")

	same := withSchemaSuffix(messages, "")
	assert.Equal(t, messages, same)
}
