package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/venari/internal/interfaces"
)

// maxStructuredRetries bounds the re-prompt loop when the model's output
// fails to parse against the requested schema
const maxStructuredRetries = 3

// schemaInstruction appends the structured-output contract to the last
// user message so providers without native JSON modes comply.
func schemaInstruction(schema string) string {
	return fmt.Sprintf(
		"\n\nRespond with only a JSON object, no prose and no code fences, matching this shape:\n%s",
		schema,
	)
}

// extractJSON strips markdown fences and surrounding prose from a model
// response, returning the outermost JSON value.
func extractJSON(response string) string {
	trimmed := strings.TrimSpace(response)

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	// Fall back to the span from the first '{' or '[' to the last '}' or ']'
	start := strings.IndexAny(trimmed, "{[")
	if start < 0 {
		return trimmed
	}
	end := strings.LastIndexAny(trimmed, "}]")
	if end <= start {
		return trimmed
	}
	return trimmed[start : end+1]
}

// parseStructured unmarshals a model response into out
func parseStructured(response string, out any) error {
	payload := extractJSON(response)
	if payload == "" {
		return fmt.Errorf("empty response")
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return fmt.Errorf("response is not valid JSON for the requested schema: %w", err)
	}
	return nil
}

// retryMessages extends the conversation with the failed response and a
// correction request for the next attempt
func retryMessages(messages []interfaces.Message, failed string, parseErr error) []interfaces.Message {
	extended := make([]interfaces.Message, 0, len(messages)+2)
	extended = append(extended, messages...)
	extended = append(extended,
		interfaces.Message{Role: "assistant", Content: failed},
		interfaces.Message{Role: "user", Content: fmt.Sprintf(
			"That response could not be parsed (%v). Respond again with only the JSON object, nothing else.", parseErr)},
	)
	return extended
}
