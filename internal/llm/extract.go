package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// shapeExtractor inspects one known reply shape. matched is true when the
// shape is present, even if the value it leads to is unusable.
type shapeExtractor func(v any) (text string, matched bool)

// extractors are tried in order and the first structural match wins.
var extractors = []shapeExtractor{
	extractOpenAI,
	extractAnthropic,
	extractContentString,
	extractText,
	extractBareString,
	extractResult,
}

// Extract pulls the rewritten message out of a decoded provider reply.
func Extract(v any) (string, error) {
	for _, extract := range extractors {
		text, matched := extract(v)
		if !matched {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return "", contentError(nil)
		}
		return text, nil
	}
	return "", contentError(nil)
}

// ExtractJSON decodes body and runs Extract on it.
func ExtractJSON(body []byte) (string, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return "", contentError(fmt.Errorf("decode response: %w", err))
	}
	return Extract(v)
}

// {"choices":[{"message":{"content":"..."}}]}
func extractOpenAI(v any) (string, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return "", false
	}
	choices, ok := obj["choices"].([]any)
	if !ok || len(choices) == 0 {
		return "", false
	}
	choice, _ := choices[0].(map[string]any)
	msg, _ := choice["message"].(map[string]any)
	content, _ := msg["content"].(string)
	return content, true
}

// {"content":[{"type":"text","text":"..."}]}
func extractAnthropic(v any) (string, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return "", false
	}
	blocks, ok := obj["content"].([]any)
	if !ok {
		return "", false
	}
	if len(blocks) == 0 {
		return "", true
	}
	block, _ := blocks[0].(map[string]any)
	text, _ := block["text"].(string)
	return text, true
}

// {"content":"..."}; a non-string content still counts as a match.
func extractContentString(v any) (string, bool) {
	return stringField(v, "content")
}

func extractText(v any) (string, bool) {
	return stringField(v, "text")
}

func extractBareString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func extractResult(v any) (string, bool) {
	return stringField(v, "result")
}

func stringField(v any, key string) (string, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return "", false
	}
	raw, present := obj[key]
	if !present {
		return "", false
	}
	s, _ := raw.(string)
	return s, true
}
