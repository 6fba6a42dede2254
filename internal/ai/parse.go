package ai

import (
	"errors"
	"strings"
)

var ErrEmptyOutput = errors.New("empty model output")

// CleanText normalizes raw model text: strips a surrounding markdown code
// fence if present and trims whitespace. Gemini occasionally wraps plain-text
// answers in fences even when asked not to.
func CleanText(raw string) (string, error) {
	text := trimCodeFence(raw)
	if text == "" {
		return "", ErrEmptyOutput
	}
	return text, nil
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	} else {
		trimmed = strings.TrimPrefix(trimmed, "```")
	}
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
