// Package jsonx extracts JSON payloads from free-text LLM output. Models
// routinely wrap the requested JSON in prose or markdown fences despite
// instructions, so malformed framing is expected input here, not an error.
package jsonx

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoJSON is returned when no parseable JSON object is present at all.
var ErrNoJSON = errors.New("no json object found in text")

var looseObject = regexp.MustCompile(`(?s)\{.*\}`)

// Extract returns the first balanced top-level JSON object embedded in text,
// or the whole text when it already is a valid JSON document. Markdown code
// fences are stripped first. Falls back to a greedy regex match when brace
// scanning finds nothing.
func Extract(text string) (string, error) {
	text = stripFences(strings.TrimSpace(text))

	if (strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[")) && json.Valid([]byte(text)) {
		return text, nil
	}

	for _, obj := range scanBalanced(text) {
		if json.Valid([]byte(obj)) {
			return obj, nil
		}
	}

	if m := looseObject.FindString(text); m != "" && json.Valid([]byte(m)) {
		return m, nil
	}

	return "", ErrNoJSON
}

// Decode extracts a JSON object from text and unmarshals it into v.
func Decode(text string, v any) error {
	obj, err := Extract(text)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(obj), v)
}

func stripFences(text string) string {
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// scanBalanced finds every top-level {...} block in order, tracking string
// literals and escapes so braces inside strings do not miscount.
func scanBalanced(text string) []string {
	var blocks []string
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				blocks = append(blocks, text[start:i+1])
				start = -1
			}
		}
	}
	return blocks
}
