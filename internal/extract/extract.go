// Package extract recovers a single JSON object or array from free-form model
// output. It tolerates markdown code fences and prose around the payload, and
// only ever parses with encoding/json.
package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	errs "github.com/popov-vn/ai-agent/internal/errors"
)

const fence = "```"

var whitespaceRun = regexp.MustCompile(`\s+`)

// Object returns the first balanced {...} region of text parsed as a JSON object.
func Object(text string) (map[string]any, error) {
	raw, err := region(text, '{', '}')
	if err != nil {
		return nil, err
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, errs.NewParseError("invalid JSON object", err)
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return nil, errs.NewParseError(fmt.Sprintf("expected JSON object, got %T", value), nil)
	}

	return obj, nil
}

// Array returns the first balanced [...] region of text parsed as a JSON array.
// Elements that are not objects come back as nil maps so callers can reject
// them one by one.
func Array(text string) ([]map[string]any, error) {
	raw, err := region(text, '[', ']')
	if err != nil {
		return nil, err
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, errs.NewParseError("invalid JSON array", err)
	}

	items, ok := value.([]any)
	if !ok {
		return nil, errs.NewParseError(fmt.Sprintf("expected JSON array, got %T", value), nil)
	}

	out := make([]map[string]any, len(items))
	for i, item := range items {
		obj, _ := item.(map[string]any)
		out[i] = obj
	}

	return out, nil
}

// TrimToObject slices text from its first '{' to its last '}' unless it
// already starts with '{'. Text without such a pair is returned trimmed.
func TrimToObject(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "{") {
		return s
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return s
	}

	return s[start : end+1]
}

// Unfence returns the content of the first ```json block in text, else of the
// first fenced block of any kind, or the trimmed text when there is no fence.
// A language tag on the opening fence is dropped.
func Unfence(text string) string {
	s := strings.TrimSpace(text)

	start := jsonFence(s)
	if start == -1 {
		start = strings.Index(s, fence)
	}
	if start == -1 {
		return s
	}

	body := s[start+len(fence):]
	if nl := strings.IndexByte(body, '\n'); nl != -1 && isLanguageTag(body[:nl]) {
		body = body[nl+1:]
	} else if strings.HasPrefix(strings.ToLower(body), "json") {
		body = body[len("json"):]
	}

	if end := strings.Index(body, fence); end != -1 {
		body = body[:end]
	}

	return strings.TrimSpace(body)
}

// jsonFence returns the offset of the first fence tagged json in any case, or -1.
func jsonFence(s string) int {
	for off := 0; ; {
		i := strings.Index(s[off:], fence)
		if i == -1 {
			return -1
		}
		at := off + i
		tag := s[at+len(fence):]
		if len(tag) >= len("json") && strings.EqualFold(tag[:len("json")], "json") {
			return at
		}
		off = at + len(fence)
	}
}

func isLanguageTag(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	for _, r := range line {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return false
		}
	}
	return true
}

// region finds the first open bracket and its matching close by counting only
// that bracket pair, then collapses whitespace runs to single spaces.
func region(text string, open, closing byte) (string, error) {
	s := Unfence(text)

	start := strings.IndexByte(s, open)
	if start == -1 {
		return "", errs.NewParseError(fmt.Sprintf("no %q found in model output", open), nil)
	}

	depth := 0
	end := -1
	for i := start; i < len(s); i++ {
		switch s[i] {
		case open:
			depth++
		case closing:
			depth--
		}
		if depth == 0 {
			end = i
			break
		}
	}

	if end == -1 {
		return "", errs.NewParseError(fmt.Sprintf("unbalanced %q in model output", open), nil)
	}

	return whitespaceRun.ReplaceAllString(s[start:end+1], " "), nil
}
