// Package extract pulls a single well-formed JSON payload out of a
// free-text model response that may contain prose, code fences, or
// partial JSON.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	labeledFenceRe = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")
	bareFenceRe    = regexp.MustCompile("(?s)```\\s*(\\{.*?\\})\\s*```")
)

// FirstJSONBlock returns the first syntactically valid JSON object
// found in text, trying in strict order: the whole trimmed text, a
// ```json fenced block, any fenced block, and finally the greedy span
// from the first '{' to the last '}'. The greedy candidate is validated
// too; free-text fields with unbalanced braces must not leak through.
// ok is false when no candidate parses.
func FirstJSONBlock(text string) (payload string, ok bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}

	if json.Valid([]byte(text)) {
		return text, true
	}

	for _, re := range []*regexp.Regexp{labeledFenceRe, bareFenceRe} {
		if m := re.FindStringSubmatch(text); m != nil {
			candidate := strings.TrimSpace(m[1])
			if json.Valid([]byte(candidate)) {
				return candidate, true
			}
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		candidate := strings.TrimSpace(text[start : end+1])
		if json.Valid([]byte(candidate)) {
			return candidate, true
		}
	}

	return "", false
}
