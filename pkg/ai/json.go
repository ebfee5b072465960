package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

var codeFence = regexp.MustCompile("(?is)```(?:json)?\\s*(.*?)```")

func stripFence(content string) string {
	if m := codeFence.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(content)
}

func extractBetween(content string, open, close byte) ([]byte, bool) {
	candidate := stripFence(content)
	if json.Valid([]byte(candidate)) && strings.HasPrefix(candidate, string(open)) {
		return []byte(candidate), true
	}
	start := strings.IndexByte(candidate, open)
	end := strings.LastIndexByte(candidate, close)
	if start == -1 || end == -1 || end <= start {
		return nil, false
	}
	slice := []byte(candidate[start : end+1])
	if !json.Valid(slice) {
		return nil, false
	}
	return slice, true
}

// ExtractJSONArray pulls a JSON array out of a model reply, tolerating code
// fences and surrounding prose.
func ExtractJSONArray(content string) ([]byte, bool) {
	return extractBetween(content, '[', ']')
}

// ExtractJSONObject pulls the outermost JSON object out of a model reply.
func ExtractJSONObject(content string) ([]byte, bool) {
	return extractBetween(content, '{', '}')
}
