package parse

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fenceRe     = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	jsonArrayRe = regexp.MustCompile(`(?s)\[.*\]`)
)

// JSONArray extracts the JSON array embedded in a provider response. Models
// often wrap the array in prose or markdown code fences; this strips fences,
// then takes the first `[` through the last `]`. Text with no valid array
// yields "[]" so list-shaped operations degrade to empty rather than error.
func JSONArray(text string) string {
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	candidate := jsonArrayRe.FindString(text)
	if candidate == "" || !json.Valid([]byte(candidate)) {
		return "[]"
	}
	return candidate
}

// DecodeList extracts and unmarshals a JSON array of T. Malformed input
// decodes to an empty slice.
func DecodeList[T any](text string) []T {
	var out []T
	if err := json.Unmarshal([]byte(JSONArray(text)), &out); err != nil {
		return nil
	}
	return out
}

// StripFences removes a surrounding markdown code fence if present and trims
// whitespace. Used on structured generation output before JSON decoding.
func StripFences(text string) string {
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}
