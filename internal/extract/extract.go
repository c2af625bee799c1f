// Package extract recovers structured data from free-form model output.
package extract

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrMalformedOutput reports model output that could not be parsed into
// the expected structure.
var ErrMalformedOutput = errors.New("malformed model output")

var dealTagRe = regexp.MustCompile(`(?is)<DEAL>(.*?)</DEAL>`)

// Deal splits a raw negotiation reply into the user-visible text and an
// optional deal label embedded as <DEAL>...</DEAL>. Only the first tag's
// content counts; all tag occurrences are stripped from the visible text
// and leftover blank lines are collapsed.
func Deal(raw string) (text, label string, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", false
	}

	match := dealTagRe.FindStringSubmatch(raw)
	if match == nil {
		return raw, "", false
	}

	label = strings.TrimSpace(match[1])
	cleaned := dealTagRe.ReplaceAllString(raw, "")
	var lines []string
	for _, line := range strings.Split(cleaned, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, strings.TrimRight(line, " \t"))
	}
	text = strings.TrimSpace(strings.Join(lines, "\n"))

	if label == "" {
		return text, "", false
	}
	return text, label, true
}

// JSONObject parses a JSON object out of model output that may wrap it in
// prose or code fences, by slicing from the first '{' to the last '}'.
func JSONObject(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start != -1 && end != -1 && end > start {
		raw = raw[start : end+1]
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, ErrMalformedOutput
	}
	if obj == nil {
		return nil, ErrMalformedOutput
	}
	return obj, nil
}
