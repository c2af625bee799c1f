// Package textutil holds small pure helpers for language handling and
// bullet-list normalization of model output.
package textutil

import (
	"encoding/json"
	"regexp"
	"strings"
)

var languageNames = map[string]string{
	"en": "English",
	"id": "Indonesian",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"pt": "Portuguese",
	"it": "Italian",
	"nl": "Dutch",
	"tr": "Turkish",
	"ar": "Arabic",
	"hi": "Hindi",
	"ja": "Japanese",
	"ko": "Korean",
	"zh": "Chinese",
}

var primaryCodeRe = regexp.MustCompile(`^[a-z]{2,3}$`)

// NormalizeLanguage reduces BCP-47/locale strings to a primary language
// code: "en-US" -> "en", "id_ID" -> "id". Anything unusable becomes "en".
func NormalizeLanguage(lang string) string {
	raw := strings.ToLower(strings.TrimSpace(lang))
	raw = strings.ReplaceAll(raw, "_", "-")
	if raw == "" {
		return "en"
	}
	primary := strings.SplitN(raw, "-", 2)[0]
	if !primaryCodeRe.MatchString(primary) {
		return "en"
	}
	return primary
}

// LanguageLabel returns a display name for a language code, echoing the
// normalized code when unknown.
func LanguageLabel(lang string) string {
	code := NormalizeLanguage(lang)
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}

// CoerceBullets normalizes model output into a newline-separated bullet
// string. Lists (or JSON-array-shaped strings) become one bullet per item;
// free text becomes one bullet per non-blank line. Existing "-"/"•"
// markers are stripped first so bullets never double up.
func CoerceBullets(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case []string:
		return bulletsFromItems(v)
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			items = append(items, stringify(item))
		}
		return bulletsFromItems(items)
	}

	text := strings.TrimSpace(stringify(value))
	if text == "" {
		return ""
	}

	// The model sometimes stringifies a list; try to recover it.
	if strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]") {
		var decoded []any
		if err := json.Unmarshal([]byte(text), &decoded); err == nil {
			items := make([]string, 0, len(decoded))
			for _, item := range decoded {
				items = append(items, stringify(item))
			}
			return bulletsFromItems(items)
		}
	}

	var normalized []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		normalized = append(normalized, "- "+stripBullet(line))
	}
	return strings.Join(normalized, "\n")
}

func bulletsFromItems(items []string) string {
	var lines []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		lines = append(lines, "- "+stripBullet(item))
	}
	return strings.Join(lines, "\n")
}

func stripBullet(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "•")
	line = strings.TrimLeft(line, "-")
	return strings.TrimSpace(line)
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return strings.Trim(string(b), `"`)
	}
}
