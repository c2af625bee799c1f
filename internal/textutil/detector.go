package textutil

import (
	"regexp"
	"strings"
)

// Detector flags text written in a language we want to guard against.
// It is a stopword heuristic rather than a real language identifier, so
// callers keep it behind this interface and can swap in a proper
// language-ID implementation later.
type Detector interface {
	Match(text string) bool
}

// indonesianStopwords is a lightweight list for spotting Indonesian output.
var indonesianStopwords = map[string]struct{}{
	"yang": {}, "untuk": {}, "dan": {}, "dari": {}, "dengan": {},
	"kamu": {}, "anda": {}, "ayo": {}, "hari": {}, "ini": {},
	"jangan": {}, "bisa": {}, "saja": {}, "lebih": {}, "mulai": {},
	"waktu": {}, "ambil": {}, "buku": {}, "bukumu": {}, "baca": {},
	"satu": {}, "halaman": {}, "tetap": {}, "semangat": {}, "karena": {},
	"kalau": {}, "banget": {},
}

var nonLetterRe = regexp.MustCompile(`[^A-Za-z\s]`)

// IndonesianDetector reports whether text looks Indonesian. False
// positives and negatives on short or code-switched text are expected.
type IndonesianDetector struct{}

func (IndonesianDetector) Match(text string) bool {
	if text == "" {
		return false
	}
	cleaned := strings.ToLower(nonLetterRe.ReplaceAllString(text, " "))
	tokens := strings.Fields(cleaned)
	if len(tokens) == 0 {
		return false
	}
	hits := 0
	for _, t := range tokens {
		if _, ok := indonesianStopwords[t]; ok {
			hits++
		}
	}
	if hits >= 2 {
		return true
	}
	return hits >= 1 && float64(hits)/float64(len(tokens)) >= 0.20
}
