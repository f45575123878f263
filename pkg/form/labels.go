package form

import (
	"regexp"
	"strings"
)

var wordSeparators = regexp.MustCompile(`[_\-\s]+`)

// Labeler converts a property name into a display label.
type Labeler func(name string) string

// DefaultLabeler turns a field name into a human-friendly label: separator
// runs and camelCase boundaries become word breaks, and each word is
// title-cased on its own, so "cropType" yields "Crop Type" and "soil_ph"
// yields "Soil Ph".
func DefaultLabeler(name string) string {
	var words []string
	for _, chunk := range wordSeparators.Split(name, -1) {
		for _, word := range splitCamel(chunk) {
			words = append(words, titleCase(word))
		}
	}
	return strings.Join(words, " ")
}

// splitCamel breaks a chunk at lower-to-upper and letter/digit transitions.
// Boundaries are ASCII-only, so multi-byte runes pass through unsplit.
func splitCamel(chunk string) []string {
	if chunk == "" {
		return nil
	}
	var words []string
	start := 0
	for i := 1; i < len(chunk); i++ {
		if isBoundary(rune(chunk[i-1]), rune(chunk[i])) {
			words = append(words, chunk[start:i])
			start = i
		}
	}
	return append(words, chunk[start:])
}

func isBoundary(prev, cur rune) bool {
	return (isLower(prev) && isUpper(cur)) ||
		(isLetter(prev) && isDigit(cur)) ||
		(isDigit(prev) && isLetter(cur))
}

func isUpper(r rune) bool  { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool  { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isLetter(r rune) bool { return isUpper(r) || isLower(r) }

func titleCase(word string) string {
	if word == "" {
		return ""
	}
	lower := strings.ToLower(word)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
