package validators

import "strings"

// SanitizeString trims input and caps it at maxLen runes.
func SanitizeString(input string, maxLen int) string {
	return strings.TrimSpace(Truncate(strings.TrimSpace(input), maxLen))
}

// Truncate caps input at maxLen runes without touching whitespace. A
// non-positive maxLen returns input unchanged.
func Truncate(input string, maxLen int) string {
	if maxLen <= 0 {
		return input
	}
	runes := []rune(input)
	if len(runes) <= maxLen {
		return input
	}
	return string(runes[:maxLen])
}
