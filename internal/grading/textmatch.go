package grading

import "strings"

// normalize trims surrounding whitespace and lower-cases.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
