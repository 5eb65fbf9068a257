package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Sanitize strips everything but letters and digits. Used for cache key
// components so that formatting variants of the same code collapse.
func Sanitize(s string) string {
	return nonAlphanumeric.ReplaceAllString(s, "")
}

