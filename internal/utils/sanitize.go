package utils

import (
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9\-\s]+`)

// CleanFilename drops the extension and turns separators into spaces.
func CleanFilename(filename string) string {
	ext := filepath.Ext(filename)
	clean := strings.TrimSuffix(filename, ext)
	clean = strings.ReplaceAll(clean, "_", " ")
	clean = strings.ReplaceAll(clean, "-", " ")
	return clean
}

// Sanitize makes text safe for an object key, falling back to def.
func Sanitize(text, def string) string {
	clean := unsafeChars.ReplaceAllString(text, "")
	clean = strings.Join(strings.Fields(clean), "_")
	if clean == "" {
		return def
	}
	return clean
}
