package utils

import (
	"path/filepath"
	"regexp"
	"strings"
)

// CleanFilename turns "Burna_Boy-Higher.mp3" into "Burna Boy Higher".
func CleanFilename(filename string) string {
	ext := filepath.Ext(filename)
	clean := strings.TrimSuffix(filename, ext)
	clean = strings.ReplaceAll(clean, "_", " ")
	clean = strings.ReplaceAll(clean, "-", " ")
	return clean
}

// Sanitize makes text safe for use in a storage key.
func Sanitize(text, def string) string {
	if text == "" {
		return def
	}
	reg, _ := regexp.Compile(`[^a-zA-Z0-9\-\s]+`)
	clean := reg.ReplaceAllString(text, "")
	return strings.ReplaceAll(strings.TrimSpace(clean), " ", "_")
}
