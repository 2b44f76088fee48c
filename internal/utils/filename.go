package utils

import (
	"path/filepath"
	"strings"
)

// SanitizeFilename strips any path component and reduces the base name to
// characters safe to put on disk and in a URL. Returns "file" plus the
// original extension when nothing usable is left.
func SanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	var b strings.Builder
	for _, r := range stem {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	cleaned := strings.Trim(b.String(), ".")
	if strings.Trim(cleaned, "_") == "" {
		cleaned = "file"
	}

	var e strings.Builder
	for _, r := range ext {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.':
			e.WriteRune(r)
		}
	}
	if e.Len() <= 1 {
		return cleaned
	}
	return cleaned + e.String()
}
