package util

import (
	"errors"
	"strings"
)

// SanitizeFileName removes path separators and rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "", errors.New("invalid file name")
	}
	return s, nil
}

// Underscore trims value, falls back to def when empty and replaces spaces
// with underscores, e.g. "Acme Corp" -> "Acme_Corp".
func Underscore(value, def string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		v = def
	}
	return strings.Join(strings.Fields(v), "_")
}

// DocumentName builds "<Company>_<Role>.<ext>" safe for use as a file name.
func DocumentName(company, role, ext string) (string, error) {
	name := Underscore(company, "Company") + "_" + Underscore(role, "Role") + "." + strings.TrimPrefix(ext, ".")
	return SanitizeFileName(name)
}
