package utils

import (
	"strings"
)

// SanitizeFieldName macht aus einem beliebigen Spaltennamen einen gültigen
// Feldnamen für Warehouse-Schemas ([A-Za-z_][A-Za-z0-9_]*).
func SanitizeFieldName(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 1)

	for _, r := range name {
		if isFieldRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}

	sanitized := b.String()
	if sanitized == "" || !isFieldStart(sanitized[0]) {
		return "_" + sanitized
	}
	return sanitized
}

// IsValidFieldName prüft, ob ein Name bereits ein gültiger Feldname ist
func IsValidFieldName(name string) bool {
	if name == "" || !isFieldStart(name[0]) {
		return false
	}
	for _, r := range name {
		if !isFieldRune(r) {
			return false
		}
	}
	return true
}

func isFieldRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}

func isFieldStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
