package utils

import (
	"regexp"
	"strings"
)

// Multi-Select-Felder kommen im Report-Export als "[Wert]" an.
var bracketGroup = regexp.MustCompile(`\[([^\]]+)\]`)

var bracketReplacer = strings.NewReplacer("[", "", "]", "")

// StripBrackets entfernt die Klammer-Annotationen aus einem Zellwert.
// Zuerst werden vollständige Gruppen aufgelöst, danach einzelne Klammern entfernt.
func StripBrackets(value string) string {
	if !strings.ContainsAny(value, "[]") {
		return value
	}
	value = bracketGroup.ReplaceAllString(value, "$1")
	return bracketReplacer.Replace(value)
}

// TruncateText kürzt Text auf maximale Länge
func TruncateText(text string, maxLength int) string {
	if len(text) <= maxLength {
		return text
	}

	if maxLength <= 3 {
		return text[:maxLength]
	}

	return text[:maxLength-3] + "..."
}
