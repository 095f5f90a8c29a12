package util

import (
	"strings"

	"github.com/samber/lo"
)

// SliceToMap parses "key=value" pairs, e.g. from repeated CLI flags.
func SliceToMap(slice []string) map[string]string {
	return lo.SliceToMap(slice, func(s string) (string, string) {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) < 2 {
			return parts[0], ""
		}
		return parts[0], parts[1]
	})
}

// ReplacePlaceholders substitutes {{name}} tokens in text with the given values.
func ReplacePlaceholders(text string, values map[string]string) string {
	for name, value := range values {
		text = strings.ReplaceAll(text, "{{"+name+"}}", value)
	}
	return text
}
