// Package utils provides utility functions for database operations.
package utils

import (
	"fmt"
	"strings"
)

// SQLitePlaceholders returns an expanded placeholder list ("?, ?, ?") for a
// bulk filter on the sqlite backend, which has no array binding.
func SQLitePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", count), ", ")
}

// ValidateIdentifier ensures that a table or column name interpolated into a
// query contains only safe characters (alphanumeric and underscores).
func ValidateIdentifier(identifier string) error {
	if identifier == "" {
		return fmt.Errorf("identifier must not be empty")
	}
	for _, char := range identifier {
		if !(char >= 'a' && char <= 'z' || char >= 'A' && char <= 'Z' ||
			char >= '0' && char <= '9' || char == '_') {
			return fmt.Errorf("identifier '%s' contains invalid characters", identifier)
		}
	}
	return nil
}
