// Package utils provides utility functions for database operations.
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSQLitePlaceholders(t *testing.T) {
	assert.Equal(t, "", SQLitePlaceholders(0))
	assert.Equal(t, "?", SQLitePlaceholders(1))
	assert.Equal(t, "?, ?, ?", SQLitePlaceholders(3))
}

func TestValidateIdentifier(t *testing.T) {
	assert.NoError(t, ValidateIdentifier("file_file_group_members"))
	assert.NoError(t, ValidateIdentifier("owner_id"))
	assert.Error(t, ValidateIdentifier(""))
	assert.Error(t, ValidateIdentifier("files; DROP TABLE files"))
	assert.Error(t, ValidateIdentifier("owner-id"))
}
