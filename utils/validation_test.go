package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("alice@example.com"))
	assert.True(t, ValidateEmail("a.b+c@sub.example.org"))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.False(t, ValidateEmail("missing@tld"))
	assert.False(t, ValidateEmail("@example.com"))
	assert.False(t, ValidateEmail(""))
}

func TestCheckPassword(t *testing.T) {
	assert.Error(t, CheckPassword("short"))
	assert.Error(t, CheckPassword(strings.Repeat("x", 51)))
	assert.NoError(t, CheckPassword("long enough"))
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty("   "))
	assert.False(t, IsEmpty("x"))
}
