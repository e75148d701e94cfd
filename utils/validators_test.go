package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("user@example.com"))
	assert.True(t, IsValidEmail("first.last+tag@sub.example.co"))

	assert.False(t, IsValidEmail(""))
	assert.False(t, IsValidEmail("no-at-sign"))
	assert.False(t, IsValidEmail("user@nodot"))
	assert.False(t, IsValidEmail("@example.com"))
}

func TestIsValidUsername(t *testing.T) {
	assert.True(t, IsValidUsername("alice"))
	assert.True(t, IsValidUsername("bob_42"))

	assert.False(t, IsValidUsername("ab"))
	assert.False(t, IsValidUsername("Alice"))
	assert.False(t, IsValidUsername("has space"))
	assert.False(t, IsValidUsername("dash-name"))
}

func TestIsValidPassword(t *testing.T) {
	// Three of four character classes.
	assert.True(t, IsValidPassword("Passw0rd"))
	assert.True(t, IsValidPassword("abc123!x"))

	assert.False(t, IsValidPassword("short"))
	assert.False(t, IsValidPassword("alllowercase"))
	assert.False(t, IsValidPassword("12345678"))
}
