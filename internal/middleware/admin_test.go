package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCSV(t *testing.T) {
	assert.Nil(t, parseCSV(""))
	assert.Equal(t, []string{"a@example.com"}, parseCSV("a@example.com"))
	assert.Equal(t, []string{"a", "b"}, parseCSV(" a , b "))
	assert.Equal(t, []string{"a"}, parseCSV("a,,"))
}

func TestContains(t *testing.T) {
	list := []string{"a", "b"}
	assert.True(t, contains(list, "a"))
	assert.False(t, contains(list, "c"))
	assert.False(t, contains(nil, "a"))
}
