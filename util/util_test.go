package util

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestIdentifierBytes(t *testing.T) {
	for _, b := range []byte("aZ_$") {
		assert.True(t, IsIdentifierStart(b), string(b))
		assert.True(t, IsIdentifierPart(b), string(b))
	}
	for _, b := range []byte("0123456789") {
		assert.False(t, IsIdentifierStart(b), string(b))
		assert.True(t, IsIdentifierPart(b), string(b))
		assert.True(t, IsNumber(b))
	}
	for _, b := range []byte(".:;[]() \t\n") {
		assert.False(t, IsIdentifierPart(b), string(b))
	}
	assert.True(t, IsSpace('\t'))
	assert.False(t, IsSpace('x'))
}
