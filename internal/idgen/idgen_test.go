package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSessionIDIsValidAndUnique(t *testing.T) {
	a := NewSessionID()
	b := NewSessionID()
	assert.True(t, IsValid(a))
	assert.NotEqual(t, a, b)
}

func TestDeterministicSessionIDIsStable(t *testing.T) {
	a := DeterministicSessionID("resume-token-1")
	b := DeterministicSessionID("resume-token-1")
	c := DeterministicSessionID("resume-token-2")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestIsValidRejectsGarbage(t *testing.T) {
	assert.False(t, IsValid("not-a-uuid"))
}
