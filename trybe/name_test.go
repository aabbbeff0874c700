package trybe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameValid(t *testing.T) {
	valid := []Name{"alice", "bob", "trybenetwork", "a.b.c", "user12345", "a"}
	for _, n := range valid {
		assert.True(t, n.Valid(), "%q should be valid", n)
	}

	invalid := []Name{"", "Alice", "user6", "user_a", ".alice", "alice.", "verylongname13"}
	for _, n := range invalid {
		assert.False(t, n.Valid(), "%q should be invalid", n)
	}
}

func TestParseName(t *testing.T) {
	n, err := ParseName("alice")
	assert.NoError(t, err)
	assert.Equal(t, Name("alice"), n)

	_, err = ParseName("UPPER")
	assert.Error(t, err)
}

func TestNameText(t *testing.T) {
	var n Name
	assert.NoError(t, n.UnmarshalText([]byte("alice")))
	assert.Equal(t, Name("alice"), n)

	text, err := n.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "alice", string(text))

	assert.Error(t, n.UnmarshalText([]byte("BAD")))
}
