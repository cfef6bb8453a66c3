package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordSetAndMatches(t *testing.T) {
	var p Password

	require.NoError(t, p.Set("Str0ngPass!"))
	require.NotEmpty(t, p.Hash)

	match, err := p.Matches("Str0ngPass!")
	require.NoError(t, err)
	assert.True(t, match)

	match, err = p.Matches("WrongPass1!")
	require.NoError(t, err)
	assert.False(t, match)
}
