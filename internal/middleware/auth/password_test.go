package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("wrong")))
}

func TestUnusablePassword(t *testing.T) {
	first, err := UnusablePassword()
	require.NoError(t, err)
	second, err := UnusablePassword()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(first, unusablePrefix))
	assert.NotEqual(t, first, second)
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(first), []byte("")))
}
