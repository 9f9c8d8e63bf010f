package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_RoundTrip(t *testing.T) {
	token, err := GenerateJWT("s3cret", "user-1")
	require.NoError(t, err)

	claims, err := ValidateJWT("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)

	_, err = ValidateJWT("other", token)
	assert.Error(t, err)
}

func TestJWT_EmptySecret(t *testing.T) {
	_, err := GenerateJWT("", "user-1")
	assert.ErrorIs(t, err, ErrEmptySecret)
	_, err = ValidateJWT("", "x.y.z")
	assert.ErrorIs(t, err, ErrEmptySecret)
}
