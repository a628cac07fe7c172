package util

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseJWT(t *testing.T) {
	token, err := GenerateJWT(42, "restaurant_owner", "test-secret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, role, err := ParseJWT(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, 42, userID)
	assert.Equal(t, "restaurant_owner", role)
}

func TestParseJWT_WrongSecret(t *testing.T) {
	token, err := GenerateJWT(42, "customer", "test-secret")
	require.NoError(t, err)

	_, _, err = ParseJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestParseJWT_Garbage(t *testing.T) {
	_, _, err := ParseJWT("not.a.token", "test-secret")
	assert.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	newReq := func(header string) *http.Request {
		r, _ := http.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		return r
	}

	assert.Equal(t, "abc", ExtractToken(newReq("Bearer abc")))
	assert.Equal(t, "abc", ExtractToken(newReq("bearer abc")))
	assert.Empty(t, ExtractToken(newReq("")))
	assert.Empty(t, ExtractToken(newReq("Basic abc")))
	assert.Empty(t, ExtractToken(newReq("Bearer")))
}
