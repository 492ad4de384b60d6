package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/common"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := GenerateToken("admin", secret, time.Hour)
	require.NoError(t, err)

	got, err := GetUsernameFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "admin", got)
}

func TestGetUsernameFromToken_Expired(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("admin", []byte("secret"), -1*time.Second)
	require.NoError(t, err)

	_, err = GetUsernameFromToken(tok, []byte("secret"))
	assert.True(t, errors.Is(err, common.ErrTokenExpired))
}

func TestGetUsernameFromToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("admin", []byte("right-secret"), time.Hour)
	require.NoError(t, err)

	_, err = GetUsernameFromToken(tok, []byte("wrong-secret"))
	assert.True(t, errors.Is(err, common.ErrInvalidToken))
}

func TestGetUsernameFromToken_MalformedString(t *testing.T) {
	t.Parallel()

	_, err := GetUsernameFromToken("not.a.jwt", []byte("k"))
	assert.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "hunter2"))
}
