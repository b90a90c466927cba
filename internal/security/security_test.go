package security_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prephub/internal/security"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := security.NewTokenService("secret", time.Hour)

	token, err := svc.CreateForUser("amit")
	require.NoError(t, err)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "amit", claims["sub"])
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := security.NewTokenService("secret-a", time.Hour).CreateForUser("amit")
	require.NoError(t, err)

	_, err = security.NewTokenService("secret-b", time.Hour).Parse(token)
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	svc := security.NewTokenService("secret", -time.Minute)

	token, err := svc.CreateForUser("amit")
	require.NoError(t, err)

	_, err = svc.Parse(token)
	assert.Error(t, err)
}

func TestEncryptorRoundTrip(t *testing.T) {
	enc, err := security.NewEncryptor([]byte("any length secret works"))
	require.NoError(t, err)

	cipher, err := enc.Encrypt("hello world")
	require.NoError(t, err)
	assert.NotEqual(t, "hello world", cipher)

	plain, err := enc.Decrypt(cipher)
	require.NoError(t, err)
	assert.Equal(t, "hello world", plain)
}

func TestEncryptorRejectsGarbage(t *testing.T) {
	enc, err := security.NewEncryptor([]byte("key"))
	require.NoError(t, err)

	_, err = enc.Decrypt("bm90IGEgcmVhbCBjaXBoZXJ0ZXh0")
	assert.Error(t, err)
}

func TestPasswordHasher(t *testing.T) {
	h := security.NewPasswordHasher(4)

	hashed, err := h.Hash("Password1!")
	require.NoError(t, err)
	assert.NotEqual(t, "Password1!", hashed)

	assert.NoError(t, h.Verify("Password1!", hashed))
	assert.Error(t, h.Verify("wrong", hashed))
}

func TestPasswordHasherCostFallback(t *testing.T) {
	// Out-of-range costs would make bcrypt itself error; the hasher
	// substitutes the default instead.
	for _, cost := range []int{0, 99} {
		h := security.NewPasswordHasher(cost)

		hashed, err := h.Hash("Password1!")
		require.NoError(t, err)
		assert.NoError(t, h.Verify("Password1!", hashed))
	}
}
