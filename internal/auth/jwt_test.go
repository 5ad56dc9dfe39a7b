package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reliefnet-backend-go/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer, err := NewIssuer("secret", "reliefnet", 240*time.Hour)
	require.NoError(t, err)

	token, err := issuer.NewToken("user-1", models.RoleAdmin)
	require.NoError(t, err)

	claims, err := issuer.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.ID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "reliefnet", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(240*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestExpiredToken(t *testing.T) {
	issuer, err := NewIssuer("secret", "reliefnet", time.Hour)
	require.NoError(t, err)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := issuer.NewToken("user-1", models.RoleUser)
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.ParseToken(token)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestWrongSecretOrIssuer(t *testing.T) {
	a, _ := NewIssuer("secret-a", "reliefnet", time.Hour)
	b, _ := NewIssuer("secret-b", "reliefnet", time.Hour)
	c, _ := NewIssuer("secret-a", "someone-else", time.Hour)

	token, err := a.NewToken("user-1", models.RoleUser)
	require.NoError(t, err)

	_, err = b.ParseToken(token)
	assert.Error(t, err)
	_, err = c.ParseToken(token)
	assert.Error(t, err)
}

func TestRejectsNoneAlgorithm(t *testing.T) {
	issuer, _ := NewIssuer("secret", "reliefnet", time.Hour)
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		ID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "reliefnet",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = issuer.ParseToken(token)
	assert.Error(t, err)
}

func TestNewIssuerValidation(t *testing.T) {
	_, err := NewIssuer("", "x", time.Hour)
	assert.Error(t, err)
	_, err = NewIssuer("s", "x", 0)
	assert.Error(t, err)
}
