package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_IssueAndVerify(t *testing.T) {
	issuer := testIssuer(t)

	token, expiresAt, err := issuer.Issue("usr-001", "jo@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, time.Minute)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "usr-001", claims.UserID)
	assert.Equal(t, "usr-001", claims.Subject)
	assert.Equal(t, "jo@example.com", claims.Email)
	assert.NotEmpty(t, claims.ID, "JTI")
}

func TestNewTokenIssuer_ShortSecret(t *testing.T) {
	_, err := NewTokenIssuer("short", time.Minute)
	assert.Error(t, err)
}

func TestTokenIssuer_DefaultTTL(t *testing.T) {
	issuer, err := NewTokenIssuer(testSecret, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultAccessTokenTTL, issuer.TTL())
}

func TestTokenIssuer_VerifyErrors(t *testing.T) {
	issuer := testIssuer(t)

	other, err := NewTokenIssuer("another-secret-key-of-32-characters", time.Minute)
	require.NoError(t, err)
	foreign, _, err := other.Issue("usr-001", "jo@example.com")
	require.NoError(t, err)

	expiring := testIssuer(t)
	expiring.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, _, err := expiring.Issue("usr-001", "jo@example.com")
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "usr-001"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	valid, _, err := issuer.Issue("usr-001", "jo@example.com")
	require.NoError(t, err)
	parts := strings.Split(valid, ".")
	truncated := parts[0] + "." + parts[1]

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not-a-jwt", ErrTokenMalformed},
		{"empty", "", ErrTokenMalformed},
		{"wrong secret", foreign, ErrTokenSignatureInvalid},
		{"alg none", noneToken, ErrTokenSignatureInvalid},
		{"expired", expired, ErrTokenExpired},
		{"missing signature segment", truncated, ErrTokenMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Verify(tt.token)
			require.ErrorIs(t, err, ErrTokenInvalid)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGenerateRefreshToken(t *testing.T) {
	a, err := GenerateRefreshToken()
	require.NoError(t, err)
	b, err := GenerateRefreshToken()
	require.NoError(t, err)

	assert.Len(t, a, 128, "hex chars")
	assert.NotEqual(t, a, b)
}
