package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/register",
		credentialsRequest{Email: "new@example.com", Password: testPassword}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[registerResponse](t, rec)
	assert.Equal(t, "User registered successfully", resp.Message)
	assert.NotEmpty(t, resp.ID)

	rec = env.do(t, http.MethodPost, "/auth/register",
		credentialsRequest{Email: "new@example.com", Password: "another-password"}, nil)
	requireError(t, rec, http.StatusConflict, "Email exists")
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		body    any
		status  int
		message string
	}{
		{"empty body", "", http.StatusBadRequest, "Email and password are required"},
		{"missing password", credentialsRequest{Email: "a@b.co"}, http.StatusBadRequest, "Email and password are required"},
		{"bad email", credentialsRequest{Email: "not-an-email", Password: testPassword}, http.StatusBadRequest, "Invalid email format"},
		{"short password", credentialsRequest{Email: "a@b.co", Password: "short"}, http.StatusBadRequest, "Password must be at least 8 characters"},
		{"malformed json", `{"email":`, http.StatusBadRequest, "invalid JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/auth/register", tt.body, nil)
			requireError(t, rec, tt.status, tt.message)
		})
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t, "login@example.com")

	tests := []struct {
		name    string
		body    credentialsRequest
		status  int
		message string
	}{
		{"wrong password", credentialsRequest{Email: "login@example.com", Password: "wrong-password"}, http.StatusUnauthorized, "Invalid email or password"},
		{"unknown email", credentialsRequest{Email: "nobody@example.com", Password: testPassword}, http.StatusUnauthorized, "Invalid email or password"},
		{"missing fields", credentialsRequest{}, http.StatusBadRequest, "Email and password are required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/auth/login", tt.body, nil)
			requireError(t, rec, tt.status, tt.message)
		})
	}

	assert.Contains(t, env.metrics.auth, "login/success")
	assert.Contains(t, env.metrics.auth, "login/failure")
}

func TestRefreshAndLogout(t *testing.T) {
	env := newTestEnv(t)
	_, refresh := env.signUp(t, "cycle@example.com")

	rec := env.do(t, http.MethodPost, "/auth/refresh", refreshTokenRequest{RefreshToken: refresh}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	access := decode[accessTokenResponse](t, rec).AccessToken
	require.NotEmpty(t, access)

	// The refreshed token authenticates.
	rec = env.do(t, http.MethodGet, "/auth/me", nil, bearer(access))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/auth/logout", refreshTokenRequest{RefreshToken: refresh}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Logged out successfully", decode[messageResponse](t, rec).Message)

	rec = env.do(t, http.MethodPost, "/auth/logout", refreshTokenRequest{RefreshToken: refresh}, nil)
	requireError(t, rec, http.StatusBadRequest, "Session not found or already revoked")

	rec = env.do(t, http.MethodPost, "/auth/refresh", refreshTokenRequest{RefreshToken: refresh}, nil)
	requireError(t, rec, http.StatusUnauthorized, "Invalid refresh token")

	// Logout does not revoke access tokens already issued.
	rec = env.do(t, http.MethodGet, "/auth/me", nil, bearer(access))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRefreshAndLogout_MissingToken(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/auth/refresh", "/auth/logout"} {
		rec := env.do(t, http.MethodPost, path, refreshTokenRequest{}, nil)
		requireError(t, rec, http.StatusBadRequest, "Refresh token is required")
	}

	rec := env.do(t, http.MethodPost, "/auth/refresh", refreshTokenRequest{RefreshToken: "deadbeef"}, nil)
	requireError(t, rec, http.StatusUnauthorized, "Invalid refresh token")
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	access, _ := env.signUp(t, "me@example.com")

	rec := env.do(t, http.MethodGet, "/auth/me", nil, bearer(access))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "me@example.com", body["email"])
	assert.NotEmpty(t, body["id"])
	assert.NotEmpty(t, body["created_at"])
	assert.NotContains(t, body, "password_hash")
	assert.NotContains(t, rec.Body.String(), "argon2id")
}

func TestMe_UserGone(t *testing.T) {
	env := newTestEnv(t)
	access, _ := env.signUp(t, "gone@example.com")

	_, err := env.db.Exec("DELETE FROM users WHERE email = ?", "gone@example.com")
	require.NoError(t, err)

	rec := env.do(t, http.MethodGet, "/auth/me", nil, bearer(access))
	requireError(t, rec, http.StatusNotFound, "User not found")
}
