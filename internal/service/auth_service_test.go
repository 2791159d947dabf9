package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examly/examly-backend/internal/config"
	"github.com/examly/examly-backend/internal/model"
)

func testAuthService(secret string) *AuthService {
	cfg := &config.Config{
		JWTSecret:  secret,
		JWTExpiry:  time.Hour,
		BcryptCost: 4, // min cost keeps tests fast
	}
	return NewAuthService(cfg, nil)
}

func TestTokenRoundTrip(t *testing.T) {
	svc := testAuthService("test-secret")

	user := &model.User{
		ID:          7,
		Email:       "teacher@example.com",
		DisplayName: "Prof Example",
		Role:        model.RoleTeacher,
	}

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, "teacher@example.com", claims.Email)
	assert.Equal(t, "Prof Example", claims.Name)
	assert.Equal(t, model.RoleTeacher, claims.Role)
	assert.Equal(t, "7", claims.Subject)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := testAuthService("secret-a").GenerateToken(&model.User{
		ID: 1, Email: "s@example.com", Role: model.RoleStudent,
	})
	require.NoError(t, err)

	_, err = testAuthService("secret-b").ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	_, err := testAuthService("secret").ValidateToken("not-a-jwt")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	svc := testAuthService("secret")

	hash, err := svc.HashPassword("hunter42")
	require.NoError(t, err)
	require.NotEqual(t, "hunter42", hash)

	assert.NoError(t, svc.CheckPassword(hash, "hunter42"))
	assert.ErrorIs(t, svc.CheckPassword(hash, "wrong"), ErrInvalidCredentials)
}

func TestGoogleLoginURLDisabledWithoutClientID(t *testing.T) {
	svc := testAuthService("secret")
	_, err := svc.GoogleLoginURL("state")
	assert.ErrorIs(t, err, ErrOAuthDisabled)
}

func TestGoogleLoginURLCarriesState(t *testing.T) {
	cfg := &config.Config{
		JWTSecret:          "secret",
		JWTExpiry:          time.Hour,
		GoogleClientID:     "client-id",
		GoogleClientSecret: "client-secret",
		GoogleRedirectURL:  "http://localhost:8080/api/v1/auth/google/callback",
	}
	svc := NewAuthService(cfg, nil)

	url, err := svc.GoogleLoginURL("csrf-state")
	require.NoError(t, err)
	assert.Contains(t, url, "state=csrf-state")
	assert.Contains(t, url, "client-id")
}
