package auth_test

import (
	"testing"

	"eoq-backend/internal/auth"
	"eoq-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken_RoundTrip(t *testing.T) {
	secret := "test-secret-that-is-long-enough-123456"
	user := &models.User{
		Username: "jdoe",
		Email:    "jdoe@example.com",
		Name:     "John Doe",
		Role:     models.RoleStaff,
	}
	user.ID = 42

	signed, err := auth.GenerateToken(secret, user)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims := &auth.JWTCustomClaims{}
	token, err := jwt.ParseWithClaims(signed, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	assert.EqualValues(t, 42, claims.UserID)
	assert.Equal(t, "jdoe", claims.Username)
	assert.Equal(t, "jdoe@example.com", claims.Email)
	assert.Equal(t, "John Doe", claims.Name)
	assert.Equal(t, models.RoleStaff, claims.Role)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestGenerateToken_WrongSecretFails(t *testing.T) {
	user := &models.User{Username: "jdoe", Role: models.RoleStaff}
	signed, err := auth.GenerateToken("correct-secret", user)
	require.NoError(t, err)

	_, err = jwt.ParseWithClaims(signed, &auth.JWTCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte("other-secret"), nil
	})
	assert.Error(t, err)
}

func TestIsPasswordStrong(t *testing.T) {
	cases := []struct {
		password string
		want     bool
	}{
		{"Admin123!", true},
		{"Passw0rd", true},
		{"Symbols#OK", true},
		{"short1A", false},      // under 8 chars
		{"alllowercase1", false}, // no uppercase
		{"NoDigitsHere", false},  // no digit or symbol
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, auth.IsPasswordStrong(tc.password), "password %q", tc.password)
	}
}

func TestValidateEmail(t *testing.T) {
	cases := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"a.b+c@sub.domain.org", true},
		{"no-at-sign.com", false},
		{"user@nodot", false},
		{"user @example.com", false},
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, auth.ValidateEmail(tc.email), "email %q", tc.email)
	}
}
