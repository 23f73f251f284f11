package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"arrowhead/config"
	"arrowhead/models"
)

func TestGenerateAndParseJWTToken(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret-at-least-32-chars-long-ok"

	user := &models.User{
		Model:        gorm.Model{ID: 42},
		Email:        "someone@example.com",
		TokenVersion: 3,
	}

	access, refresh, err := GenerateJWTToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	for _, token := range []string{access, refresh} {
		claims, err := ParseJWTToken(token)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.UserID)
		assert.Equal(t, 3, claims.TokenVersion)
	}
}

func TestParseJWTToken_WrongSecret(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret-at-least-32-chars-long-ok"

	user := &models.User{Model: gorm.Model{ID: 1}}
	access, _, err := GenerateJWTToken(user)
	require.NoError(t, err)

	config.AppConfig.JWTSecret = "a-different-secret-entirely-here!!"
	_, err = ParseJWTToken(access)
	assert.Error(t, err)
}

func TestParseJWTToken_Garbage(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret-at-least-32-chars-long-ok"
	_, err := ParseJWTToken("not.a.token")
	assert.Error(t, err)
}
