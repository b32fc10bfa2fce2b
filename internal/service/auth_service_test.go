package service

import (
	"errors"
	"testing"
	"time"

	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/config"
	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func authTestConfig(t *testing.T, accessKey string) *config.Config {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(accessKey), bcrypt.MinCost)
	require.NoError(t, err)
	return &config.Config{
		JWT:  config.JWTConfig{Secret: "test-secret", ExpireTime: 2 * time.Hour},
		Auth: config.AuthConfig{Enabled: true, AccessKeyHash: string(hash)},
	}
}

func TestIssueTokenWithValidKey(t *testing.T) {
	svc := NewAuthService(authTestConfig(t, "correct-key"))

	result, err := svc.IssueToken("correct-key")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, int64(7200), result.ExpiresIn)

	claims, err := util.ParseJWT(result.Token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "analyst", claims.Subject)
}

func TestIssueTokenWithWrongKey(t *testing.T) {
	svc := NewAuthService(authTestConfig(t, "correct-key"))

	_, err := svc.IssueToken("wrong-key")
	assert.True(t, errors.Is(err, util.ErrInvalidAccessKey))
}

func TestIssueTokenEmptyHash(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "s", ExpireTime: time.Hour}}
	svc := NewAuthService(cfg)

	_, err := svc.IssueToken("any")
	assert.True(t, errors.Is(err, util.ErrInvalidAccessKey))
}
