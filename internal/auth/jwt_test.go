// AngelaMos | 2026
// jwt_test.go

package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/bookshelf-api/internal/config"
	"github.com/carterperez-dev/bookshelf-api/internal/core"
)

func newTestJWTManager(t *testing.T, expire time.Duration) *JWTManager {
	t.Helper()

	dir := t.TempDir()
	privatePath := filepath.Join(dir, "private.pem")
	publicPath := filepath.Join(dir, "public.pem")

	require.NoError(t, GenerateKeyPair(privatePath, publicPath))

	manager, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath:     privatePath,
		PublicKeyPath:      publicPath,
		AccessTokenExpire:  expire,
		RefreshTokenExpire: 168 * time.Hour,
		Issuer:             "bookshelf-api",
		Audience:           "bookshelf-api",
	})
	require.NoError(t, err)

	return manager
}

func TestAccessTokenRoundTrip(t *testing.T) {
	manager := newTestJWTManager(t, 15*time.Minute)

	signed, err := manager.CreateAccessToken(AccessTokenClaims{
		UserID:       "user-123",
		Role:         "user",
		TokenVersion: 3,
	})
	require.NoError(t, err)

	claims, err := manager.VerifyAccessToken(context.Background(), signed)
	require.NoError(t, err)

	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, 3, claims.TokenVersion)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	manager := newTestJWTManager(t, -time.Minute)

	signed, err := manager.CreateAccessToken(AccessTokenClaims{
		UserID: "user-123",
		Role:   "user",
	})
	require.NoError(t, err)

	_, err = manager.VerifyAccessToken(context.Background(), signed)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	manager := newTestJWTManager(t, 15*time.Minute)

	_, err := manager.VerifyAccessToken(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	// A token signed by one key pair must not verify against another.
	issuer := newTestJWTManager(t, 15*time.Minute)
	verifier := newTestJWTManager(t, 15*time.Minute)

	signed, err := issuer.CreateAccessToken(AccessTokenClaims{
		UserID: "user-123",
		Role:   "user",
	})
	require.NoError(t, err)

	_, err = verifier.VerifyAccessToken(context.Background(), signed)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestCreateRefreshTokenAssignsFamily(t *testing.T) {
	manager := newTestJWTManager(t, 15*time.Minute)

	fresh, err := manager.CreateRefreshToken("user-123", "")
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.FamilyID)
	assert.NotEmpty(t, fresh.Token)
	assert.Equal(t, core.HashToken(fresh.Token), fresh.Hash)

	rotated, err := manager.CreateRefreshToken("user-123", fresh.FamilyID)
	require.NoError(t, err)
	assert.Equal(t, fresh.FamilyID, rotated.FamilyID)
	assert.NotEqual(t, fresh.Token, rotated.Token)
}
