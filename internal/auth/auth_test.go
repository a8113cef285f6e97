package auth_test

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftforge/roster/internal/auth"
)

func TestHashAndVerifyAPIKey(t *testing.T) {
	hash, err := auth.HashAPIKey("test-key-123")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	valid, err := auth.VerifyAPIKey("test-key-123", hash)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = auth.VerifyAPIKey("wrong-key", hash)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestJWTIssueAndValidate(t *testing.T) {
	mgr, err := auth.NewJWTManager("", "", 1*time.Hour)
	require.NoError(t, err)

	p := auth.Principal{ID: "scheduler-1", OrgID: "org-1", Role: auth.RoleScheduler}

	token, expiresAt, err := mgr.IssueToken(p)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := mgr.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "scheduler-1", claims.CallerID)
	assert.Equal(t, auth.RoleScheduler, claims.Role)
	assert.Equal(t, "org-1", claims.OrgID)
}

// newTestJWTManagerWithKey creates a JWTManager backed by a real Ed25519 key pair
// written to temp PEM files, and returns the raw private key for forging tokens.
func newTestJWTManagerWithKey(t *testing.T) (*auth.JWTManager, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	dir := t.TempDir()

	privBytes, err := x509.MarshalPKCS8PrivateKey(priv)
	require.NoError(t, err)
	privPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privBytes})
	privPath := filepath.Join(dir, "priv.pem")
	require.NoError(t, os.WriteFile(privPath, privPEM, 0600))

	pubBytes, err := x509.MarshalPKIXPublicKey(pub)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	pubPath := filepath.Join(dir, "pub.pem")
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0600))

	mgr, err := auth.NewJWTManager(privPath, pubPath, time.Hour)
	require.NoError(t, err)
	return mgr, priv
}

// forgeToken signs a JWT with the given private key and claims.
func forgeToken(t *testing.T, privKey ed25519.PrivateKey, claims jwt.Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	signed, err := token.SignedString(privKey)
	require.NoError(t, err)
	return signed
}

func TestValidateToken_WrongIssuer(t *testing.T) {
	mgr, privKey := newTestJWTManagerWithKey(t)

	now := time.Now().UTC()
	token := forgeToken(t, privKey, &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "scheduler-1",
			Issuer:    "not-roster",
			Audience:  jwt.ClaimStrings{"roster"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			ID:        "00000000-0000-0000-0000-000000000001",
		},
		CallerID: "scheduler-1",
		Role:     auth.RoleScheduler,
	})

	_, err := mgr.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid issuer")
}

func TestValidateToken_EmptyIssuer(t *testing.T) {
	mgr, privKey := newTestJWTManagerWithKey(t)

	now := time.Now().UTC()
	token := forgeToken(t, privKey, &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "scheduler-1",
			Issuer:    "",
			Audience:  jwt.ClaimStrings{"roster"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			ID:        "00000000-0000-0000-0000-000000000002",
		},
		CallerID: "scheduler-1",
		Role:     auth.RoleScheduler,
	})

	_, err := mgr.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid issuer")
}

func TestIssueScopedToken(t *testing.T) {
	mgr, err := auth.NewJWTManager("", "", 24*time.Hour)
	require.NoError(t, err)

	admin := auth.Principal{ID: "admin-1", OrgID: "org-1", Role: auth.RoleAdmin}
	target := auth.Principal{ID: "viewer-1", OrgID: "org-1", Role: auth.RoleViewer}

	t.Run("claims carry target identity and scoped_by", func(t *testing.T) {
		token, expiresAt, err := mgr.IssueScopedToken(admin.ID, target, 5*time.Minute)
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.True(t, expiresAt.After(time.Now()))
		assert.True(t, expiresAt.Before(time.Now().Add(6*time.Minute)))

		claims, err := mgr.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "viewer-1", claims.CallerID)
		assert.Equal(t, auth.RoleViewer, claims.Role)
		assert.Equal(t, target.OrgID, claims.OrgID)
		assert.Equal(t, "admin-1", claims.ScopedBy)
	})

	t.Run("TTL is capped at MaxScopedTokenTTL", func(t *testing.T) {
		token, expiresAt, err := mgr.IssueScopedToken(admin.ID, target, 48*time.Hour)
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.True(t, expiresAt.Before(time.Now().Add(auth.MaxScopedTokenTTL+time.Minute)),
			"expiry should be capped at MaxScopedTokenTTL")
	})

	t.Run("zero TTL defaults to MaxScopedTokenTTL", func(t *testing.T) {
		token, expiresAt, err := mgr.IssueScopedToken(admin.ID, target, 0)
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.True(t, expiresAt.After(time.Now()))
	})

	t.Run("token is valid and passes ValidateToken", func(t *testing.T) {
		token, _, err := mgr.IssueScopedToken(admin.ID, target, 5*time.Minute)
		require.NoError(t, err)
		claims, err := mgr.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, target.ID, claims.Subject)
		assert.Equal(t, "roster", claims.Issuer)
	})
}

func TestRoleAtLeast(t *testing.T) {
	assert.True(t, auth.AtLeast(auth.RoleAdmin, auth.RoleViewer))
	assert.True(t, auth.AtLeast(auth.RoleScheduler, auth.RoleScheduler))
	assert.False(t, auth.AtLeast(auth.RoleViewer, auth.RoleAdmin))
	assert.False(t, auth.AtLeast(auth.Role("bogus"), auth.RoleViewer))
}
