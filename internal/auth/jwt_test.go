package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKeyPEMs(t *testing.T) (privatePEM, publicPEM []byte) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privatePEM = pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	pubBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	publicPEM = pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubBytes,
	})
	return privatePEM, publicPEM
}

func TestGenerateAndVerifyToken(t *testing.T) {
	privatePEM, _ := generateKeyPEMs(t)
	manager, err := NewJWTManager(privatePEM, "partnerhub", time.Hour)
	require.NoError(t, err)

	token, err := manager.GenerateToken(RoleSeller, "seller-1")
	require.NoError(t, err)

	principal, err := manager.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, RoleSeller, principal.Role)
	assert.Equal(t, "seller-1", principal.SellerID)
	assert.True(t, principal.IsSeller())
	assert.False(t, principal.IsAdmin())
}

func TestVerifyOnlyManager(t *testing.T) {
	privatePEM, publicPEM := generateKeyPEMs(t)

	issuer, err := NewJWTManager(privatePEM, "partnerhub", time.Hour)
	require.NoError(t, err)
	verifier, err := NewVerifier(publicPEM, "partnerhub")
	require.NoError(t, err)

	token, err := issuer.GenerateToken(RoleAdmin, "")
	require.NoError(t, err)

	principal, err := verifier.VerifyToken(token)
	require.NoError(t, err)
	assert.True(t, principal.IsAdmin())

	_, err = verifier.GenerateToken(RoleAdmin, "")
	assert.Error(t, err, "verify-only manager cannot issue tokens")
}

func TestVerifyToken_WrongIssuer(t *testing.T) {
	privatePEM, _ := generateKeyPEMs(t)

	issuer, err := NewJWTManager(privatePEM, "someone-else", time.Hour)
	require.NoError(t, err)
	verifier, err := NewJWTManager(privatePEM, "partnerhub", time.Hour)
	require.NoError(t, err)

	token, err := issuer.GenerateToken(RoleAdmin, "")
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyToken_WrongKey(t *testing.T) {
	privatePEM, _ := generateKeyPEMs(t)
	otherPEM, _ := generateKeyPEMs(t)

	issuer, err := NewJWTManager(privatePEM, "partnerhub", time.Hour)
	require.NoError(t, err)
	verifier, err := NewJWTManager(otherPEM, "partnerhub", time.Hour)
	require.NoError(t, err)

	token, err := issuer.GenerateToken(RoleSeller, "seller-1")
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyToken_Expired(t *testing.T) {
	privatePEM, _ := generateKeyPEMs(t)
	manager, err := NewJWTManager(privatePEM, "partnerhub", -time.Minute)
	require.NoError(t, err)

	token, err := manager.GenerateToken(RoleSeller, "seller-1")
	require.NoError(t, err)

	_, err = manager.VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyToken_SellerRequiresSellerID(t *testing.T) {
	privatePEM, _ := generateKeyPEMs(t)
	manager, err := NewJWTManager(privatePEM, "partnerhub", time.Hour)
	require.NoError(t, err)

	token, err := manager.GenerateToken(RoleSeller, "")
	require.NoError(t, err)

	_, err = manager.VerifyToken(token)
	assert.Error(t, err)
}
