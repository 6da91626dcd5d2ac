package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role identifies the kind of principal carried by a bearer token
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleSeller Role = "seller"
)

// Claims represents the claims carried by platform-issued bearer tokens
type Claims struct {
	jwt.RegisteredClaims
	Role     Role   `json:"role"`
	SellerID string `json:"seller_id,omitempty"`
}

// Principal is the authenticated identity extracted from a bearer token
type Principal struct {
	Role     Role
	SellerID string
}

// IsAdmin returns true for admin principals
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// IsSeller returns true for seller principals
func (p *Principal) IsSeller() bool {
	return p != nil && p.Role == RoleSeller
}

// JWTManager verifies (and, given a private key, issues) RS256 bearer tokens
type JWTManager struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
	expiry     time.Duration
}

// NewVerifier creates a verify-only JWTManager from a PEM-encoded public key
func NewVerifier(publicKeyPEM []byte, issuer string) (*JWTManager, error) {
	block, _ := pem.Decode(publicKeyPEM)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	rsaKey, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("key is not an RSA public key")
	}

	return &JWTManager{publicKey: rsaKey, issuer: issuer}, nil
}

// NewJWTManager creates a JWTManager that can both issue and verify tokens
func NewJWTManager(privateKeyPEM []byte, issuer string, expiry time.Duration) (*JWTManager, error) {
	block, _ := pem.Decode(privateKeyPEM)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}

	privateKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		// Try PKCS8 format
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		var ok bool
		privateKey, ok = key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("key is not an RSA private key")
		}
	}

	return &JWTManager{
		privateKey: privateKey,
		publicKey:  &privateKey.PublicKey,
		issuer:     issuer,
		expiry:     expiry,
	}, nil
}

// GenerateToken generates a new bearer token for the given principal
func (jm *JWTManager) GenerateToken(role Role, sellerID string) (string, error) {
	if jm.privateKey == nil {
		return "", fmt.Errorf("manager is verify-only")
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jm.issuer,
			Subject:   sellerID,
			ExpiresAt: jwt.NewNumericDate(now.Add(jm.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
		Role:     role,
		SellerID: sellerID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(jm.privateKey)
}

// VerifyToken validates a bearer token and extracts the principal
func (jm *JWTManager) VerifyToken(tokenString string) (*Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jm.publicKey, nil
	}, jwt.WithIssuer(jm.issuer))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if claims.Role != RoleAdmin && claims.Role != RoleSeller {
		return nil, fmt.Errorf("unknown role: %q", claims.Role)
	}
	if claims.Role == RoleSeller && claims.SellerID == "" {
		return nil, fmt.Errorf("seller token missing seller_id")
	}

	return &Principal{Role: claims.Role, SellerID: claims.SellerID}, nil
}
