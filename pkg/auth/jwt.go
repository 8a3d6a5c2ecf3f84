package auth

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTConfig selects the verification key. Tokens are issued by the identity
// provider of the back office; this service only validates them, except in
// tests and local tooling where Secret lets it sign as well.
type JWTConfig struct {
	Secret       string // HS256
	PublicKeyPEM string // RS256, validation only
	Issuer       string
	Expiration   time.Duration
}

// JWTService validates bearer tokens.
type JWTService struct {
	cfg     JWTConfig
	keyFunc jwt.Keyfunc
	methods []string
}

// NewJWTService prefers an RSA public key and falls back to the shared secret.
func NewJWTService(cfg JWTConfig) (*JWTService, error) {
	svc := &JWTService{cfg: cfg}

	switch {
	case cfg.PublicKeyPEM != "":
		pub, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("parse RSA public key: %w", err)
		}
		svc.keyFunc = func(*jwt.Token) (any, error) { return pub, nil }
		svc.methods = []string{jwt.SigningMethodRS256.Alg()}
	case cfg.Secret != "":
		secret := []byte(cfg.Secret)
		svc.keyFunc = func(*jwt.Token) (any, error) { return secret, nil }
		svc.methods = []string{jwt.SigningMethodHS256.Alg()}
	default:
		return nil, errors.New("jwt configuration requires PublicKeyPEM or Secret")
	}
	return svc, nil
}

// GenerateToken signs an HS256 token. Only available in secret mode.
func (s *JWTService) GenerateToken(userID, tenantID uuid.UUID, roles []string) (string, error) {
	if s.cfg.Secret == "" {
		return "", errors.New("cannot generate token: no signing secret configured")
	}
	now := time.Now()
	exp := s.cfg.Expiration
	if exp == 0 {
		exp = 15 * time.Minute
	}
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(exp)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		UserID:   userID,
		TenantID: tenantID,
		Roles:    roles,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses a token and checks signature, expiry and issuer.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods(s.methods), jwt.WithExpirationRequired()}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}

	claims := &Claims{}
	if _, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc, opts...); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if claims.UserID == uuid.Nil {
		return nil, errors.New("token carries no user_id")
	}
	return claims, nil
}

// LoadKeyFromFile reads a PEM file.
func LoadKeyFromFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file %q: %w", path, err)
	}
	return data, nil
}
