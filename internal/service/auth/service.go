package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bloodbridge/backend/internal/config"
	apperrors "github.com/bloodbridge/backend/pkg/errors"
	"github.com/bloodbridge/backend/pkg/security"
)

// Service authenticates the admin account and mints session tokens for
// the admin endpoints. There is a single admin identity configured via
// environment, matching the deployment model of the service.
type Service struct {
	adminEmail string
	adminHash  string
	hasher     security.PasswordHasher
	secret     []byte
	expiry     time.Duration
}

func NewService(secrets config.Secrets, jwtCfg config.JWTConfig, hasher security.PasswordHasher) (*Service, error) {
	if secrets.AdminPassword == "" {
		return nil, fmt.Errorf("admin password is not configured")
	}
	if jwtCfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is not configured")
	}

	hash, err := hasher.Hash(secrets.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}

	return &Service{
		adminEmail: secrets.AdminEmail,
		adminHash:  hash,
		hasher:     hasher,
		secret:     []byte(jwtCfg.Secret),
		expiry:     time.Duration(jwtCfg.ExpiryHours) * time.Hour,
	}, nil
}

// Login validates the admin password and returns a signed token.
func (s *Service) Login(password string) (string, error) {
	if err := s.hasher.Compare(s.adminHash, password); err != nil {
		return "", apperrors.Unauthorized(fmt.Errorf("invalid password"))
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "admin",
		"email": s.adminEmail,
		"iat":   now.Unix(),
		"exp":   now.Add(s.expiry).Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies an admin session token.
func (s *Service) ValidateToken(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return apperrors.Unauthorized(err)
	}
	return nil
}
