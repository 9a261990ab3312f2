package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-backend/pkg/config"
)

// clockSkew tolerates small drift between the identity service and this API.
const clockSkew = 30 * time.Second

var (
	signingMethod = jwt.SigningMethodHS256

	ErrMissingSecret  = errors.New("jwt secret is required")
	ErrMissingSubject = errors.New("token carries no user id")
)

// Validate runs after the registered claims checks.
func (c AccessTokenClaims) Validate() error {
	if strings.TrimSpace(c.UserID) == "" {
		return ErrMissingSubject
	}
	return nil
}

// MintAccessToken signs a token for payload that expires after cfg.TTL().
func MintAccessToken(cfg config.JWTConfig, now time.Time, payload AccessTokenPayload) (string, error) {
	switch {
	case cfg.Secret == "":
		return "", ErrMissingSecret
	case strings.TrimSpace(payload.UserID) == "":
		return "", ErrMissingSubject
	case !payload.Role.IsValid():
		return "", fmt.Errorf("invalid role %q", payload.Role)
	}

	signed, err := jwt.NewWithClaims(signingMethod, AccessTokenClaims{
		UserID: payload.UserID,
		Role:   payload.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL())),
		},
	}).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// ParseAccessToken verifies signature, expiry and, when configured, issuer.
// Tokens from the identity service may omit exp and iss.
func ParseAccessToken(cfg config.JWTConfig, tokenString string) (*AccessTokenClaims, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithLeeway(clockSkew),
		jwt.WithIssuedAt(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	claims := &AccessTokenClaims{}
	if _, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(cfg.Secret), nil
	}, opts...); err != nil {
		return nil, err
	}
	return claims, nil
}
