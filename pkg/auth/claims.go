package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Role is the coarse permission level carried in a token.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID string
	Role   Role
}

// AccessTokenClaims represents the typed JWT presented by clients. Tokens are
// issued by the identity service; only verification happens here.
type AccessTokenClaims struct {
	UserID string `json:"id"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}
