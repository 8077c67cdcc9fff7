package auth

import (
	"github.com/bawasa/bawasa-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	Role     enums.UserRole
	FullName string
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to portal users.
type AccessTokenClaims struct {
	UserID   uuid.UUID      `json:"user_id"`
	Role     enums.UserRole `json:"role"`
	FullName string         `json:"full_name,omitempty"`
	jwt.RegisteredClaims
}
