package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims defines the structure of the JWT claims.
type Claims struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Identity returns the principal carried by the claims.
func (c *Claims) Identity() *Identity {
	return &Identity{ID: c.UserID, Email: c.Email, Role: c.Role}
}
