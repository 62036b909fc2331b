package jwtutil

import (
	"errors"
	"time"

	"goaltrack-service/pkg/config"

	"github.com/golang-jwt/jwt/v4"
)

var cfg *config.JWTConfig

// UserClaims represents the JWT claims for user authentication
type UserClaims struct {
	Email       string `json:"email"`
	UserID      uint   `json:"user_id"`
	CompanyID   *uint  `json:"company_id,omitempty"`   // Selected company for multi-tenant scoping
	CompanyName string `json:"company_name,omitempty"` // Company name for convenience
	jwt.RegisteredClaims
}

// Initialize stores the JWT configuration used for signing and validation
func Initialize(c *config.JWTConfig) {
	cfg = c
}

// GenerateToken creates a JWT token with user information only
func GenerateToken(email string, userID uint) (string, error) {
	return GenerateTokenWithCompany(email, userID, nil, "")
}

// GenerateTokenWithCompany creates a JWT token carrying the selected company.
// The member's role is deliberately not embedded: role and screen permissions
// are reloaded from storage on every company-scoped request so that a
// permission change takes effect immediately.
func GenerateTokenWithCompany(email string, userID uint, companyID *uint, companyName string) (string, error) {
	if cfg == nil {
		return "", errors.New("JWT configuration not provided")
	}

	claims := UserClaims{
		Email:       email,
		UserID:      userID,
		CompanyID:   companyID,
		CompanyName: companyName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(cfg.ExpirationHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.SigningKey))
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*UserClaims, error) {
	if cfg == nil {
		return nil, errors.New("JWT configuration not provided")
	}

	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.SigningKey), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
