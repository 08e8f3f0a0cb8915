// Package utils holds operator tooling shared by the command line scripts.
package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateJWT signs an HS256 admin token for subject, valid for ttl.
// Production tokens come from the identity provider; this is for local use and tests.
func GenerateJWT(subject, role, secret string, ttl time.Duration) (string, error) {
	if subject == "" || secret == "" {
		return "", errors.New("subject and secret are required")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if role != "" {
		claims["role"] = role
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
