package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/crownmania/crownmania/config"
)

// VaultClaims is the payload of a vault pass issued after a serial verifies.
type VaultClaims struct {
	SessionID string `json:"sid"`
	Serial    string `json:"serial"`
	jwt.RegisteredClaims
}

// GenerateVaultPass signs a pass for a verified session.
func GenerateVaultPass(sessionID, serial string, duration time.Duration) (string, error) {
	now := time.Now()
	claims := VaultClaims{
		SessionID: sessionID,
		Serial:    serial,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.Get().JWTSecret))
}

// ParseVaultPass validates a pass and returns its claims.
func ParseVaultPass(tokenStr string) (*VaultClaims, error) {
	secret := config.Get().JWTSecret
	parsed, err := jwt.ParseWithClaims(tokenStr, &VaultClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*VaultClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid vault pass")
	}
	return claims, nil
}
