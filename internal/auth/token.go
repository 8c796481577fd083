package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// TokenManager handles issuing and validating JWT tokens for scheduler
// trigger requests.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttlHours int) *TokenManager {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	return &TokenManager{secret: []byte(secret), ttl: time.Duration(ttlHours) * time.Hour}
}

// Claims describes JWT payload.
type Claims struct {
	Scheduler string `json:"scheduler"`
	jwt.RegisteredClaims
}

// GenerateToken builds and signs a JWT for a scheduler identity.
func (tm *TokenManager) GenerateToken(scheduler string) (string, time.Time, error) {
	expiresAt := time.Now().Add(tm.ttl)
	claims := &Claims{
		Scheduler: scheduler,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   scheduler,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
