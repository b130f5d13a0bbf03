package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// DefaultTokenTTL is the session lifetime.
const DefaultTokenTTL = 24 * time.Hour

// TokenIssuer signs and verifies HS256 session tokens carrying tg_id.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	Now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, Now: time.Now}
}

func (i *TokenIssuer) Issue(telegramID int64) (string, error) {
	now := i.Now()
	claims := jwt.MapClaims{
		"tg_id": telegramID,
		"exp":   now.Add(i.ttl).Unix(),
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Parse validates the token and returns its tg_id.
func (i *TokenIssuer) Parse(tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}

	tgID, ok := claims["tg_id"].(float64)
	if !ok || tgID == 0 {
		return 0, ErrInvalidToken
	}
	return int64(tgID), nil
}
