package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"nafany/models"

	"github.com/golang-jwt/jwt"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// SessionClaims carries the signed-in identity.
type SessionClaims struct {
	Role         string `json:"role"`
	Name         string `json:"name"`
	ProfileImage string `json:"profileImage,omitempty"`
	jwt.StandardClaims
}

// TokenManager issues and verifies HS256 session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token whose subject is the account email.
func (m *TokenManager) Issue(user models.SessionUser) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.ttl)
	claims := SessionClaims{
		Role:         user.Role,
		Name:         user.Name,
		ProfileImage: user.ProfileImage,
		StandardClaims: jwt.StandardClaims{
			Subject:   user.Email,
			IssuedAt:  now.Unix(),
			ExpiresAt: expires.Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// Parse validates the signature and expiry and returns the identity.
func (m *TokenManager) Parse(tokenString string) (models.SessionUser, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" || claims.Role == "" {
		return models.SessionUser{}, ErrInvalidToken
	}
	return models.SessionUser{
		Role:         claims.Role,
		Email:        claims.Subject,
		Name:         claims.Name,
		ProfileImage: claims.ProfileImage,
	}, nil
}

// Remaining reports how long a token stays valid, used as the revocation TTL.
func (m *TokenManager) Remaining(tokenString string) time.Duration {
	claims := &SessionClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(tokenString, claims); err != nil {
		return m.ttl
	}
	left := time.Unix(claims.ExpiresAt, 0).Sub(m.now())
	if left <= 0 {
		return time.Second
	}
	return left
}

// HashToken computes a SHA-256 hash of the token string.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
