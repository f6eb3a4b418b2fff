package models

import (
	"strings"
	"time"
)

// User представляет пользователя в системе
type User struct {
	CreatedAt    time.Time `json:"created_at"` // время регистрации
	ID           string    `json:"id"`         // UUID пользователя
	Name         string    `json:"name"`       // отображаемое имя
	Email        string    `json:"email"`      // уникальный email в нижнем регистре, используется как логин
	PasswordHash string    `json:"-"`          // bcrypt хеш пароля, наружу не отдается
}

// NormalizeEmail приводит email к каноническому виду, в котором он хранится
// и по которому ищется пользователь.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Identity is the set of claims carried by a session token and attached to
// authenticated requests.
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// RevokedToken is a session token that was logged out before its expiry.
// Only the SHA-256 hash of the raw token is kept.
type RevokedToken struct {
	ExpiresAt time.Time `json:"expires_at"` // совпадает с exp самого токена
	RevokedAt time.Time `json:"revoked_at"`
	TokenHash string    `json:"token_hash"`
}
