// Package jwt выпускает и проверяет bearer-токены администраторов (HS256).
package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin - роль, которой разрешён доступ к административному API.
const RoleAdmin = "admin"

// CustomClaims описывает данные администратора, хранящиеся в токене.
// UserID - hex-представление ObjectID пользователя.
type CustomClaims struct {
	UserID   string `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Maker выпускает и разбирает токены.
type Maker interface {
	GenerateToken(userID, username, role string) (string, error)
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует Maker на общем секрете.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTMaker создаёт MakerImpl.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
