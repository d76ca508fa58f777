// Package jwt выпускает и проверяет подписанные HS256 токены доступа.
//
// Токен содержит идентификатор субъекта (sub), email и вид субъекта
// (user или admin). Секретный ключ задаётся один раз при старте процесса.
package jwt

import (
	"errors"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// ErrInvalidToken возвращается для любого непригодного токена.
var ErrInvalidToken = errors.New("invalid token")

// Maker описывает генерацию и разбор токенов.
type Maker interface {
	GenerateToken(p models.Principal) (string, error)
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует Maker с секретным ключом и временем жизни токена.
type MakerImpl struct {
	secretKey []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewJWTMaker создаёт MakerImpl.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: []byte(secretKey),
		tokenTTL:  ttl,
		now:       time.Now,
	}
}

// TTL время жизни выпускаемых токенов.
func (j *MakerImpl) TTL() time.Duration {
	return j.tokenTTL
}
