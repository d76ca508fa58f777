package jwt

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// CustomClaims данные, хранящиеся в токене.
type CustomClaims struct {
	Email string               `json:"email"`
	Kind  models.PrincipalKind `json:"kind"`
	jwt.RegisteredClaims
}

// Principal возвращает субъект, описанный токеном.
func (c *CustomClaims) Principal() models.Principal {
	return models.Principal{ID: c.Subject, Email: c.Email, Kind: c.Kind}
}

// GenerateToken подписывает токен для субъекта p.
func (j *MakerImpl) GenerateToken(p models.Principal) (string, error) {
	const op = "jwt.GenerateToken"
	if p.ID == "" || !p.Kind.Valid() {
		return "", fmt.Errorf("%s: incomplete principal", op)
	}
	now := j.now()
	claims := CustomClaims{
		Email: p.Email,
		Kind:  p.Kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// ParseToken проверяет подпись, алгоритм и срок действия токена.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return j.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	if claims.Subject == "" || !claims.Kind.Valid() {
		return nil, fmt.Errorf("%s: %w", op, errors.Join(ErrInvalidToken, errors.New("missing subject or kind")))
	}
	return claims, nil
}
