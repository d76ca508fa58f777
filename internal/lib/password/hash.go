// Package password хеширует и проверяет пароли с помощью bcrypt.
//
// Hasher ограничивает число одновременных bcrypt-операций, чтобы всплеск
// входов не занимал все ядра и не задерживал остальные запросы.
package password

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// MinCost минимальная допустимая стоимость bcrypt.
const MinCost = 12

// MaxBytes предел длины пароля в байтах, который принимает bcrypt.
const MaxBytes = 72

var (
	// ErrMismatch пароль не соответствует хешу.
	ErrMismatch = bcrypt.ErrMismatchedHashAndPassword
	// ErrTooLong пароль длиннее MaxBytes байт.
	ErrTooLong = bcrypt.ErrPasswordTooLong
)

// Hasher хеширует пароли с заданной стоимостью и ограниченным параллелизмом.
type Hasher struct {
	cost int
	sem  *semaphore.Weighted
}

// NewHasher создаёт Hasher. Стоимость ниже MinCost повышается до MinCost,
// maxConcurrent <= 0 означает GOMAXPROCS.
func NewHasher(cost, maxConcurrent int) *Hasher {
	if cost < MinCost {
		cost = MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	if maxConcurrent <= 0 {
		maxConcurrent = runtime.GOMAXPROCS(0)
	}
	return &Hasher{
		cost: cost,
		sem:  semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// Cost фактическая стоимость bcrypt.
func (h *Hasher) Cost() int {
	return h.cost
}

// Hash возвращает bcrypt-хеш пароля. Для пароля длиннее MaxBytes байт
// возвращает ошибку, для которой errors.Is(err, ErrTooLong) истинно.
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	const op = "password.Hash"
	if len(password) > MaxBytes {
		return "", fmt.Errorf("%s: %w", op, ErrTooLong)
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer h.sem.Release(1)

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// Compare сравнивает хеш с паролем. При несовпадении возвращает ошибку,
// для которой errors.Is(err, ErrMismatch) истинно.
func (h *Hasher) Compare(ctx context.Context, hash, password string) error {
	const op = "password.Compare"
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer h.sem.Release(1)

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("%s: %w", op, ErrMismatch)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
