// Package request содержит общие для обработчиков операции разбора запроса.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
)

// MaxBodyBytes предельный размер тела запроса.
const MaxBodyBytes = 1 << 20

var (
	// ErrEmptyBody тело запроса отсутствует.
	ErrEmptyBody = errors.New("request body is empty")
	// ErrInvalidID параметр пути не является положительным целым.
	ErrInvalidID = errors.New("invalid id")
)

// DecodeJSON читает тело запроса в dst.
func DecodeJSON(r *http.Request, dst any) error {
	const op = "request.DecodeJSON"

	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%s: %w", op, ErrEmptyBody)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// IntParam возвращает целочисленный параметр пути chi.
func IntParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s=%q: %w", name, raw, ErrInvalidID)
	}
	return id, nil
}
