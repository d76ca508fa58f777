// Package apperr классифицирует ошибки бизнес-логики, чтобы транспортный
// слой мог выбрать код ответа, не разбирая текст ошибки.
package apperr

import (
	"errors"
)

// Kind класс ошибки.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuth
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error ошибка с классом и сообщением, которое можно показать клиенту.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation некорректные или отсутствующие входные данные.
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Conflict нарушение уникальности.
func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

// Auth неверные учётные данные, токен или отключённый аккаунт.
func Auth(msg string) error {
	return &Error{Kind: KindAuth, Message: msg}
}

// AuthWrap как Auth, но сохраняет исходную причину для логов.
func AuthWrap(msg string, err error) error {
	return &Error{Kind: KindAuth, Message: msg, Err: err}
}

// NotFound сущность не найдена или не принадлежит вызывающему.
func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// KindOf возвращает класс ошибки. Неклассифицированные ошибки считаются внутренними.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf возвращает сообщение для клиента, если ошибка классифицирована.
func MessageOf(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message, true
	}
	return "", false
}
