package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "validation", err: Validation("bad"), want: KindValidation},
		{name: "conflict", err: Conflict("dup"), want: KindConflict},
		{name: "auth", err: Auth("no"), want: KindAuth},
		{name: "not found", err: NotFound("missing"), want: KindNotFound},
		{name: "wrapped", err: fmt.Errorf("op: %w", NotFound("missing")), want: KindNotFound},
		{name: "plain error", err: errors.New("db down"), want: KindInternal},
		{name: "nil", err: nil, want: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestMessageOf(t *testing.T) {
	msg, ok := MessageOf(fmt.Errorf("svc: %w", Auth("account is deactivated")))
	assert.True(t, ok)
	assert.Equal(t, "account is deactivated", msg)

	_, ok = MessageOf(errors.New("pq: connection refused"))
	assert.False(t, ok)
}

func TestAuthWrap_KeepsCause(t *testing.T) {
	cause := errors.New("token is expired")
	err := AuthWrap("invalid token", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindAuth, KindOf(err))
	assert.Equal(t, "invalid token: token is expired", err.Error())
}
