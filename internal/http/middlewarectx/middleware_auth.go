// Package middlewarectx содержит HTTP middleware трекера подписок.
//
// RequireKind проверяет JWT из заголовка Authorization и требуемый вид субъекта
// (пользователь или администратор). В случае успеха кладёт models.Principal
// в контекст запроса, откуда его достаёт PrincipalFrom.
//
// При отсутствии, недействительности токена или неверном виде субъекта
// возвращает HTTP 401 Unauthorized.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// PrincipalKey ключ субъекта в контексте.
const PrincipalKey Key = "principal"

const (
	// MsgMissingToken ответ на запрос без токена.
	MsgMissingToken = "missing or invalid authorization header"
	// MsgInvalidToken ответ на недействительный токен.
	MsgInvalidToken = "invalid or expired token"
)

// TokenValidator проверяет токен и вид субъекта.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string, kind models.PrincipalKind) (models.Principal, error)
}

// AuthObserver учитывает исходы проверки токена.
type AuthObserver interface {
	ObserveAuth(kind models.PrincipalKind, outcome string)
}

// Исходы проверки токена для AuthObserver.
const (
	AuthOK      = "ok"
	AuthMissing = "missing"
	AuthDenied  = "denied"
)

// RequireKind возвращает middleware, пропускающий только запросы с действительным
// токеном вида kind. observer может быть nil.
func RequireKind(v TokenValidator, kind models.PrincipalKind, observer AuthObserver, log *slog.Logger) func(http.Handler) http.Handler {
	observe := func(outcome string) {
		if observer != nil {
			observer.ObserveAuth(kind, outcome)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireKind"

			log := log.With(
				slog.String("op", op),
				slog.String("kind", string(kind)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			tokenStr, ok := bearerToken(r)
			if !ok {
				log.Info("missing or invalid authorization header")
				observe(AuthMissing)
				response.RenderStatus(w, r, http.StatusUnauthorized, MsgMissingToken)
				return
			}

			principal, err := v.ValidateToken(r.Context(), tokenStr, kind)
			if err != nil {
				log.Info("token rejected", sl.Err(err))
				observe(AuthDenied)
				response.RenderStatus(w, r, http.StatusUnauthorized, MsgInvalidToken)
				return
			}

			observe(AuthOK)
			ctx := context.WithValue(r.Context(), PrincipalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFrom возвращает субъекта, сохранённого RequireKind.
func PrincipalFrom(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(models.Principal)
	return p, ok
}

// WithPrincipal кладёт субъекта в контекст. Используется в тестах обработчиков.
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}
