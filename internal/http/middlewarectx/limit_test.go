package middlewarectx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
}

func loginFrom(h http.Handler, remoteAddr string) int {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimitMiddleware(t *testing.T) {
	// почти нулевая скорость пополнения: проходит только burst
	limiter := middlewarectx.NewLimiter(0.0001, 2)
	h := middlewarectx.RateLimitMiddleware(limiter, newNoopLogger())(okHandler())

	codes := make([]int, 0, 3)
	for range 3 {
		codes = append(codes, loginFrom(h, "192.0.2.1:1234"))
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimitMiddleware_PerClient(t *testing.T) {
	limiter := middlewarectx.NewLimiter(0.0001, 1)
	h := middlewarectx.RateLimitMiddleware(limiter, newNoopLogger())(okHandler())

	assert.Equal(t, http.StatusOK, loginFrom(h, "192.0.2.1:1000"))
	// другой порт того же адреса делит лимит
	assert.Equal(t, http.StatusTooManyRequests, loginFrom(h, "192.0.2.1:2000"))
	// исчерпанный лимит одного клиента не мешает другому
	assert.Equal(t, http.StatusOK, loginFrom(h, "198.51.100.7:1000"))
	assert.Equal(t, http.StatusOK, loginFrom(h, "[2001:db8::1]:443"))
	assert.Equal(t, http.StatusTooManyRequests, loginFrom(h, "[2001:db8::1]:444"))
}

func TestLimiter_Allow(t *testing.T) {
	limiter := middlewarectx.NewLimiter(0.0001, 1)

	assert.True(t, limiter.Allow("a"))
	assert.False(t, limiter.Allow("a"))
	assert.True(t, limiter.Allow("b"))
}
