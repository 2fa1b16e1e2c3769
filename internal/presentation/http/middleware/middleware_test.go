package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/shop-billing-api/internal/application/service"
	"github.com/sangkips/shop-billing-api/internal/config"
	"github.com/sangkips/shop-billing-api/internal/domain/entity"
	domainRepo "github.com/sangkips/shop-billing-api/internal/domain/repository"
	"github.com/sangkips/shop-billing-api/internal/infrastructure/database"
	"github.com/sangkips/shop-billing-api/internal/infrastructure/repository"
	"github.com/sangkips/shop-billing-api/internal/presentation/http/dto/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newIdempotencyRepo(t *testing.T) domainRepo.IdempotencyRepository {
	t.Helper()
	db, err := database.NewSQLiteDB(":memory:", "silent")
	require.NoError(t, err)
	require.NoError(t, database.InitSchema(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return repository.NewIdempotencyRepository(db)
}

func TestSessionMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		header string
		cookie string
		want   string
	}{
		{"header wins", "counter-1", "counter-2", "counter-1"},
		{"cookie fallback", "", "counter-2", "counter-2"},
		{"trimmed header", "  counter-3 ", "", "counter-3"},
		{"nothing given", "", "", service.DefaultSession},
		{"too long", strings.Repeat("x", maxSessionLength+1), "", service.DefaultSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(SessionMiddleware())
			r.GET("/", func(c *gin.Context) {
				c.String(http.StatusOK, c.GetString(response.SessionKey))
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(SessionHeader, tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Body.String())
			assert.Equal(t, tt.want, w.Header().Get(SessionHeader))
		})
	}
}

func idempotentRouter(t *testing.T, cfg IdempotencyConfig, status int) (*gin.Engine, *int32) {
	t.Helper()
	var calls int32

	r := gin.New()
	r.Use(SessionMiddleware())
	r.POST("/bills", Idempotency(cfg), func(c *gin.Context) {
		n := atomic.AddInt32(&calls, 1)
		c.JSON(status, gin.H{"bill_no": fmt.Sprintf("RPP%d", n)})
	})
	return r, &calls
}

func postBill(r *gin.Engine, key, session string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/bills", nil)
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	if session != "" {
		req.Header.Set(SessionHeader, session)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysWithinSession(t *testing.T) {
	r, calls := idempotentRouter(t, IdempotencyConfig{Repo: newIdempotencyRepo(t)}, http.StatusCreated)

	first := postBill(r, "checkout-1", "counter-1")
	require.Equal(t, http.StatusCreated, first.Code)
	assert.Empty(t, first.Header().Get("X-Idempotency-Replayed"))

	second := postBill(r, "checkout-1", "counter-1")
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Replayed"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))

	// Same key from another counter is a different request
	other := postBill(r, "checkout-1", "counter-2")
	require.Equal(t, http.StatusCreated, other.Code)
	assert.JSONEq(t, `{"bill_no":"RPP2"}`, other.Body.String())
	assert.EqualValues(t, 2, atomic.LoadInt32(calls))
}

func TestIdempotency_WithoutKey(t *testing.T) {
	r, calls := idempotentRouter(t, IdempotencyConfig{Repo: newIdempotencyRepo(t)}, http.StatusCreated)

	postBill(r, "", "")
	postBill(r, "", "")
	assert.EqualValues(t, 2, atomic.LoadInt32(calls))

	strict, strictCalls := idempotentRouter(t, IdempotencyConfig{Repo: newIdempotencyRepo(t), Required: true}, http.StatusCreated)
	w := postBill(strict, "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.EqualValues(t, 0, atomic.LoadInt32(strictCalls))
}

func TestIdempotency_KeyTooLong(t *testing.T) {
	r, calls := idempotentRouter(t, IdempotencyConfig{Repo: newIdempotencyRepo(t)}, http.StatusCreated)

	w := postBill(r, strings.Repeat("k", maxIdempotencyKeyLength+1), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.EqualValues(t, 0, atomic.LoadInt32(calls))
}

func TestIdempotency_FailuresAreNotStored(t *testing.T) {
	r, calls := idempotentRouter(t, IdempotencyConfig{Repo: newIdempotencyRepo(t)}, http.StatusBadRequest)

	postBill(r, "checkout-1", "")
	w := postBill(r, "checkout-1", "")
	assert.Empty(t, w.Header().Get("X-Idempotency-Replayed"))
	assert.EqualValues(t, 2, atomic.LoadInt32(calls))
}

func TestIdempotency_ExpiredKeyRunsAgain(t *testing.T) {
	repo := newIdempotencyRepo(t)
	require.NoError(t, repo.Create(context.Background(), &entity.IdempotencyKey{
		Key:          "checkout-1",
		SessionID:    service.DefaultSession,
		Endpoint:     "POST /bills",
		ResponseCode: http.StatusCreated,
		ResponseBody: `{"bill_no":"OLD"}`,
		ExpiresAt:    time.Now().Add(-time.Minute),
	}))

	r, calls := idempotentRouter(t, IdempotencyConfig{Repo: repo}, http.StatusCreated)

	w := postBill(r, "checkout-1", "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"bill_no":"RPP1"}`, w.Body.String())

	// The fresh response replaces the expired one
	w = postBill(r, "checkout-1", "")
	assert.Equal(t, "true", w.Header().Get("X-Idempotency-Replayed"))
	assert.JSONEq(t, `{"bill_no":"RPP1"}`, w.Body.String())
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))
}

func TestClientRateLimiter_RejectsOverBurst(t *testing.T) {
	rl := NewClientRateLimiter(RateLimiterConfig{RequestsPerSecond: 0.001, BurstSize: 2})
	defer rl.Close()

	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests {
			assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
			assert.Equal(t, "1", w.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, 1, rl.Stats()["active_clients"])
}

func TestClientRateLimiter_Cleanup(t *testing.T) {
	rl := NewClientRateLimiter(RateLimiterConfig{RequestsPerSecond: 1, BurstSize: 1, EntryTTL: time.Millisecond})
	defer rl.Close()

	rl.getLimiter("10.0.0.1")
	time.Sleep(5 * time.Millisecond)
	rl.cleanup()

	assert.Equal(t, 0, rl.Stats()["active_clients"])
}

func TestRateLimiterConfigFrom(t *testing.T) {
	cfg := RateLimiterConfigFrom(100, 60)
	assert.InDelta(t, 100.0/60.0, cfg.RequestsPerSecond, 1e-9)
	assert.Equal(t, 100, cfg.BurstSize)

	assert.Equal(t, DefaultRateLimiterConfig(), RateLimiterConfigFrom(0, 60))
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware(&config.CORSConfig{AllowedHeaders: []string{"Content-Type"}}))
	r.POST("/api/v1/invoices", func(c *gin.Context) { c.Status(http.StatusCreated) })

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/invoices", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Idempotency-Key, X-Session-ID")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	allowed := strings.ToLower(w.Header().Get("Access-Control-Allow-Headers"))
	assert.Contains(t, allowed, "idempotency-key")
	assert.Contains(t, allowed, "x-session-id")
}

func TestCORSMiddleware_RejectsUnknownOrigin(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware(&config.CORSConfig{}))
	r.GET("/api/cart", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("Origin", "http://evil.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLoggerMiddleware_SetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(LoggerMiddleware())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(response.RequestIDKey))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Body.String())
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
