package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticTokens map[string]int64

func (s staticTokens) Parse(token string) (int64, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return 0, errors.New("bad token")
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWT(t *testing.T) {
	r := gin.New()
	r.GET("/me", JWT(staticTokens{"good": 42}), func(c *gin.Context) {
		id, ok := TelegramID(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"tg_id": id})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w := do(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_token")

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	w = do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tg_id":42}`, w.Body.String())
}

func TestLocalLimiterFallback(t *testing.T) {
	r := gin.New()
	r.GET("/x", NewRateLimiter(nil).Limit("test", 2, time.Hour, KeyByIP), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusNoContent, do(r, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
	}
	w := do(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3600", w.Header().Get("Retry-After"))

	other := httptest.NewRequest(http.MethodGet, "/x", nil)
	other.RemoteAddr = "10.0.0.9:1234"
	assert.Equal(t, http.StatusNoContent, do(r, other).Code)
}

func TestAccountLimitSkipsAnonymous(t *testing.T) {
	r := gin.New()
	r.GET("/x", NewRateLimiter(nil).Limit("tap", 1, time.Hour, KeyByAccount), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusNoContent, do(r, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
	}
}

func TestDisabledLimit(t *testing.T) {
	r := gin.New()
	r.GET("/x", NewRateLimiter(nil).Limit("off", 0, time.Minute, KeyByIP), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusNoContent, do(r, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Logger(), Metrics())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc")
	assert.Equal(t, "abc", do(r, req).Header().Get(RequestIDHeader))
}
