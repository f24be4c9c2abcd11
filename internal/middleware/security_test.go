package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCorrelationID(t *testing.T) {
	r := gin.New()
	r.Use(CorrelationID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CorrelationIDKey))
	})

	t.Run("generated", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
		id := w.Header().Get(CorrelationIDHeader)
		assert.Len(t, id, 36)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(CorrelationIDHeader, "abc-123")
		w := serve(r, req)
		assert.Equal(t, "abc-123", w.Header().Get(CorrelationIDHeader))
		assert.Equal(t, "abc-123", w.Body.String())
	})
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"), "HSTS only in release mode")
}

func TestRequestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(RequestTimeout(50 * time.Millisecond))
	r.GET("/", func(c *gin.Context) {
		deadline, ok := c.Request.Context().Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 50*time.Millisecond)
		c.Status(http.StatusOK)
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuditLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	r := gin.New()
	r.Use(CorrelationID(), AuditLogger(logger))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	req := httptest.NewRequest(http.MethodGet, "/items/7", nil)
	req.Header.Set(CorrelationIDHeader, "corr-1")
	serve(r, req)

	out := buf.String()
	assert.Contains(t, out, `"correlation_id":"corr-1"`)
	assert.Contains(t, out, `"path":"/items/:id"`)
	assert.Contains(t, out, `"status":404`)
	assert.Contains(t, out, `"level":"warning"`)
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(CorrelationID(), RateLimit(1, 2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	newReq := func(ip string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":5000"
		return req
	}

	assert.Equal(t, http.StatusOK, serve(r, newReq("10.0.0.1")).Code)
	assert.Equal(t, http.StatusOK, serve(r, newReq("10.0.0.1")).Code)

	w := serve(r, newReq("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, serve(r, newReq("10.0.0.2")).Code, "budgets are per client")
}

func TestRateLimit_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(0, 0))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 20; i++ {
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
}
