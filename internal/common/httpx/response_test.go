package httpx

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbon-forest-backend/internal/common/apperr"
	"carbon-forest-backend/internal/common/middleware"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestErrorLogsStorageCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logs := captureLogs(t)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.GET("/boom", func(c *gin.Context) {
		c.Set("user_id", "user-1")
		Error(c, apperr.Storage(errors.New("pq: relation \"carbon_accounts\" does not exist")))
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("X-Request-ID", "req-42")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	// Client sees only the sanitized message.
	assert.Contains(t, rec.Body.String(), "internal storage error")
	assert.NotContains(t, rec.Body.String(), "carbon_accounts")

	// The log carries the raw cause and the request context.
	assert.Contains(t, logs.String(), "carbon_accounts")
	assert.Contains(t, logs.String(), "req-42")
	assert.Contains(t, logs.String(), "user-1")
}

func TestErrorSkipsLogForClientFaults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logs := captureLogs(t)

	router := gin.New()
	router.GET("/bad", func(c *gin.Context) {
		Error(c, apperr.New(apperr.KindValidation, "invalid category"))
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bad", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid category")
	assert.Empty(t, logs.String())
}

func TestErrorLogsUntypedAsStorage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logs := captureLogs(t)

	router := gin.New()
	router.GET("/raw", func(c *gin.Context) {
		Error(c, errors.New("driver: bad connection"))
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/raw", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
	assert.NotContains(t, rec.Body.String(), "bad connection")
	assert.Contains(t, logs.String(), "bad connection")
}
