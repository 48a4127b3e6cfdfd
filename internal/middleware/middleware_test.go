package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"detectserver/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), RequestLogger(logger.Discard()))
	router.GET("/id", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})
	return router
}

func TestRequestID_Generated(t *testing.T) {
	router := newRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/id", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	id := rec.Header().Get(RequestIDHeader)
	assert.Equal(t, id, rec.Body.String())

	parsed, err := uuid.FromString(id)
	require.NoError(t, err)
	assert.Equal(t, byte(uuid.V4), parsed.Version())
}

func TestRequestID_Unique(t *testing.T) {
	router := newRouter()
	seen := make(map[string]bool)

	for i := 0; i < 20; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/id", nil))
		id := rec.Header().Get(RequestIDHeader)
		assert.False(t, seen[id], "duplicate request id %s", id)
		seen[id] = true
	}
}

func TestRequestID_ClientSupplied(t *testing.T) {
	router := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(RequestIDHeader, "trace-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "trace-42", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "trace-42", rec.Body.String())
}

func TestRequestID_OversizedIsReplaced(t *testing.T) {
	router := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", maxRequestIDLength+1))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	_, err := uuid.FromString(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err)
}

func TestRequestID_SetOnErrors(t *testing.T) {
	router := newRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}
