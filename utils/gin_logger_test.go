package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGinLoggingAndRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	path := filepath.Join(t.TempDir(), "nested", "gin.log")
	gl, err := NewRollingFileLogger(path, "info", 1, 1, 1, false)
	require.NoError(t, err)

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(ContextRequestIDKey, "rid-1") })
	r.Use(ginzap.GinzapWithConfig(gl, &ginzap.Config{TimeFormat: time.RFC3339, UTC: true, Context: AccessLogFields}))
	r.Use(ginzap.CustomRecoveryWithZap(gl, false, PanicResponse))
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 50000, body.Code)

	require.NoError(t, gl.Sync())
	logged, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(logged), `"request_id":"rid-1"`)
}

func TestRollingFileLoggerWithoutPath(t *testing.T) {
	gl, err := NewRollingFileLogger("", "info", 0, 0, 0, false)
	require.NoError(t, err)
	assert.NotNil(t, gl)
}
