package utils

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// ContextRequestIDKey is where the request id middleware stores the id in Gin context.
const ContextRequestIDKey = "request_id"

// NewRollingFileLogger builds a JSON zap logger writing only to a rotated file.
func NewRollingFileLogger(path, level string, maxSizeMB, maxBackups, maxAgeDays int, compress bool) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	if dir := dirOf(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    nz(maxSizeMB, 100),
		MaxBackups: nz(maxBackups, 3),
		MaxAge:     nz(maxAgeDays, 7),
		Compress:   compress,
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = timeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(lj), parseLevel(level))
	return zap.New(core), nil
}

// AccessLogFields adds the request id to each access log line.
func AccessLogFields(c *gin.Context) []zapcore.Field {
	if rid := c.GetString(ContextRequestIDKey); rid != "" {
		return []zapcore.Field{zap.String("request_id", rid)}
	}
	return nil
}

// PanicResponse answers a recovered panic with the error envelope.
func PanicResponse(c *gin.Context, _ any) {
	Error(c, http.StatusInternalServerError, 50000, "internal server error")
}
