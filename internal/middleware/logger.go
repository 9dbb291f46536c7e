package middleware

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"viksitkanpur/pkg/logger"
)

const logFieldsKey = "log_fields"

func setupLogger(engine *gin.Engine, log logger.Logger) {
	engine.Use(LoggerMiddleware(log, MiddlewareConfig{
		LogRequestBody: true,
		MaxBodySize:    2048,
		SkipPaths: []string{
			"/health",
		},
		ErrorsOnly: false,
	}))
}

// MiddlewareConfig configures the logging middleware
type MiddlewareConfig struct {
	// Whether to log request bodies
	LogRequestBody bool
	// Maximum size of bodies to log (in bytes)
	MaxBodySize int
	// Paths to skip logging (exact match)
	SkipPaths []string
	// Whether to log only errors (4xx, 5xx status codes)
	ErrorsOnly bool
}

// DefaultMiddlewareConfig returns a default configuration
func DefaultMiddlewareConfig() MiddlewareConfig {
	return MiddlewareConfig{
		LogRequestBody: true,
		MaxBodySize:    1024,
		SkipPaths:      []string{"/health"},
	}
}

// LoggerMiddleware logs one structured entry per request, with the session
// behind it when one was resolved.
func LoggerMiddleware(log logger.Logger, config ...MiddlewareConfig) gin.HandlerFunc {
	cfg := DefaultMiddlewareConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	skipPaths := make(map[string]bool, len(cfg.SkipPaths))
	for _, path := range cfg.SkipPaths {
		skipPaths[path] = true
	}

	return func(c *gin.Context) {
		if skipPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()

		var requestBody string
		if cfg.LogRequestBody && c.Request.Body != nil && c.Request.Method != "GET" {
			bodyBytes, err := io.ReadAll(c.Request.Body)
			if err == nil {
				c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
				if len(bodyBytes) <= cfg.MaxBodySize {
					requestBody = string(bodyBytes)
				} else {
					requestBody = "[BODY TOO LARGE]"
				}
			}
		}

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()
		if cfg.ErrorsOnly && statusCode < 400 {
			return
		}

		var (
			message string
			level   = logger.LevelInfo
		)
		switch {
		case statusCode >= 500:
			message, level = "HTTP Server Error", logger.LevelError
		case statusCode >= 400:
			message, level = "HTTP Client Error", logger.LevelWarn
		case statusCode >= 300:
			message = "HTTP Redirect"
		default:
			message = "HTTP Request"
		}

		fields := map[string]interface{}{
			"component": "http_middleware",
		}
		if custom, ok := c.Get(logFieldsKey); ok {
			if m, ok := custom.(map[string]interface{}); ok {
				for k, v := range m {
					fields[k] = v
				}
			}
		}

		size := int64(c.Writer.Size())
		if size < 0 {
			size = 0
		}

		lc := logger.LogContext{
			HTTP: &logger.HTTPContext{
				Method:       c.Request.Method,
				Path:         c.Request.URL.Path,
				Query:        c.Request.URL.RawQuery,
				UserAgent:    c.Request.UserAgent(),
				RemoteIP:     c.ClientIP(),
				StatusCode:   statusCode,
				ResponseSize: size,
				RequestID:    GetRequestID(c),
				RequestBody:  requestBody,
			},
			Performance: &logger.PerformanceContext{
				DurationMs: float64(duration.Microseconds()) / 1000,
				CacheHit:   c.GetBool("cache_hit"),
			},
			Fields: fields,
		}
		if sess, ok := CurrentSession(c); ok {
			lc.User = &logger.UserContext{
				ID:        sess.UserID,
				Role:      string(sess.Role),
				SessionID: sess.ID,
				Language:  string(sess.Language),
			}
		}
		if len(c.Errors) > 0 {
			lc.Error = &logger.ErrorContext{
				Type:    "gin",
				Message: strings.Join(c.Errors.Errors(), "; "),
			}
		}

		log.WithContext(level, fmt.Sprintf("%s - %s %s %d", message, c.Request.Method, c.Request.URL.Path, statusCode), lc)
	}
}

// AddLogFields adds custom fields to be included in logs
func AddLogFields(c *gin.Context, fields map[string]interface{}) {
	existing, ok := c.Get(logFieldsKey)
	if !ok {
		c.Set(logFieldsKey, fields)
		return
	}
	if m, ok := existing.(map[string]interface{}); ok {
		for k, v := range fields {
			m[k] = v
		}
		return
	}
	c.Set(logFieldsKey, fields)
}
