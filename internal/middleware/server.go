package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"

	"viksitkanpur/internal/config"
	"viksitkanpur/internal/locale"
	"viksitkanpur/internal/models/dto"
	"viksitkanpur/pkg/logger"
)

// SetupServer builds the gin engine with the shared middleware chain.
func SetupServer(cfg *config.App) (engine *gin.Engine) {
	if cfg.Settings.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine = gin.New()

	log := cfg.Logger
	if log == nil {
		log = logger.Discard{}
	}

	setupIds(engine)
	setupRecovery(engine, log)
	setupSemaphore(engine, cfg.Settings.MaxRequestsTotal)
	setupCors(engine, cfg.Settings.AllowedOrigins)
	setupRateLimiter(engine, cfg, log)
	setupLogger(engine, log)

	if cfg.Settings.TLS() {
		setupSSL(engine, cfg.Settings.Port, log)
	}

	return engine
}

func setupSemaphore(engine *gin.Engine, max int) {
	if max <= 0 {
		return
	}
	engine.Use(Concurrency(int64(max)))
}

func setupCors(engine *gin.Engine, origins []string) {
	c := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept-Language", requestIDHeader},
		ExposeHeaders:    []string{requestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
	} else {
		c.AllowOrigins = origins
	}
	engine.Use(cors.New(c))
}

func setupRateLimiter(engine *gin.Engine, cfg *config.App, log logger.Logger) {
	if cfg.Settings.MaxRequestsByIP <= 0 {
		return
	}
	var counter Counter = NewMemoryCounter()
	if cfg.Redis != nil {
		counter = NewRedisCounter(cfg.Redis)
	}
	rl := NewRateLimiter(counter, cfg.Settings.MaxRequestsByIP, cfg.Settings.RateLimitWindow, log)
	engine.Use(rl.Middleware())
}

// setupRecovery turns a panic into the "reload the page" error envelope
// instead of a dropped connection.
func setupRecovery(engine *gin.Engine, log logger.Logger) {
	engine.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("Recovered from panic", fmt.Errorf("%v", recovered), map[string]interface{}{
			"path":       c.Request.URL.Path,
			"request_id": GetRequestID(c),
		})
		lang := locale.English
		if sess, ok := CurrentSession(c); ok {
			lang = sess.Language
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(c, http.StatusInternalServerError,
			"internal_error", locale.For(lang).T("messages.reload"), nil))
	}))
}

// setupSSL redirects plain HTTP to HTTPS and sets the usual security headers.
func setupSSL(engine *gin.Engine, port string, log logger.Logger) {
	secureMiddleware := secure.New(secure.Options{
		SSLRedirect:          true,
		SSLHost:              ":" + port,
		STSSeconds:           31536000,
		STSIncludeSubdomains: true,
		FrameDeny:            true,
		ContentTypeNosniff:   true,
	})
	engine.Use(func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			log.Warn("Rejected insecure request", map[string]interface{}{"error": err.Error()})
			c.Abort()
			return
		}
		c.Next()
	})
}
