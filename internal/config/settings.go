package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"

	"viksitkanpur/internal/locale"
	"viksitkanpur/pkg/logger"
)

// Settings is every environment driven knob of the service.
type Settings struct {
	Environment string
	Port        string
	CertFile    string
	KeyFile     string

	UpstreamBaseURL string
	UpstreamTimeout time.Duration

	RefreshInterval time.Duration
	SessionTTL      time.Duration
	JWTSecret       string

	DefaultLanguage locale.Lang
	Timezone        *time.Location

	MaxRequestsByIP  int
	MaxRequestsTotal int
	RateLimitWindow  time.Duration
	AllowedOrigins   []string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ElasticsearchURLs     []string
	ElasticsearchUser     string
	ElasticsearchPassword string
	ElasticsearchInsecure bool
	LogIndex              string

	SQLServerHost     string
	SQLServerPort     string
	SQLServerUser     string
	SQLServerPassword string
	SQLServerDatabase string

	MongoURI      string
	MongoDatabase string

	TranslateAPIKey string

	LogDir     string
	LogLevel   logger.LogLevel
	LogConsole bool
}

// LoadSettings reads Settings from the process environment.
func LoadSettings() (*Settings, error) {
	return loadSettings(os.Getenv)
}

func loadSettings(getenv func(string) string) (*Settings, error) {
	env := envReader{getenv: getenv}

	s := &Settings{
		Environment: env.str("ENVIRONMENT_APP", "development"),
		Port:        env.str("PORT", "8080"),
		CertFile:    env.str("CERT_FILE", ""),
		KeyFile:     env.str("KEY_FILE", ""),

		UpstreamBaseURL: env.str("UPSTREAM_BASE_URL", ""),
		UpstreamTimeout: env.duration("UPSTREAM_TIMEOUT", 15*time.Second),

		RefreshInterval: env.duration("REFRESH_INTERVAL", 60*time.Second),
		SessionTTL:      env.duration("SESSION_TTL", 12*time.Hour),
		JWTSecret:       env.str("JWT_SECRET", ""),

		DefaultLanguage: locale.Parse(env.str("DEFAULT_LANGUAGE", "en")),

		MaxRequestsByIP:  env.integer("MAX_REQUEST_COUNT_BY_IP", 120),
		MaxRequestsTotal: env.integer("MAX_REQUEST_COUNT_GLOBAL", 50),
		RateLimitWindow:  env.duration("RATE_LIMIT_WINDOW", time.Minute),
		AllowedOrigins:   env.list("CORS_ALLOWED_ORIGINS", []string{"*"}),

		RedisAddr:     env.str("REDIS_ADDR", ""),
		RedisPassword: env.str("REDIS_PASSWORD", ""),
		RedisDB:       env.integer("REDIS_DB", 0),

		ElasticsearchURLs:     env.list("ELASTICSEARCH_URL", nil),
		ElasticsearchUser:     env.str("ELASTICSEARCH_USERNAME", "elastic"),
		ElasticsearchPassword: env.str("ELASTICSEARCH_PASSWORD", ""),
		ElasticsearchInsecure: env.boolean("ELASTICSEARCH_INSECURE", false),
		LogIndex:              env.str("LOG_INDEX", "viksitkanpur-api-logs"),

		SQLServerHost:     env.str("SQLSERVER_HOST", ""),
		SQLServerPort:     env.str("SQLSERVER_PORT", "1433"),
		SQLServerUser:     env.str("SQLSERVER_USERNAME", ""),
		SQLServerPassword: env.str("SQLSERVER_PASSWORD", ""),
		SQLServerDatabase: env.str("SQLSERVER_DATABASE", ""),

		MongoURI:      env.str("MONGO_URI", ""),
		MongoDatabase: env.str("MONGO_DATABASE", "viksitkanpur"),

		TranslateAPIKey: env.str("GOOGLE_TRANSLATE_API_KEY", ""),

		LogDir:     env.str("LOG_DIR", "./logs"),
		LogLevel:   logger.ParseLevel(env.str("LOG_LEVEL", "INFO")),
		LogConsole: env.boolean("LOG_CONSOLE", false),
	}

	tzName := env.str("TIMEZONE", "Asia/Kolkata")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		env.errs = append(env.errs, fmt.Errorf("TIMEZONE: %w", err))
		loc = time.UTC
	}
	s.Timezone = loc

	if len(env.errs) > 0 {
		return nil, errors.Join(env.errs...)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks required and interdependent settings.
func (s *Settings) Validate() error {
	var errs []error

	if len(s.JWTSecret) < 16 {
		errs = append(errs, errors.New("JWT_SECRET must be set to at least 16 characters"))
	}
	if s.UpstreamBaseURL != "" {
		u, err := url.Parse(s.UpstreamBaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("UPSTREAM_BASE_URL %q is not an http(s) URL", s.UpstreamBaseURL))
		}
	}
	if s.RefreshInterval < time.Second {
		errs = append(errs, errors.New("REFRESH_INTERVAL must be at least 1s"))
	}
	if s.SessionTTL < time.Minute {
		errs = append(errs, errors.New("SESSION_TTL must be at least 1m"))
	}
	if s.MaxRequestsByIP < 1 || s.MaxRequestsTotal < 1 {
		errs = append(errs, errors.New("request limits must be positive"))
	}
	if (s.CertFile == "") != (s.KeyFile == "") {
		errs = append(errs, errors.New("CERT_FILE and KEY_FILE must be set together"))
	}
	if s.SQLServerHost != "" && s.SQLServerDatabase == "" {
		errs = append(errs, errors.New("SQLSERVER_DATABASE is required when SQLSERVER_HOST is set"))
	}

	return errors.Join(errs...)
}

// TLS reports whether certificates are configured.
func (s *Settings) TLS() bool {
	return s.CertFile != "" && s.KeyFile != ""
}

// envReader collects parse errors instead of silently using defaults for
// malformed values.
type envReader struct {
	getenv func(string) string
	errs   []error
}

func (e *envReader) str(key, def string) string {
	if v := strings.TrimSpace(e.getenv(key)); v != "" {
		return v
	}
	return def
}

func (e *envReader) integer(key string, def int) int {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return def
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %q is not an integer", key, v))
		return def
	}
	return n
}

func (e *envReader) boolean(key string, def bool) bool {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %q is not a boolean", key, v))
		return def
	}
	return b
}

// duration accepts Go durations ("90s") and bare seconds ("90").
func (e *envReader) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := cast.ToIntE(v); err == nil {
		return time.Duration(n) * time.Second
	}
	e.errs = append(e.errs, fmt.Errorf("%s: %q is not a duration", key, v))
	return def
}

func (e *envReader) list(key string, def []string) []string {
	v := strings.TrimSpace(e.getenv(key))
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
