package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"viksitkanpur/internal/gateway"
	"viksitkanpur/internal/locale"
	"viksitkanpur/internal/pipeline"
	"viksitkanpur/internal/refresh"
	"viksitkanpur/internal/repositories/elsearch"
	"viksitkanpur/internal/repositories/mongo"
	"viksitkanpur/internal/repositories/redis"
	"viksitkanpur/internal/repositories/sqlserver"
	"viksitkanpur/internal/session"
	"viksitkanpur/pkg/logger"

	"github.com/google/uuid"
)

const (
	ServiceName    = "viksitkanpur-api"
	ServiceVersion = "1.0.0"
)

// App holds every long lived dependency of the service
type App struct {
	Settings  *Settings
	Logger    logger.Logger
	Redis     *redis.RedisInternal
	ES        *elsearch.Client
	SqlServer *sqlserver.Internal
	Mongo     *mongo.MongoInternal

	Gateway     *gateway.Client
	Machine     *locale.MachineTranslator
	Sessions    *session.Manager
	Pipeline    *pipeline.Loader
	Refresh     *refresh.Registry
	StartedAt   time.Time
	ExecutionID string
}

// NewConfig connects the configured backing services and wires the domain
// components. Redis, Elasticsearch, SQL Server, Mongo and the translation API
// are optional: each is skipped when its environment variable is unset.
func NewConfig(ctx context.Context, settings *Settings) (*App, error) {
	cfg := &App{
		Settings:    settings,
		StartedAt:   time.Now(),
		ExecutionID: uuid.New().String()[0:5],
	}

	if err := cfg.newClientES(ctx); err != nil {
		return cfg, err
	}
	cfg.newLogger()

	if err := cfg.newClientRedis(ctx); err != nil {
		return cfg, err
	}
	if err := cfg.newClientSQLServer(ctx); err != nil {
		return cfg, err
	}
	if err := cfg.newClientMongo(ctx); err != nil {
		return cfg, err
	}
	if err := cfg.newMachineTranslator(ctx); err != nil {
		return cfg, err
	}
	if err := cfg.newGateway(); err != nil {
		return cfg, err
	}
	if err := cfg.newDomain(ctx); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func (cfg *App) newLogger() {
	s := cfg.Settings
	loggerConfig := logger.Config{
		Service:         ServiceName,
		Version:         ServiceVersion,
		Environment:     s.Environment,
		LogDir:          s.LogDir,
		Console:         s.LogConsole,
		FlushInterval:   5 * time.Second,
		BatchSize:       100,
		BufferSize:      10000,
		LogLevel:        s.LogLevel,
		EnableCaller:    true,
		SensitiveFields: []string{"password", "token", "secret", "authorization"},
		ExecutionID:     cfg.ExecutionID,
	}
	if cfg.ES != nil {
		loggerConfig.Sinks = append(loggerConfig.Sinks, elsearch.NewLogSink(cfg.ES))
	}
	cfg.Logger = logger.NewLogger(loggerConfig)
}

func (cfg *App) newClientES(ctx context.Context) error {
	s := cfg.Settings
	if len(s.ElasticsearchURLs) == 0 {
		return nil
	}
	es, err := elsearch.NewClient(ctx, &elsearch.Config{
		Addresses:          s.ElasticsearchURLs,
		Username:           s.ElasticsearchUser,
		Password:           s.ElasticsearchPassword,
		MaxRetries:         3,
		RetryBackoff:       100 * time.Millisecond,
		Timeout:            5 * time.Second,
		InsecureSkipVerify: s.ElasticsearchInsecure,
		IndexName:          s.LogIndex,
	})
	if err != nil {
		return errors.New("creating elastic client: " + err.Error())
	}
	if err := es.EnsureIndex(ctx, es.IndexName(), elsearch.LogMapping); err != nil {
		return errors.New("creating log index: " + err.Error())
	}
	cfg.ES = es
	return nil
}

func (cfg *App) newClientRedis(ctx context.Context) error {
	s := cfg.Settings
	if s.RedisAddr == "" {
		cfg.Logger.Warn("REDIS_ADDR not set, using in-process sessions and cache")
		return nil
	}
	r, err := redis.NewRedisInternal(ctx, redis.Options{Addr: s.RedisAddr, Password: s.RedisPassword, DB: s.RedisDB})
	if err != nil {
		return errors.New("creating redis client: " + err.Error())
	}
	cfg.Redis = r
	return nil
}

func (cfg *App) newClientSQLServer(ctx context.Context) error {
	s := cfg.Settings
	if s.SQLServerHost == "" {
		return nil
	}
	db, err := sqlserver.NewSQLServerInternal(ctx, sqlserver.Options{
		Host:     s.SQLServerHost,
		Port:     s.SQLServerPort,
		Username: s.SQLServerUser,
		Password: s.SQLServerPassword,
		Database: s.SQLServerDatabase,
	})
	if err != nil {
		return errors.New("creating sqlserver client: " + err.Error())
	}
	if err := db.Migrate(ctx); err != nil {
		return errors.New("migrating sqlserver: " + err.Error())
	}
	cfg.SqlServer = db
	return nil
}

func (cfg *App) newClientMongo(ctx context.Context) error {
	s := cfg.Settings
	if s.MongoURI == "" {
		return nil
	}
	m, err := mongo.NewMongoInternal(ctx, s.MongoURI, s.MongoDatabase)
	if err != nil {
		return errors.New("creating mongo client: " + err.Error())
	}
	cfg.Mongo = m
	return nil
}

func (cfg *App) newMachineTranslator(ctx context.Context) error {
	if cfg.Settings.TranslateAPIKey == "" {
		return nil
	}
	m, err := locale.NewMachineTranslator(ctx, cfg.Settings.TranslateAPIKey)
	if err != nil {
		return err
	}
	cfg.Machine = m
	return nil
}

func (cfg *App) newGateway() error {
	s := cfg.Settings
	if s.UpstreamBaseURL == "" {
		cfg.Logger.Warn("UPSTREAM_BASE_URL not set, every dashboard shows placeholder data")
		return nil
	}
	gw, err := gateway.New(gateway.Config{BaseURL: s.UpstreamBaseURL, Timeout: s.UpstreamTimeout})
	if err != nil {
		return err
	}
	cfg.Gateway = gw
	return nil
}

func (cfg *App) newDomain(ctx context.Context) error {
	s := cfg.Settings

	pcfg := pipeline.Config{
		CacheTTL: s.RefreshInterval,
		Location: s.Timezone,
		Logger:   cfg.Logger,
	}
	if cfg.Gateway != nil {
		pcfg.Fetcher = cfg.Gateway
	}
	if cfg.Machine != nil {
		pcfg.Machine = cfg.Machine
	}
	if cfg.Redis != nil {
		pcfg.Cache = cfg.Redis
	} else {
		pcfg.Cache = pipeline.NewMemoryCache()
	}
	if cfg.Mongo != nil {
		archive, err := mongo.NewSnapshotArchive(ctx, cfg.Mongo)
		if err != nil {
			return err
		}
		pcfg.Archive = archive
	}
	cfg.Pipeline = pipeline.New(pcfg)

	sopts := session.Options{
		Secret: s.JWTSecret,
		TTL:    s.SessionTTL,
		Logger: cfg.Logger,
	}
	if cfg.Redis != nil {
		sopts.Store = session.NewRedisStore(cfg.Redis)
	} else {
		sopts.Store = session.NewMemoryStore()
	}
	if cfg.SqlServer != nil {
		sopts.Audit = cfg.SqlServer
	}
	if cfg.Gateway != nil {
		sopts.Verifier = cfg.Gateway
	}
	sessions, err := session.NewManager(sopts)
	if err != nil {
		return err
	}
	cfg.Sessions = sessions

	ropts := refresh.Options{
		Interval: s.RefreshInterval,
		Sessions: sopts.Store,
		Logger:   cfg.Logger,
		Sampler: &refresh.PipelineSampler{
			Loader:    cfg.Pipeline,
			Synthetic: refresh.NewSyntheticSampler(time.Now().UnixNano()),
		},
	}
	if cfg.Redis != nil {
		ropts.Locker = cfg.Redis
	}
	cfg.Refresh = refresh.NewRegistry(ropts)
	cfg.Sessions.OnLogout(cfg.Refresh.OnLogout)

	return nil
}

// Checks pings every configured dependency. Unconfigured ones are reported
// as "disabled".
func (cfg *App) Checks(ctx context.Context) map[string]string {
	checks := map[string]string{}
	report := func(name string, configured bool, ping func(context.Context) error) {
		if !configured {
			checks[name] = "disabled"
			return
		}
		if err := ping(ctx); err != nil {
			checks[name] = fmt.Sprintf("down: %v", err)
			return
		}
		checks[name] = "up"
	}

	report("redis", cfg.Redis != nil, func(ctx context.Context) error { return cfg.Redis.Ping(ctx) })
	report("elasticsearch", cfg.ES != nil, func(ctx context.Context) error { return cfg.ES.Ping(ctx) })
	report("sqlserver", cfg.SqlServer != nil, func(ctx context.Context) error { return cfg.SqlServer.Ping(ctx) })
	report("mongo", cfg.Mongo != nil, func(ctx context.Context) error { return cfg.Mongo.Ping(ctx) })
	if cfg.Gateway != nil {
		checks["upstream"] = "configured"
	} else {
		checks["upstream"] = "placeholder"
	}
	return checks
}

// CloseAll - a function that closes all connections
func (cfg *App) CloseAll() {
	if cfg.Refresh != nil {
		cfg.Refresh.StopAll()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if cfg.Machine != nil {
		_ = cfg.Machine.Close()
	}
	if cfg.Mongo != nil {
		_ = cfg.Mongo.Close(ctx)
	}
	if cfg.SqlServer != nil {
		_ = cfg.SqlServer.Close()
	}
	if cfg.Redis != nil {
		_ = cfg.Redis.Close()
	}
	if cfg.Logger != nil {
		_ = cfg.Logger.Close()
	}
}
