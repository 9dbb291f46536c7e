package sqlserver

import (
	"context"
	"fmt"
	"net/url"

	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Options of the SQL Server connection
type Options struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// DSN renders the sqlserver:// connection string
func (o Options) DSN() string {
	u := url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(o.Username, o.Password),
		Host:     o.Host + ":" + o.Port,
		RawQuery: url.Values{"database": []string{o.Database}}.Encode(),
	}
	return u.String()
}

// Internal holds the gorm connection
type Internal struct {
	db *gorm.DB
}

// NewSQLServerInternal opens and pings the database
func NewSQLServerInternal(ctx context.Context, opts Options) (*Internal, error) {
	if opts.Host == "" || opts.Database == "" {
		return nil, fmt.Errorf("sqlserver host and database are required")
	}
	if opts.Port == "" {
		opts.Port = "1433"
	}

	db, err := gorm.Open(sqlserver.Open(opts.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}

	return &Internal{db: db}, nil
}

// Ping checks the connection
func (s *Internal) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the pool
func (s *Internal) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
