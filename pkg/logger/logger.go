// Package logger provides an asynchronous structured logger that batches
// JSON entries to rotating files and to any number of additional sinks.
package logger

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LogLevel represents the severity level of a log entry
type LogLevel string

const (
	LevelDebug LogLevel = "DEBUG"
	LevelInfo  LogLevel = "INFO"
	LevelWarn  LogLevel = "WARN"
	LevelError LogLevel = "ERROR"
	LevelFatal LogLevel = "FATAL"
)

var levelRank = map[LogLevel]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
	LevelFatal: 4,
}

// ParseLevel maps a case-insensitive level name to a LogLevel, defaulting to INFO.
func ParseLevel(s string) LogLevel {
	lvl := LogLevel(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := levelRank[lvl]; ok {
		return lvl
	}
	return LevelInfo
}

// LogEntry is one log record as written to every sink
type LogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"@timestamp"`
	Level     LogLevel  `json:"level"`
	Message   string    `json:"message"`
	Logger    string    `json:"logger"`

	Service     string `json:"service"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Hostname    string `json:"hostname"`
	PID         int    `json:"pid"`
	ExecID      string `json:"exec_id"`

	Caller struct {
		File     string `json:"file"`
		Line     int    `json:"line"`
		Function string `json:"function"`
	} `json:"caller"`

	HTTP        *HTTPContext           `json:"http,omitempty"`
	Error       *ErrorContext          `json:"error,omitempty"`
	Fields      map[string]interface{} `json:"fields,omitempty"`
	Performance *PerformanceContext    `json:"performance,omitempty"`
	User        *UserContext           `json:"user,omitempty"`
}

// HTTPContext contains HTTP request/response information
type HTTPContext struct {
	Method       string `json:"method"`
	Path         string `json:"path"`
	Query        string `json:"query,omitempty"`
	UserAgent    string `json:"user_agent,omitempty"`
	RemoteIP     string `json:"remote_ip"`
	StatusCode   int    `json:"status_code"`
	ResponseSize int64  `json:"response_size"`
	RequestID    string `json:"request_id"`
	RequestBody  string `json:"request_body,omitempty"`
}

// ErrorContext contains error information
type ErrorContext struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// PerformanceContext contains timing information
type PerformanceContext struct {
	DurationMs float64 `json:"duration_ms"`
	CacheHit   bool    `json:"cache_hit"`
}

// UserContext identifies the session behind a request
type UserContext struct {
	ID        string `json:"id"`
	Role      string `json:"role,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Language  string `json:"language,omitempty"`
}

// LogContext holds additional context for logging
type LogContext struct {
	HTTP        *HTTPContext
	Error       *ErrorContext
	Performance *PerformanceContext
	User        *UserContext
	Fields      map[string]interface{}
}

// Logger is the logging surface the rest of the application depends on.
type Logger interface {
	Debug(message string, fields ...map[string]interface{})
	Info(message string, fields ...map[string]interface{})
	Warn(message string, fields ...map[string]interface{})
	Error(message string, err error, fields ...map[string]interface{})
	Fatal(message string, err error, fields ...map[string]interface{})
	WithContext(level LogLevel, message string, ctx LogContext)
	Flush() error
	Close() error
}

// Sink receives batches of entries next to the file writer.
type Sink interface {
	WriteBatch(ctx context.Context, entries []LogEntry) error
}

// Config holds the logger configuration
type Config struct {
	Service         string
	Version         string
	Environment     string
	LogDir          string        // directory for log files; empty with DisableFile writes nowhere on disk
	DisableFile     bool          // skip the rotating file writer
	Console         bool          // echo entries to stderr
	FlushInterval   time.Duration // how often batches are written
	BatchSize       int           // entries per batch before a forced write
	BufferSize      int           // channel capacity
	LogLevel        LogLevel      // minimum level processed
	EnableCaller    bool
	SensitiveFields []string // field names redacted in Fields
	ExecutionID     string
	MaxFileSize     int64
	WriteBufferSize int
	Sinks           []Sink
}

// FileLogger is the asynchronous Logger implementation
type FileLogger struct {
	config     Config
	logChannel chan LogEntry
	flushReq   chan chan struct{}
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	hostname   string
	pid        int
	fileWriter *fileWriter
	sensitive  map[string]struct{}
	closeOnce  sync.Once
}

// NewLogger creates a new FileLogger instance and starts its writer goroutine
func NewLogger(config Config) *FileLogger {
	if config.LogDir == "" {
		config.LogDir = "./logs"
	}
	if config.FlushInterval == 0 {
		config.FlushInterval = 1 * time.Second
	}
	if config.BatchSize == 0 {
		config.BatchSize = 100
	}
	if config.BufferSize == 0 {
		config.BufferSize = 10000
	}
	if config.LogLevel == "" {
		config.LogLevel = LevelInfo
	}
	if config.MaxFileSize == 0 {
		config.MaxFileSize = 10 * 1024 * 1024
	}
	if config.WriteBufferSize == 0 {
		config.WriteBufferSize = 64 * 1024
	}
	if config.ExecutionID == "" {
		config.ExecutionID = uuid.New().String()[0:5]
	}

	hostname, _ := os.Hostname()
	ctx, cancel := context.WithCancel(context.Background())

	l := &FileLogger{
		config:     config,
		logChannel: make(chan LogEntry, config.BufferSize),
		flushReq:   make(chan chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
		hostname:   hostname,
		pid:        os.Getpid(),
		sensitive:  make(map[string]struct{}, len(config.SensitiveFields)),
	}
	for _, f := range config.SensitiveFields {
		l.sensitive[strings.ToLower(f)] = struct{}{}
	}

	if !config.DisableFile {
		if err := os.MkdirAll(config.LogDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create log directory: %v\n", err)
		}
		l.fileWriter = newFileWriter(config.LogDir, config.MaxFileSize, config.WriteBufferSize)
	}

	l.wg.Add(1)
	go l.processLogs()

	return l
}

// processLogs handles batching and writing logs to files and sinks
func (l *FileLogger) processLogs() {
	defer l.wg.Done()

	ticker := time.NewTicker(l.config.FlushInterval)
	defer ticker.Stop()

	batch := make([]LogEntry, 0, l.config.BatchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		l.writeBatch(batch)
		batch = batch[:0]
	}

	drain := func() {
		for {
			select {
			case entry := <-l.logChannel:
				batch = append(batch, entry)
			default:
				return
			}
		}
	}

	for {
		select {
		case entry := <-l.logChannel:
			batch = append(batch, entry)
			if len(batch) >= l.config.BatchSize {
				flush()
			}

		case done := <-l.flushReq:
			drain()
			flush()
			close(done)

		case <-ticker.C:
			flush()

		case <-l.ctx.Done():
			drain()
			flush()
			return
		}
	}
}

func (l *FileLogger) writeBatch(batch []LogEntry) {
	if l.fileWriter != nil {
		for _, entry := range batch {
			if err := l.fileWriter.writeEntry(entry); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to write log entry: %v\n", err)
			}
		}
		if err := l.fileWriter.flush(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to flush log buffer: %v\n", err)
		}
	}

	if l.config.Console {
		for _, entry := range batch {
			fmt.Fprintf(os.Stderr, "%s %-5s %s %v\n", entry.Timestamp.Format(time.RFC3339), entry.Level, entry.Message, entry.Fields)
		}
	}

	for _, sink := range l.config.Sinks {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := sink.WriteBatch(ctx, batch); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to ship %d log entries: %v\n", len(batch), err)
		}
		cancel()
	}
}

func (l *FileLogger) shouldLog(level LogLevel) bool {
	return levelRank[level] >= levelRank[l.config.LogLevel]
}

// createLogEntry builds the common fields; skip is the number of frames
// between the public logging call and this function.
func (l *FileLogger) createLogEntry(level LogLevel, message string, skip int) LogEntry {
	entry := LogEntry{
		ID:          uuid.New().String(),
		Timestamp:   time.Now().UTC(),
		Level:       level,
		Message:     message,
		Logger:      "file-logger",
		Service:     l.config.Service,
		Version:     l.config.Version,
		Environment: l.config.Environment,
		Hostname:    l.hostname,
		PID:         l.pid,
		ExecID:      l.config.ExecutionID,
	}

	if l.config.EnableCaller {
		if pc, file, line, ok := runtime.Caller(skip + 1); ok {
			entry.Caller.File = file
			entry.Caller.Line = line
			if fn := runtime.FuncForPC(pc); fn != nil {
				entry.Caller.Function = fn.Name()
			}
		}
	}

	return entry
}

func (l *FileLogger) redact(fields map[string]interface{}) map[string]interface{} {
	if len(fields) == 0 || len(l.sensitive) == 0 {
		return fields
	}
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if _, ok := l.sensitive[strings.ToLower(k)]; ok {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = v
	}
	return out
}

func (l *FileLogger) log(entry LogEntry) {
	if l.ctx.Err() != nil {
		return
	}
	entry.Fields = l.redact(entry.Fields)

	select {
	case l.logChannel <- entry:
	default:
		fmt.Fprintf(os.Stderr, "Logger channel full, dropping log: %s\n", entry.Message)
	}
}

func (l *FileLogger) emit(level LogLevel, message string, err error, fields []map[string]interface{}) {
	if !l.shouldLog(level) {
		return
	}
	entry := l.createLogEntry(level, message, 2)
	if err != nil {
		entry.Error = &ErrorContext{Type: fmt.Sprintf("%T", err), Message: err.Error()}
	}
	if len(fields) > 0 {
		entry.Fields = fields[0]
	}
	l.log(entry)
}

// Debug logs a debug message
func (l *FileLogger) Debug(message string, fields ...map[string]interface{}) {
	l.emit(LevelDebug, message, nil, fields)
}

// Info logs an info message
func (l *FileLogger) Info(message string, fields ...map[string]interface{}) {
	l.emit(LevelInfo, message, nil, fields)
}

// Warn logs a warning message
func (l *FileLogger) Warn(message string, fields ...map[string]interface{}) {
	l.emit(LevelWarn, message, nil, fields)
}

// Error logs an error message
func (l *FileLogger) Error(message string, err error, fields ...map[string]interface{}) {
	l.emit(LevelError, message, err, fields)
}

// Fatal logs a fatal message. It does not exit the process.
func (l *FileLogger) Fatal(message string, err error, fields ...map[string]interface{}) {
	l.emit(LevelFatal, message, err, fields)
}

// WithContext logs with request, user or timing context attached
func (l *FileLogger) WithContext(level LogLevel, message string, ctx LogContext) {
	if !l.shouldLog(level) {
		return
	}

	entry := l.createLogEntry(level, message, 1)
	entry.HTTP = ctx.HTTP
	entry.Error = ctx.Error
	entry.Performance = ctx.Performance
	entry.User = ctx.User
	entry.Fields = ctx.Fields

	l.log(entry)
}

// Flush blocks until every entry queued so far has been written
func (l *FileLogger) Flush() error {
	done := make(chan struct{})
	select {
	case l.flushReq <- done:
	case <-l.ctx.Done():
		return nil
	}
	<-done
	return nil
}

// Close drains pending entries and releases the log file
func (l *FileLogger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		l.cancel()
		l.wg.Wait()
		if l.fileWriter != nil {
			err = l.fileWriter.close()
		}
	})
	return err
}

// Discard is a Logger that drops everything.
type Discard struct{}

func (Discard) Debug(string, ...map[string]interface{})        {}
func (Discard) Info(string, ...map[string]interface{})         {}
func (Discard) Warn(string, ...map[string]interface{})         {}
func (Discard) Error(string, error, ...map[string]interface{}) {}
func (Discard) Fatal(string, error, ...map[string]interface{}) {}
func (Discard) WithContext(LogLevel, string, LogContext)       {}
func (Discard) Flush() error                                   { return nil }
func (Discard) Close() error                                   { return nil }
