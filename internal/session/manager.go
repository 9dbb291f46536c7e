package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"viksitkanpur/internal/locale"
	"viksitkanpur/internal/models/records"
	"viksitkanpur/pkg/logger"
)

// DefaultTTL is the session lifetime when none is configured.
const DefaultTTL = 12 * time.Hour

// TokenVerifier checks an upstream bearer token before a session is created.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) error
}

// Claims of the session JWT.
type Claims struct {
	SessionID string `json:"sid"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// LoginInput carries what the client stored after signing in upstream.
type LoginInput struct {
	Token     string
	UserID    string
	Name      string
	Role      records.Role
	Language  locale.Lang
	IPAddress string
	UserAgent string
}

// Manager creates, resolves and ends sessions.
type Manager struct {
	store    Store
	secret   []byte
	ttl      time.Duration
	audit    AuditSink
	verifier TokenVerifier
	log      logger.Logger
	now      func() time.Time

	mu    sync.RWMutex
	hooks []func(context.Context, Session)
}

// Options of a Manager. Audit, Verifier and Logger are optional.
type Options struct {
	Store    Store
	Secret   string
	TTL      time.Duration
	Audit    AuditSink
	Verifier TokenVerifier
	Logger   logger.Logger
}

// NewManager validates opts and returns a Manager.
func NewManager(opts Options) (*Manager, error) {
	if opts.Store == nil {
		return nil, errors.New("session: store is required")
	}
	if len(opts.Secret) < 16 {
		return nil, errors.New("session: JWT secret must be at least 16 bytes")
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Audit == nil {
		opts.Audit = NopAudit{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard{}
	}
	return &Manager{
		store:    opts.Store,
		secret:   []byte(opts.Secret),
		ttl:      opts.TTL,
		audit:    opts.Audit,
		verifier: opts.Verifier,
		log:      opts.Logger,
		now:      time.Now,
	}, nil
}

// TTL is the configured session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// OnLogout registers a hook run after a session is deleted.
func (m *Manager) OnLogout(hook func(context.Context, Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, hook)
}

// Login verifies the upstream token, persists a new session and returns it
// together with its signed JWT.
func (m *Manager) Login(ctx context.Context, in LoginInput) (Session, string, error) {
	if in.Token == "" {
		return Session{}, "", fmt.Errorf("%w: upstream token is required", ErrInvalidToken)
	}

	sess := Session{
		ID:        uuid.New().String(),
		Token:     in.Token,
		UserID:    in.UserID,
		Name:      in.Name,
		Role:      in.Role,
		Language:  in.Language,
		CreatedAt: m.now().UTC(),
	}
	if sess.Role == "" {
		sess.Role = records.RoleGeneral
	}
	if sess.Language == "" {
		sess.Language = locale.English
	}

	ev := AuditEvent{
		SessionID: sess.ID,
		UserID:    sess.UserID,
		Role:      sess.Role,
		Action:    ActionLogin,
		IPAddress: in.IPAddress,
		UserAgent: in.UserAgent,
		At:        sess.CreatedAt,
	}

	if m.verifier != nil {
		if err := m.verifier.VerifyToken(ctx, in.Token); err != nil {
			ev.Reason = err.Error()
			m.record(ctx, ev)
			return Session{}, "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}

	if err := m.store.Save(ctx, sess, m.ttl); err != nil {
		return Session{}, "", fmt.Errorf("saving session: %w", err)
	}

	signed, err := m.sign(sess)
	if err != nil {
		_ = m.store.Delete(ctx, sess.ID)
		return Session{}, "", err
	}

	ev.Success = true
	m.record(ctx, ev)
	m.log.Info("Session created", map[string]interface{}{
		"session_id": sess.ID,
		"user_id":    sess.UserID,
		"role":       string(sess.Role),
		"language":   string(sess.Language),
	})
	return sess, signed, nil
}

func (m *Manager) sign(sess Session) (string, error) {
	now := m.now()
	claims := Claims{
		SessionID: sess.ID,
		Role:      string(sess.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a session JWT and returns its claims.
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authenticate resolves a session JWT to its stored session.
func (m *Manager) Authenticate(ctx context.Context, tokenString string) (Session, error) {
	claims, err := m.ParseToken(tokenString)
	if err != nil {
		return Session{}, err
	}
	return m.store.Load(ctx, claims.SessionID)
}

// SetLanguage switches the session language and persists it.
func (m *Manager) SetLanguage(ctx context.Context, sess Session, lang locale.Lang) (Session, error) {
	sess.Language = lang
	if err := m.store.Save(ctx, sess, m.ttl); err != nil {
		return Session{}, fmt.Errorf("saving session: %w", err)
	}
	return sess, nil
}

// Logout deletes the session and runs the logout hooks.
func (m *Manager) Logout(ctx context.Context, sess Session, ip, userAgent string) error {
	if err := m.store.Delete(ctx, sess.ID); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	m.mu.RLock()
	hooks := append([]func(context.Context, Session){}, m.hooks...)
	m.mu.RUnlock()
	for _, hook := range hooks {
		hook(ctx, sess)
	}

	m.record(ctx, AuditEvent{
		SessionID: sess.ID,
		UserID:    sess.UserID,
		Role:      sess.Role,
		Action:    ActionLogout,
		IPAddress: ip,
		UserAgent: userAgent,
		Success:   true,
		At:        m.now().UTC(),
	})
	m.log.Info("Session ended", map[string]interface{}{"session_id": sess.ID, "user_id": sess.UserID})
	return nil
}

func (m *Manager) record(ctx context.Context, ev AuditEvent) {
	if err := m.audit.Record(ctx, ev); err != nil {
		m.log.Error("Failed to record session audit event", err, map[string]interface{}{
			"session_id": ev.SessionID,
			"action":     ev.Action,
		})
	}
}
