// Package session holds the per-user context every request and refresh tick
// runs under: the upstream bearer token, the user profile and the UI language.
package session

import (
	"context"
	"errors"
	"time"

	"viksitkanpur/internal/locale"
	"viksitkanpur/internal/models/records"
)

var (
	// ErrNotFound is returned for unknown or expired sessions.
	ErrNotFound = errors.New("session not found")
	// ErrInvalidToken is returned for a JWT that fails verification.
	ErrInvalidToken = errors.New("invalid session token")
)

// Session is the explicit context passed to the pipeline and the refresh loop.
type Session struct {
	ID        string       `json:"id"`
	Token     string       `json:"token"`
	UserID    string       `json:"user_id"`
	Name      string       `json:"name"`
	Role      records.Role `json:"role"`
	Language  locale.Lang  `json:"language"`
	CreatedAt time.Time    `json:"created_at"`
}

// Anonymous is the session of a request without credentials. It renders the
// placeholder dashboard.
func Anonymous(lang locale.Lang) Session {
	if lang == "" {
		lang = locale.English
	}
	return Session{ID: "anonymous", Role: records.RoleGeneral, Language: lang}
}

// HasToken reports whether upstream calls can be made for this session.
func (s Session) HasToken() bool {
	return s.Token != ""
}

// Translator returns the dictionary translator for the session language.
func (s Session) Translator() locale.Translator {
	return locale.For(s.Language)
}

// Store persists sessions by id.
type Store interface {
	Save(ctx context.Context, s Session, ttl time.Duration) error
	Load(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}

// AuditEvent is one login or logout.
type AuditEvent struct {
	SessionID string
	UserID    string
	Role      records.Role
	Action    string
	IPAddress string
	UserAgent string
	Success   bool
	Reason    string
	At        time.Time
}

const (
	ActionLogin  = "login"
	ActionLogout = "logout"
)

// AuditSink records session lifecycle events.
type AuditSink interface {
	Record(ctx context.Context, ev AuditEvent) error
}

// NopAudit drops every event.
type NopAudit struct{}

// Record implements AuditSink.
func (NopAudit) Record(context.Context, AuditEvent) error { return nil }
