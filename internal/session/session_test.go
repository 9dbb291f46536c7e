package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viksitkanpur/internal/locale"
	"viksitkanpur/internal/models/records"
)

const testSecret = "0123456789abcdef0123"

type recordingAudit struct {
	mu     sync.Mutex
	events []AuditEvent
}

func (a *recordingAudit) Record(_ context.Context, ev AuditEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, ev)
	return nil
}

type verifierFunc func(ctx context.Context, token string) error

func (f verifierFunc) VerifyToken(ctx context.Context, token string) error { return f(ctx, token) }

func newManager(t *testing.T, opts Options) *Manager {
	t.Helper()
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	if opts.Secret == "" {
		opts.Secret = testSecret
	}
	m, err := NewManager(opts)
	require.NoError(t, err)
	return m
}

func TestNewManager_Validation(t *testing.T) {
	_, err := NewManager(Options{Secret: testSecret})
	assert.Error(t, err)

	_, err = NewManager(Options{Store: NewMemoryStore(), Secret: "short"})
	assert.Error(t, err)
}

func TestLoginAuthenticateRoundTrip(t *testing.T) {
	audit := &recordingAudit{}
	m := newManager(t, Options{Audit: audit})
	ctx := context.Background()

	sess, signed, err := m.Login(ctx, LoginInput{
		Token:    "upstream",
		UserID:   "u1",
		Name:     "Asha",
		Role:     records.RoleDepartmentHead,
		Language: locale.Hindi,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.True(t, sess.HasToken())

	got, err := m.Authenticate(ctx, signed)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, locale.Hindi, got.Language)
	assert.Equal(t, records.RoleDepartmentHead, got.Role)

	require.Len(t, audit.events, 1)
	assert.Equal(t, ActionLogin, audit.events[0].Action)
	assert.True(t, audit.events[0].Success)
}

func TestLogin_Defaults(t *testing.T) {
	m := newManager(t, Options{})
	sess, _, err := m.Login(context.Background(), LoginInput{Token: "t"})
	require.NoError(t, err)
	assert.Equal(t, records.RoleGeneral, sess.Role)
	assert.Equal(t, locale.English, sess.Language)
}

func TestLogin_RejectsMissingOrRefusedToken(t *testing.T) {
	audit := &recordingAudit{}
	m := newManager(t, Options{
		Audit: audit,
		Verifier: verifierFunc(func(_ context.Context, token string) error {
			if token == "bad" {
				return errors.New("rejected")
			}
			return nil
		}),
	})

	_, _, err := m.Login(context.Background(), LoginInput{})
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = m.Login(context.Background(), LoginInput{Token: "bad"})
	assert.ErrorIs(t, err, ErrInvalidToken)
	require.Len(t, audit.events, 1)
	assert.False(t, audit.events[0].Success)
}

func TestAuthenticate_InvalidTokens(t *testing.T) {
	m := newManager(t, Options{})
	ctx := context.Background()

	_, err := m.Authenticate(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := newManager(t, Options{Secret: "another-secret-value"})
	_, signed, err := other.Login(ctx, LoginInput{Token: "t"})
	require.NoError(t, err)
	_, err = m.Authenticate(ctx, signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticate_Expired(t *testing.T) {
	m := newManager(t, Options{TTL: time.Minute})
	_, signed, err := m.Login(context.Background(), LoginInput{Token: "t"})
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = m.Authenticate(context.Background(), signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogout_DeletesAndRunsHooks(t *testing.T) {
	m := newManager(t, Options{})
	ctx := context.Background()

	var stopped []string
	m.OnLogout(func(_ context.Context, s Session) { stopped = append(stopped, s.ID) })

	sess, signed, err := m.Login(ctx, LoginInput{Token: "t"})
	require.NoError(t, err)
	require.NoError(t, m.Logout(ctx, sess, "", ""))

	assert.Equal(t, []string{sess.ID}, stopped)
	_, err = m.Authenticate(ctx, signed)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetLanguage(t *testing.T) {
	m := newManager(t, Options{})
	ctx := context.Background()

	sess, signed, err := m.Login(ctx, LoginInput{Token: "t"})
	require.NoError(t, err)
	_, err = m.SetLanguage(ctx, sess, locale.Hindi)
	require.NoError(t, err)

	got, err := m.Authenticate(ctx, signed)
	require.NoError(t, err)
	assert.Equal(t, locale.Hindi, got.Language)
}

func TestMemoryStore_Expiry(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Save(context.Background(), Session{ID: "a"}, time.Second))
	_, err := s.Load(context.Background(), "a")
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	_, err = s.Load(context.Background(), "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAnonymous(t *testing.T) {
	s := Anonymous("")
	assert.False(t, s.HasToken())
	assert.Equal(t, locale.English, s.Language)
	assert.Equal(t, records.RoleGeneral, s.Role)
}
