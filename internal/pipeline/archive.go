package pipeline

import (
	"context"
	"time"

	"viksitkanpur/internal/analytics"
	"viksitkanpur/internal/session"
)

// ArchiveRecord is one archived live snapshot.
type ArchiveRecord struct {
	SessionID   string           `json:"sessionId"`
	UserID      string           `json:"userId"`
	Role        string           `json:"role"`
	Language    string           `json:"language"`
	GeneratedAt time.Time        `json:"generatedAt"`
	Totals      analytics.Totals `json:"totals"`
	// Snapshot is the full JSON document.
	Snapshot analytics.Snapshot `json:"snapshot"`
	Failures int                `json:"failures"`
}

// NewArchiveRecord builds the record stored for res.
func NewArchiveRecord(sess session.Session, res Result) ArchiveRecord {
	return ArchiveRecord{
		SessionID:   sess.ID,
		UserID:      sess.UserID,
		Role:        string(sess.Role),
		Language:    string(res.Language),
		GeneratedAt: res.GeneratedAt.UTC(),
		Totals:      res.Totals,
		Snapshot:    res.Snapshot,
		Failures:    len(res.Failures),
	}
}

// Archive keeps a history of live snapshots.
type Archive interface {
	Save(ctx context.Context, rec ArchiveRecord) error
	History(ctx context.Context, userID string, since time.Time, limit int) ([]ArchiveRecord, error)
}

// History returns archived snapshots of the session owner, newest first.
func (l *Loader) History(ctx context.Context, sess session.Session, since time.Time, limit int) ([]ArchiveRecord, error) {
	if l.archive == nil {
		return nil, ErrNoArchive
	}
	return l.archive.History(ctx, sess.UserID, since, limit)
}
