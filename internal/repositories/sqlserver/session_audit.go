package sqlserver

import (
	"context"
	"time"

	"viksitkanpur/internal/models/entities"
	"viksitkanpur/internal/session"
)

// Migrate creates the audit table when missing
func (s *Internal) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&entities.SessionAuditLog{})
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// AuditLogOf maps a session event to its table row
func AuditLogOf(ev session.AuditEvent) entities.SessionAuditLog {
	at := ev.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return entities.SessionAuditLog{
		SessionId:    ev.SessionID,
		UserId:       ev.UserID,
		Role:         string(ev.Role),
		Action:       ev.Action,
		IPAddress:    optional(ev.IPAddress),
		UserAgent:    optional(ev.UserAgent),
		Success:      ev.Success,
		ErrorMessage: optional(ev.Reason),
		CreatedAt:    at,
	}
}

// Record implements session.AuditSink
func (s *Internal) Record(ctx context.Context, ev session.AuditEvent) error {
	row := AuditLogOf(ev)
	return s.db.WithContext(ctx).Create(&row).Error
}

// RecentSessionEvents returns the newest audit rows of a user
func (s *Internal) RecentSessionEvents(ctx context.Context, userID string, limit int) ([]entities.SessionAuditLog, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []entities.SessionAuditLog
	err := s.db.WithContext(ctx).
		Where("UserId = ?", userID).
		Order("CreatedAt DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
