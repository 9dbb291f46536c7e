package pipeline

import (
	"context"
	"encoding/json"

	"viksitkanpur/internal/gateway"
	"viksitkanpur/internal/models/records"
	"viksitkanpur/internal/normalize"
	"viksitkanpur/internal/session"
)

// Feed is a normalized list plus provenance.
type Feed[T any] struct {
	Items   []T              `json:"items"`
	Source  Source           `json:"source"`
	Failure *gateway.Failure `json:"failure,omitempty"`
}

func (l *Loader) feed(ctx context.Context, sess session.Session, call func() gateway.Result[json.RawMessage], placeholder json.RawMessage) (json.RawMessage, Source, *gateway.Failure) {
	if !l.live(sess) {
		return placeholder, SourcePlaceholder, nil
	}
	res := call()
	if fe := res.FetchErr(); fe != nil {
		l.log.Warn("Upstream call failed", map[string]interface{}{
			"session_id": sess.ID,
			"endpoint":   fe.Endpoint,
			"kind":       string(fe.Kind),
		})
		return res.OrDefault(), SourceLive, &gateway.Failure{Endpoint: fe.Endpoint, Kind: fe.Kind, Status: fe.StatusCode}
	}
	return res.OrDefault(), SourceLive, nil
}

// RecentActivity returns the latest activity feed of sess.
func (l *Loader) RecentActivity(ctx context.Context, sess session.Session, limit int) Feed[records.ActivityEvent] {
	raw, src, failure := l.feed(ctx, sess, func() gateway.Result[json.RawMessage] {
		return l.fetcher.RecentActivity(ctx, sess.Token, limit)
	}, gateway.PlaceholderRecentActivity())

	items, issues := normalize.New(sess.Translator()).WithLocation(l.loc).Activity(raw)
	l.logIssues(sess, issues)
	return Feed[records.ActivityEvent]{Items: truncate(items, gateway.ClampLimit(limit)), Source: src, Failure: failure}
}

// Notifications returns the latest notifications of sess.
func (l *Loader) Notifications(ctx context.Context, sess session.Session, limit int) Feed[records.Notification] {
	raw, src, failure := l.feed(ctx, sess, func() gateway.Result[json.RawMessage] {
		return l.fetcher.Notifications(ctx, sess.Token, limit)
	}, gateway.PlaceholderNotifications())

	items, issues := normalize.New(sess.Translator()).WithLocation(l.loc).Notifications(raw)
	l.logIssues(sess, issues)
	return Feed[records.Notification]{Items: truncate(items, gateway.ClampLimit(limit)), Source: src, Failure: failure}
}

func truncate[T any](items []T, n int) []T {
	if items == nil {
		return []T{}
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}
