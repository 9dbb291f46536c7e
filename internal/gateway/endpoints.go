package gateway

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

// Backend paths
const (
	PathDashboard     = "/analytics/dashboard"
	PathDepartments   = "/analytics/departments"
	PathWorkers       = "/analytics/workers"
	PathWards         = "/analytics/wards"
	PathActivity      = "/analytics/activity"
	PathRecent        = "/activity/recent"
	PathNotifications = "/notifications"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// ClampLimit keeps a page size within [1, MaxLimit]; non-positive means default.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

func limitQuery(limit int) url.Values {
	return url.Values{"limit": []string{strconv.Itoa(ClampLimit(limit))}}
}

// DashboardAnalytics fetches the headline counters and category breakdown.
func (c *Client) DashboardAnalytics(ctx context.Context, token string) Result[json.RawMessage] {
	return c.get(ctx, token, PathDashboard, nil, emptyObject)
}

// DepartmentAnalytics fetches per-department counters.
func (c *Client) DepartmentAnalytics(ctx context.Context, token string) Result[json.RawMessage] {
	return c.get(ctx, token, PathDepartments, nil, emptyList)
}

// WorkerAnalytics fetches per-worker productivity.
func (c *Client) WorkerAnalytics(ctx context.Context, token string) Result[json.RawMessage] {
	return c.get(ctx, token, PathWorkers, nil, emptyList)
}

// WardAnalytics fetches per-ward counters.
func (c *Client) WardAnalytics(ctx context.Context, token string) Result[json.RawMessage] {
	return c.get(ctx, token, PathWards, nil, emptyList)
}

// ActivityAnalytics fetches the complaint list used for time based breakdowns.
func (c *Client) ActivityAnalytics(ctx context.Context, token string) Result[json.RawMessage] {
	return c.get(ctx, token, PathActivity, nil, emptyList)
}

// RecentActivity fetches the latest activity feed entries.
func (c *Client) RecentActivity(ctx context.Context, token string, limit int) Result[json.RawMessage] {
	return c.get(ctx, token, PathRecent, limitQuery(limit), emptyList)
}

// Notifications fetches the latest notifications of the token owner.
func (c *Client) Notifications(ctx context.Context, token string, limit int) Result[json.RawMessage] {
	return c.get(ctx, token, PathNotifications, limitQuery(limit), emptyList)
}

// VerifyToken checks a bearer token against the backend. Only an explicit
// rejection is an error; an unreachable backend does not block sign-in.
func (c *Client) VerifyToken(ctx context.Context, token string) error {
	res := c.DashboardAnalytics(ctx, token)
	if fe := res.FetchErr(); fe != nil && IsUnauthorized(fe) {
		return fe
	}
	return nil
}
