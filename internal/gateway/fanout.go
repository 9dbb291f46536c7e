package gateway

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/errgroup"
)

// Bundle holds the results of the five analytics calls a dashboard needs.
type Bundle struct {
	Dashboard   Result[json.RawMessage]
	Departments Result[json.RawMessage]
	Workers     Result[json.RawMessage]
	Wards       Result[json.RawMessage]
	Activity    Result[json.RawMessage]
}

// Failure is a failed call of a bundle.
type Failure struct {
	Endpoint string `json:"endpoint"`
	Kind     Kind   `json:"kind"`
	Status   int    `json:"status,omitempty"`
}

// Failures lists the calls that did not succeed, in fixed order.
func (b Bundle) Failures() []Failure {
	out := []Failure{}
	for _, r := range []Result[json.RawMessage]{b.Dashboard, b.Departments, b.Workers, b.Wards, b.Activity} {
		if fe := r.FetchErr(); fe != nil {
			out = append(out, Failure{Endpoint: fe.Endpoint, Kind: fe.Kind, Status: fe.StatusCode})
		}
	}
	return out
}

// AllFailed reports whether not a single call succeeded.
func (b Bundle) AllFailed() bool {
	return len(b.Failures()) == 5
}

// FetchAll issues the analytics calls concurrently and waits for all of
// them. A failing call never cancels the others; its slot simply holds the
// failure.
func (c *Client) FetchAll(ctx context.Context, token string) Bundle {
	var (
		b Bundle
		g errgroup.Group
	)

	g.Go(func() error {
		b.Dashboard = c.DashboardAnalytics(ctx, token)
		return nil
	})
	g.Go(func() error {
		b.Departments = c.DepartmentAnalytics(ctx, token)
		return nil
	})
	g.Go(func() error {
		b.Workers = c.WorkerAnalytics(ctx, token)
		return nil
	})
	g.Go(func() error {
		b.Wards = c.WardAnalytics(ctx, token)
		return nil
	})
	g.Go(func() error {
		b.Activity = c.ActivityAnalytics(ctx, token)
		return nil
	})

	_ = g.Wait()
	return b
}
