package analytics

import (
	"fmt"
	"time"

	"viksitkanpur/internal/models/records"
)

// Fallbacks for today counters whose source is unavailable.
const (
	DefaultActiveWorkers    = 0
	DefaultAvgResponseHours = 2.5
)

// MonthlyTrends buckets complaints by calendar month of their creation date in
// the viewer's time zone. Buckets appear in order of first occurrence.
// Complaints without a valid creation date are skipped. When the data spans
// more than one year the labels carry the year.
func MonthlyTrends(complaints []records.Complaint, opts Options) []MonthlyTrend {
	loc := opts.location()
	index := map[string]int{}
	months := make([]time.Time, 0)
	out := make([]MonthlyTrend, 0)

	years := map[int]struct{}{}
	for _, c := range complaints {
		if c.CreatedAt.IsZero() {
			continue
		}
		created := c.CreatedAt.In(loc)
		years[created.Year()] = struct{}{}
		key := fmt.Sprintf("%04d-%02d", created.Year(), int(created.Month()))

		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, MonthlyTrend{Key: key})
			months = append(months, created)
		}
		out[i].Complaints++
		if c.Resolved() {
			out[i].Resolved++
		}
	}

	for i := range out {
		label := opts.Translator.MonthName(months[i].Month())
		if len(years) > 1 {
			label = fmt.Sprintf("%s %d", label, months[i].Year())
		}
		out[i].Month = label
		out[i].Efficiency = percent(out[i].Resolved, out[i].Complaints)
	}
	return out
}

// PriorityAnalysis groups complaints by priority, high first. Only priorities
// that occur are returned. The average resolution time counts resolved
// complaints with a valid, non-negative creation to update span.
func PriorityAnalysis(complaints []records.Complaint, opts Options) []PriorityGroup {
	type acc struct {
		count, resolved, spans int
		days                   float64
	}
	groups := map[records.Priority]*acc{}

	for _, c := range complaints {
		g, ok := groups[c.Priority]
		if !ok {
			g = &acc{}
			groups[c.Priority] = g
		}
		g.count++
		if !c.Resolved() {
			continue
		}
		g.resolved++
		if span, ok := c.ResolutionSpan(); ok {
			g.spans++
			g.days += span.Hours() / 24
		}
	}

	out := make([]PriorityGroup, 0, len(groups))
	for _, p := range records.Priorities {
		g, ok := groups[p]
		if !ok {
			continue
		}
		avg := 0.0
		if g.spans > 0 {
			avg = round1(g.days / float64(g.spans))
		}
		out = append(out, PriorityGroup{
			Priority:          p,
			Label:             opts.Translator.PriorityLabel(p),
			Count:             g.count,
			Resolved:          g.resolved,
			AvgResolutionDays: avg,
		})
	}
	return out
}

// Today computes the "today" tiles. Each counter has its own source:
// complaints created on the viewer's current calendar day, workers marked
// available, and the response time reported by the backend. workersKnown is
// false when the worker list could not be loaded.
func Today(complaints []records.Complaint, workers []records.Worker, workersKnown bool, dashboard records.Dashboard, opts Options) TodayCounters {
	now := opts.now()
	loc := opts.location()
	y, m, d := now.Date()

	counters := TodayCounters{
		ActiveWorkers:    DefaultActiveWorkers,
		AvgResponseHours: DefaultAvgResponseHours,
	}

	for _, c := range complaints {
		if c.CreatedAt.IsZero() {
			continue
		}
		cy, cm, cd := c.CreatedAt.In(loc).Date()
		if cy == y && cm == m && cd == d {
			counters.NewComplaints++
		}
	}

	if workersKnown {
		counters.ActiveWorkers = 0
		for _, w := range workers {
			if w.Status == records.WorkerAvailable {
				counters.ActiveWorkers++
			}
		}
	}

	if dashboard.HasAvgResponse {
		counters.AvgResponseHours = round1(dashboard.AvgResponseHours)
	}
	counters.AvgResponseTime = opts.Translator.FormatHours(counters.AvgResponseHours)

	return counters
}
