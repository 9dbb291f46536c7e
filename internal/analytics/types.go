// Package analytics is the aggregation engine behind the dashboards. Every
// function here is pure and total: it never fails, never mutates its input and
// returns empty (non-nil) results for empty input.
package analytics

import (
	"math"
	"time"

	"viksitkanpur/internal/locale"
	"viksitkanpur/internal/models/records"

	"github.com/shopspring/decimal"
)

// MonthlyTrend is one calendar month bucket.
type MonthlyTrend struct {
	Key        string `json:"key"`
	Month      string `json:"month"`
	Complaints int    `json:"complaints"`
	Resolved   int    `json:"resolved"`
	Efficiency int    `json:"efficiency"`
}

// DepartmentPerformance is one department row.
type DepartmentPerformance struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Head              string          `json:"head,omitempty"`
	TotalComplaints   int             `json:"totalComplaints"`
	Resolved          int             `json:"resolved"`
	Pending           int             `json:"pending"`
	Efficiency        int             `json:"efficiency"`
	AvgResolutionDays float64         `json:"avgResolutionDays"`
	Budget            decimal.Decimal `json:"budget"`
	BudgetDisplay     string          `json:"budgetDisplay"`
}

// CategorySlice is one pie slice of the category distribution.
type CategorySlice struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
	Color      string `json:"color"`
}

// WardStatistic is one ward row.
type WardStatistic struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Zone           string `json:"zone,omitempty"`
	Population     int    `json:"population"`
	Complaints     int    `json:"complaints"`
	Resolved       int    `json:"resolved"`
	ResolutionRate int    `json:"resolutionRate"`
	ProgressWidth  int    `json:"progressWidth"`
	Density        string `json:"density"`
	DensityLabel   string `json:"densityLabel"`
}

// WorkerProductivity is one worker row.
type WorkerProductivity struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Department  string               `json:"department"`
	Status      records.WorkerStatus `json:"status"`
	StatusLabel string               `json:"statusLabel"`
	Assigned    int                  `json:"assigned"`
	Completed   int                  `json:"completed"`
	Efficiency  float64              `json:"efficiency"`
	Rating      float64              `json:"rating"`
}

// PriorityGroup summarizes the complaints of one priority.
type PriorityGroup struct {
	Priority          records.Priority `json:"priority"`
	Label             string           `json:"label"`
	Count             int              `json:"count"`
	Resolved          int              `json:"resolved"`
	AvgResolutionDays float64          `json:"avgResolutionDays"`
}

// TodayCounters are the "today" tiles.
type TodayCounters struct {
	NewComplaints    int     `json:"newComplaints"`
	ActiveWorkers    int     `json:"activeWorkers"`
	AvgResponseHours float64 `json:"avgResponseHours"`
	AvgResponseTime  string  `json:"avgResponseTime"`
}

// Totals are the headline counters.
type Totals struct {
	TotalComplaints   int     `json:"totalComplaints"`
	Completed         int     `json:"completed"`
	Pending           int     `json:"pending"`
	InProgress        int     `json:"inProgress"`
	ResolutionRate    int     `json:"resolutionRate"`
	AvgResolutionDays float64 `json:"avgResolutionDays"`
}

// Options parameterize the engine.
type Options struct {
	Translator locale.Translator
	// Now anchors the "today" counters; zero means time.Now.
	Now time.Time
	// Location is the viewer's time zone; nil means UTC.
	Location *time.Location
	Role     records.Role
	// CategoryNames maps backend category names to display names.
	CategoryNames map[string]string
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

func (o Options) now() time.Time {
	if o.Now.IsZero() {
		return time.Now().In(o.location())
	}
	return o.Now.In(o.location())
}

// percent returns round(part/whole*100) clamped to [0,100], and 0 when whole
// is not positive.
func percent(part, whole int) int {
	if whole <= 0 || part <= 0 {
		return 0
	}
	return clampPercent(int(math.Round(float64(part) / float64(whole) * 100)))
}

func clampPercent(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
