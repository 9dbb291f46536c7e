// Package records holds the normalized, strongly typed records the analytics
// engine works on. Values of these types are produced only by the normalizer.
package records

import (
	"time"

	"github.com/shopspring/decimal"
)

// Priority of a complaint
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities lists the priorities in display order.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Status of a complaint
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// WorkerStatus is the availability of a field worker
type WorkerStatus string

const (
	WorkerAvailable WorkerStatus = "available"
	WorkerBusy      WorkerStatus = "busy"
	WorkerOffline   WorkerStatus = "offline"
)

// Role of a dashboard user
type Role string

const (
	RoleCitizen            Role = "citizen"
	RoleFieldWorker        Role = "field_worker"
	RoleDepartmentHead     Role = "department_head"
	RoleDistrictMagistrate Role = "district_magistrate"
	RoleGeneral            Role = "general"
)

// Complaint is a single citizen complaint.
type Complaint struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Category   string    `json:"category"`
	Priority   Priority  `json:"priority"`
	Status     Status    `json:"status"`
	Ward       string    `json:"ward"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Resolved reports whether the complaint is closed.
func (c Complaint) Resolved() bool {
	return c.Status == StatusCompleted
}

// ResolutionSpan returns the time between creation and last update. The second
// value is false when either timestamp is missing or the span is negative.
func (c Complaint) ResolutionSpan() (time.Duration, bool) {
	if c.CreatedAt.IsZero() || c.UpdatedAt.IsZero() {
		return 0, false
	}
	span := c.UpdatedAt.Sub(c.CreatedAt)
	if span < 0 {
		return 0, false
	}
	return span, true
}

// Department aggregates complaints handled by one municipal department.
type Department struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	NameLocalized      string          `json:"nameLocalized,omitempty"`
	Head               string          `json:"head,omitempty"`
	TotalComplaints    int             `json:"totalComplaints"`
	ResolvedComplaints int             `json:"resolvedComplaints"`
	PendingComplaints  int             `json:"pendingComplaints"`
	AvgResolutionDays  float64         `json:"avgResolutionDays"`
	Budget             decimal.Decimal `json:"budget"`
}

// Ward is an administrative area of the city.
type Ward struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Zone               string `json:"zone,omitempty"`
	Population         int    `json:"population"`
	TotalComplaints    int    `json:"totalComplaints"`
	ResolvedComplaints int    `json:"resolvedComplaints"`
}

// Worker is a field worker resolving complaints.
type Worker struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Department       string       `json:"department"`
	Ward             string       `json:"ward,omitempty"`
	Status           WorkerStatus `json:"status"`
	TotalAssigned    int          `json:"totalAssigned"`
	TotalCompleted   int          `json:"totalCompleted"`
	EfficiencyRating float64      `json:"efficiencyRating"`
}

// CategoryCount is one entry of the backend category breakdown. Slices of it
// keep the order the backend sent.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Dashboard is the headline block returned by the dashboard analytics call.
type Dashboard struct {
	TotalComplaints      int             `json:"totalComplaints"`
	CompletedComplaints  int             `json:"completedComplaints"`
	PendingComplaints    int             `json:"pendingComplaints"`
	InProgressComplaints int             `json:"inProgressComplaints"`
	AvgResolutionDays    float64         `json:"avgResolutionDays"`
	AvgResponseHours     float64         `json:"avgResponseHours"`
	HasAvgResponse       bool            `json:"-"`
	Categories           []CategoryCount `json:"categoryBreakdown"`
	RecentComplaints     []Complaint     `json:"recentComplaints"`
}

// ActivityEvent is an entry of the recent activity feed.
type ActivityEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Actor     string    `json:"actor,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Notification addressed to the signed-in user.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// User is the profile attached to a session.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}
