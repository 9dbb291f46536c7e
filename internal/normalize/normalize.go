// Package normalize converts the loosely typed payloads of the complaint
// backend into the strongly typed records of package records. It is the only
// place where backend data is validated: missing or malformed fields are
// replaced with defaults and reported as issues, never as errors.
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"viksitkanpur/internal/locale"
	"viksitkanpur/internal/models/records"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Issue describes a data-shape problem found while normalizing.
type Issue struct {
	Source  string `json:"source"`
	Index   int    `json:"index"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Field == "" {
		return fmt.Sprintf("%s[%d]: %s", i.Source, i.Index, i.Message)
	}
	return fmt.Sprintf("%s[%d].%s: %s", i.Source, i.Index, i.Field, i.Message)
}

// Normalizer is bound to a display language (for placeholder names) and to the
// time zone zone-less timestamps are read in.
type Normalizer struct {
	tr  locale.Translator
	loc *time.Location
}

// New returns a normalizer for tr reading timestamps in UTC.
func New(tr locale.Translator) *Normalizer {
	return &Normalizer{tr: tr, loc: time.UTC}
}

// WithLocation sets the zone used for timestamps without offset.
func (n *Normalizer) WithLocation(loc *time.Location) *Normalizer {
	if loc != nil {
		n.loc = loc
	}
	return n
}

type collector struct {
	source string
	index  int
	issues []Issue
}

func (c *collector) add(field, msg string) {
	c.issues = append(c.issues, Issue{Source: c.source, Index: c.index, Field: field, Message: msg})
}

// count reads a non-negative integer field, defaulting to 0.
func (c *collector) count(f fields, keys ...string) int {
	v, key, present, ok := f.number(keys...)
	if present && !ok {
		c.add(key, "not a number, using 0")
	}
	n, inRange := toCount(v)
	if !inRange {
		c.add(key, "out of range, clamped")
	}
	return n
}

// decimalNumber reads a non-negative float field, defaulting to 0.
func (c *collector) decimalNumber(f fields, keys ...string) float64 {
	v, key, present, ok := f.number(keys...)
	if present && !ok {
		c.add(key, "not a number, using 0")
	}
	if v < 0 {
		return 0
	}
	return v
}

func decode(raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// list decodes raw into objects, reporting payloads that are not lists and
// list items that are not objects.
func (n *Normalizer) list(source string, raw json.RawMessage, keys ...string) ([]fields, []Issue) {
	v, err := decode(raw)
	if err != nil {
		return nil, []Issue{{Source: source, Index: -1, Message: "invalid JSON: " + err.Error()}}
	}
	if v == nil {
		return nil, nil
	}
	items, ok := asObjects(v, keys...)
	if !ok {
		return nil, []Issue{{Source: source, Index: -1, Message: "payload is not a list"}}
	}
	return items, nil
}

// Department normalizes a single department object.
func (n *Normalizer) Department(obj map[string]any) records.Department {
	d, _ := n.department(&collector{source: "departments"}, fields(obj))
	return d
}

func (n *Normalizer) department(c *collector, f fields) (records.Department, []Issue) {
	name := f.text("name", "department_name", "departmentName")
	if name == "" {
		name = n.tr.Fallback("unknown_department")
	}

	d := records.Department{
		ID:                 f.text("id", "_id", "department_id", "departmentId"),
		Name:               name,
		NameLocalized:      f.text("name_hi", "nameHi", "nameHindi", "name_local", "nameLocalized"),
		Head:               f.text("head", "head_name", "headName"),
		TotalComplaints:    c.count(f, "total_complaints", "totalComplaints"),
		ResolvedComplaints: c.count(f, "resolved_complaints", "resolvedComplaints", "completed_complaints", "completedComplaints"),
		PendingComplaints:  c.count(f, "pending_complaints", "pendingComplaints"),
		AvgResolutionDays:  c.decimalNumber(f, "avg_resolution_days", "avgResolutionDays", "avgResolutionTime"),
		Budget:             c.budget(f, "budget", "allocated_budget", "allocatedBudget"),
	}
	return d, c.issues
}

func (c *collector) budget(f fields, keys ...string) decimal.Decimal {
	v, key, present := f.get(keys...)
	if !present {
		return decimal.Zero
	}
	if s, ok := v.(string); ok {
		s = strings.NewReplacer(",", "", "₹", "", " ", "").Replace(s)
		d, err := decimal.NewFromString(s)
		if err != nil || d.IsNegative() {
			c.add(key, "invalid budget, using 0")
			return decimal.Zero
		}
		return d
	}
	num, ok := toNumber(v)
	if !ok || num < 0 {
		c.add(key, "invalid budget, using 0")
		return decimal.Zero
	}
	return decimal.NewFromFloat(num)
}

// Departments normalizes the department analytics payload.
func (n *Normalizer) Departments(raw json.RawMessage) ([]records.Department, []Issue) {
	items, issues := n.list("departments", raw, "departments", "items", "data")
	out := make([]records.Department, 0, len(items))
	for i, f := range items {
		if f == nil {
			issues = append(issues, Issue{Source: "departments", Index: i, Message: "not an object, skipped"})
			continue
		}
		d, recIssues := n.department(&collector{source: "departments", index: i}, f)
		out = append(out, d)
		issues = append(issues, recIssues...)
	}
	return out, issues
}

// Wards normalizes the ward analytics payload.
func (n *Normalizer) Wards(raw json.RawMessage) ([]records.Ward, []Issue) {
	items, issues := n.list("wards", raw, "wards", "items", "data")
	out := make([]records.Ward, 0, len(items))
	for i, f := range items {
		if f == nil {
			issues = append(issues, Issue{Source: "wards", Index: i, Message: "not an object, skipped"})
			continue
		}
		c := &collector{source: "wards", index: i}
		name := f.text("name", "ward_name", "wardName", "area")
		if name == "" {
			name = n.tr.Fallback("unknown_area")
		}
		out = append(out, records.Ward{
			ID:                 f.text("id", "_id", "ward_id", "wardId", "ward_number", "wardNumber"),
			Name:               name,
			Zone:               f.text("zone"),
			Population:         c.count(f, "population"),
			TotalComplaints:    c.count(f, "total_complaints", "totalComplaints", "complaints"),
			ResolvedComplaints: c.count(f, "resolved_complaints", "resolvedComplaints", "resolved"),
		})
		issues = append(issues, c.issues...)
	}
	return out, issues
}

// Workers normalizes the worker analytics payload.
func (n *Normalizer) Workers(raw json.RawMessage) ([]records.Worker, []Issue) {
	items, issues := n.list("workers", raw, "workers", "items", "data")
	out := make([]records.Worker, 0, len(items))
	for i, f := range items {
		if f == nil {
			issues = append(issues, Issue{Source: "workers", Index: i, Message: "not an object, skipped"})
			continue
		}
		c := &collector{source: "workers", index: i}
		name := f.text("name", "worker_name", "workerName", "full_name", "fullName")
		if name == "" {
			name = n.tr.Fallback("unknown_worker")
		}
		department := f.text("department", "department_name", "departmentName")
		if department == "" {
			department = n.tr.Fallback("unknown_department")
		}
		out = append(out, records.Worker{
			ID:               f.text("id", "_id", "worker_id", "workerId"),
			Name:             name,
			Department:       department,
			Ward:             f.text("ward", "ward_name", "wardName"),
			Status:           WorkerStatus(f.text("status", "availability")),
			TotalAssigned:    c.count(f, "total_assigned", "totalAssigned", "assigned_complaints", "assignedComplaints"),
			TotalCompleted:   c.count(f, "total_completed", "totalCompleted", "completed_complaints", "completedComplaints"),
			EfficiencyRating: c.decimalNumber(f, "efficiency_rating", "efficiencyRating", "efficiency"),
		})
		issues = append(issues, c.issues...)
	}
	return out, issues
}

func (n *Normalizer) complaint(c *collector, f fields) records.Complaint {
	title := f.text("title", "subject", "description")
	if title == "" {
		title = n.tr.Fallback("untitled_complaint")
	}
	category := f.text("category", "category_name", "categoryName", "type")
	if category == "" {
		category = n.tr.Fallback("unknown_category")
	}
	ward := f.text("ward", "ward_name", "wardName", "area")
	if ward == "" {
		ward = n.tr.Fallback("unknown_area")
	}

	createdRaw, createdKey, hasCreated := f.get("created_at", "createdAt", "date_submitted", "dateSubmitted")
	created := parseTime(createdRaw, n.loc)
	if hasCreated && created.IsZero() {
		c.add(createdKey, "invalid timestamp")
	}
	updatedRaw, updatedKey, hasUpdated := f.get("updated_at", "updatedAt", "resolved_at", "resolvedAt")
	updated := parseTime(updatedRaw, n.loc)
	if hasUpdated && updated.IsZero() {
		c.add(updatedKey, "invalid timestamp")
	}

	return records.Complaint{
		ID:         f.text("id", "_id", "complaint_id", "complaintId"),
		Title:      title,
		Category:   category,
		Priority:   Priority(f.text("priority")),
		Status:     Status(f.text("status")),
		Ward:       ward,
		Department: f.text("department", "department_name", "departmentName"),
		CreatedAt:  created,
		UpdatedAt:  updated,
	}
}

// Complaints normalizes a complaint list, as returned by the activity
// analytics call or embedded in the dashboard payload.
func (n *Normalizer) Complaints(raw json.RawMessage) ([]records.Complaint, []Issue) {
	items, issues := n.list("complaints", raw, "complaints", "recentComplaints", "items", "data")
	return n.complaints("complaints", items, issues)
}

func (n *Normalizer) complaints(source string, items []fields, issues []Issue) ([]records.Complaint, []Issue) {
	out := make([]records.Complaint, 0, len(items))
	for i, f := range items {
		if f == nil {
			issues = append(issues, Issue{Source: source, Index: i, Message: "not an object, skipped"})
			continue
		}
		c := &collector{source: source, index: i}
		out = append(out, n.complaint(c, f))
		issues = append(issues, c.issues...)
	}
	return out, issues
}

// Dashboard normalizes the dashboard analytics payload.
func (n *Normalizer) Dashboard(raw json.RawMessage) (records.Dashboard, []Issue) {
	d := records.Dashboard{Categories: []records.CategoryCount{}, RecentComplaints: []records.Complaint{}}

	v, err := decode(raw)
	if err != nil {
		return d, []Issue{{Source: "dashboard", Index: -1, Message: "invalid JSON: " + err.Error()}}
	}
	obj, ok := v.(map[string]any)
	if !ok {
		if v == nil {
			return d, nil
		}
		return d, []Issue{{Source: "dashboard", Index: -1, Message: "payload is not an object"}}
	}

	f := fields(obj)
	c := &collector{source: "dashboard"}
	d.TotalComplaints = c.count(f, "totalComplaints", "total_complaints")
	d.CompletedComplaints = c.count(f, "completedComplaints", "completed_complaints", "resolvedComplaints", "resolved_complaints")
	d.PendingComplaints = c.count(f, "pendingComplaints", "pending_complaints")
	d.InProgressComplaints = c.count(f, "inProgressComplaints", "in_progress_complaints")
	d.AvgResolutionDays = c.decimalNumber(f, "avgResolutionDays", "avg_resolution_days", "avgResolutionTime")

	if hours, key, present, ok := f.number("avgResponseTime", "avg_response_time", "avgResponseHours"); present {
		if ok && hours >= 0 {
			d.AvgResponseHours = hours
			d.HasAvgResponse = true
		} else {
			c.add(key, "invalid response time")
		}
	}
	issues := c.issues

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err == nil {
		for _, key := range []string{"categoryBreakdown", "category_breakdown"} {
			if catRaw, found := top[key]; found {
				cats, catIssues := Categories(catRaw)
				d.Categories = cats
				issues = append(issues, catIssues...)
				break
			}
		}
		for _, key := range []string{"recentComplaints", "recent_complaints"} {
			if recentRaw, found := top[key]; found {
				items, listIssues := n.list("recentComplaints", recentRaw)
				recent, recIssues := n.complaints("recentComplaints", items, listIssues)
				d.RecentComplaints = recent
				issues = append(issues, recIssues...)
				break
			}
		}
	}

	return d, issues
}

// Activity normalizes the recent activity feed.
func (n *Normalizer) Activity(raw json.RawMessage) ([]records.ActivityEvent, []Issue) {
	items, issues := n.list("activity", raw, "activities", "activity", "items", "data")
	out := make([]records.ActivityEvent, 0, len(items))
	for i, f := range items {
		if f == nil {
			issues = append(issues, Issue{Source: "activity", Index: i, Message: "not an object, skipped"})
			continue
		}
		tsRaw, tsKey, hasTS := f.get("timestamp", "created_at", "createdAt", "time")
		ts := parseTime(tsRaw, n.loc)
		if hasTS && ts.IsZero() {
			issues = append(issues, Issue{Source: "activity", Index: i, Field: tsKey, Message: "invalid timestamp"})
		}
		out = append(out, records.ActivityEvent{
			ID:        f.text("id", "_id"),
			Type:      strings.ToLower(f.text("type", "action")),
			Message:   f.text("message", "description", "text"),
			Actor:     f.text("actor", "user", "by", "user_name", "userName"),
			Timestamp: ts,
		})
	}
	return out, issues
}

// Notifications normalizes the notification list.
func (n *Normalizer) Notifications(raw json.RawMessage) ([]records.Notification, []Issue) {
	items, issues := n.list("notifications", raw, "notifications", "items", "data")
	out := make([]records.Notification, 0, len(items))
	for i, f := range items {
		if f == nil {
			issues = append(issues, Issue{Source: "notifications", Index: i, Message: "not an object, skipped"})
			continue
		}
		createdRaw, _, _ := f.get("created_at", "createdAt", "timestamp")
		out = append(out, records.Notification{
			ID:        f.text("id", "_id"),
			Title:     f.text("title", "subject"),
			Message:   f.text("message", "body", "text"),
			Read:      f.boolean("read", "is_read", "isRead"),
			CreatedAt: parseTime(createdRaw, n.loc),
		})
	}
	return out, issues
}

// User normalizes a user profile.
func (n *Normalizer) User(obj map[string]any) records.User {
	f := fields(obj)
	id := f.text("id", "_id", "user_id", "userId")
	if id == "" {
		id = cast.ToString(obj["email"])
	}
	return records.User{
		ID:   id,
		Name: f.text("name", "full_name", "fullName"),
		Role: Role(f.text("role", "user_type", "userType")),
	}
}
