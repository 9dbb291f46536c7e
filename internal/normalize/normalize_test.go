package normalize

import (
	"encoding/json"
	"testing"
	"time"

	"viksitkanpur/internal/locale"
	"viksitkanpur/internal/models/records"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepartmentDefaults(t *testing.T) {
	tests := []struct {
		name     string
		lang     locale.Lang
		payload  string
		wantName string
		wantTot  int
		issues   int
	}{
		{
			name:     "null name and non numeric total",
			lang:     locale.English,
			payload:  `[{"name": null, "total_complaints": "abc"}]`,
			wantName: "Unknown Department",
			wantTot:  0,
			issues:   1,
		},
		{
			name:     "hindi placeholder",
			lang:     locale.Hindi,
			payload:  `[{"totalComplaints": "42"}]`,
			wantName: "अज्ञात विभाग",
			wantTot:  42,
		},
		{
			name:     "blank name and negative total",
			lang:     locale.English,
			payload:  `{"departments": [{"name": "  ", "total_complaints": -5}]}`,
			wantName: "Unknown Department",
			wantTot:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := New(locale.For(tt.lang))
			got, issues := n.Departments(json.RawMessage(tt.payload))
			require.Len(t, got, 1)
			assert.Equal(t, tt.wantName, got[0].Name)
			assert.Equal(t, tt.wantTot, got[0].TotalComplaints)
			assert.Equal(t, 0, got[0].ResolvedComplaints)
			assert.Len(t, issues, tt.issues)
		})
	}
}

func TestDepartmentBudget(t *testing.T) {
	n := New(locale.For(locale.English))

	d := n.Department(map[string]any{"name": "Jal Kal", "budget": "₹12,50,000.50"})
	assert.True(t, decimal.RequireFromString("1250000.5").Equal(d.Budget))

	d = n.Department(map[string]any{"budget": 2500.0})
	assert.True(t, decimal.NewFromInt(2500).Equal(d.Budget))

	d = n.Department(map[string]any{"budget": "lots"})
	assert.True(t, d.Budget.IsZero())
}

func TestWardsAndWorkers(t *testing.T) {
	n := New(locale.For(locale.Hindi))

	wards, issues := n.Wards(json.RawMessage(`[{"ward_name": null, "population": "120000", "totalComplaints": 10, "resolved": 7}, 5]`))
	require.Len(t, wards, 1)
	assert.Equal(t, "अज्ञात क्षेत्र", wards[0].Name)
	assert.Equal(t, 120000, wards[0].Population)
	assert.Equal(t, 7, wards[0].ResolvedComplaints)
	require.Len(t, issues, 1)
	assert.Equal(t, 1, issues[0].Index)

	workers, issues := n.Workers(json.RawMessage(`{"data": [{"name": "Ramesh", "status": "Active", "efficiencyRating": "85.5", "totalAssigned": 20}]}`))
	assert.Empty(t, issues)
	require.Len(t, workers, 1)
	assert.Equal(t, records.WorkerAvailable, workers[0].Status)
	assert.Equal(t, 85.5, workers[0].EfficiencyRating)
	assert.Equal(t, 20, workers[0].TotalAssigned)
	assert.Equal(t, "अज्ञात विभाग", workers[0].Department)
}

func TestComplaints(t *testing.T) {
	n := New(locale.For(locale.English))

	got, issues := n.Complaints(json.RawMessage(`[
		{"id": 7, "priority": "URGENT", "status": "resolved", "created_at": "2025-01-10T10:00:00Z", "updated_at": "2025-01-13T10:00:00Z"},
		{"priority": "whatever", "status": "in-progress", "createdAt": "yesterday"},
		{"createdAt": 1736503200000}
	]`))

	require.Len(t, got, 3)
	assert.Equal(t, "7", got[0].ID)
	assert.Equal(t, records.PriorityHigh, got[0].Priority)
	assert.Equal(t, records.StatusCompleted, got[0].Status)
	span, ok := got[0].ResolutionSpan()
	assert.True(t, ok)
	assert.Equal(t, 72*time.Hour, span)

	assert.Equal(t, records.PriorityMedium, got[1].Priority)
	assert.Equal(t, records.StatusInProgress, got[1].Status)
	assert.True(t, got[1].CreatedAt.IsZero())
	assert.Equal(t, "General", got[1].Category)
	assert.Equal(t, "Unknown Area", got[1].Ward)

	assert.Equal(t, int64(1736503200000), got[2].CreatedAt.UnixMilli())
	assert.Equal(t, records.StatusPending, got[2].Status)

	require.Len(t, issues, 1)
	assert.Equal(t, "createdAt", issues[0].Field)
}

func TestDashboard(t *testing.T) {
	n := New(locale.For(locale.English))

	payload := `{
		"totalComplaints": "150",
		"completedComplaints": 90,
		"pendingComplaints": 40,
		"inProgressComplaints": 20,
		"avgResponseTime": 2.5,
		"categoryBreakdown": {"Water Supply": 30, "Road Damage": 50, "Drainage": "x", "Parks": -3},
		"recentComplaints": [{"title": "Pothole near Bada Chauraha", "priority": "high"}]
	}`

	d, issues := n.Dashboard(json.RawMessage(payload))
	assert.Equal(t, 150, d.TotalComplaints)
	assert.Equal(t, 90, d.CompletedComplaints)
	assert.True(t, d.HasAvgResponse)
	assert.Equal(t, 2.5, d.AvgResponseHours)

	require.Len(t, d.Categories, 4)
	assert.Equal(t, []records.CategoryCount{
		{Name: "Water Supply", Count: 30},
		{Name: "Road Damage", Count: 50},
		{Name: "Drainage", Count: 0},
		{Name: "Parks", Count: 0},
	}, d.Categories)

	require.Len(t, d.RecentComplaints, 1)
	assert.Equal(t, records.PriorityHigh, d.RecentComplaints[0].Priority)
	require.Len(t, issues, 1)
	assert.Equal(t, "Drainage", issues[0].Field)
}

func TestDashboardShapes(t *testing.T) {
	n := New(locale.For(locale.English))

	d, issues := n.Dashboard(nil)
	assert.Empty(t, issues)
	assert.NotNil(t, d.Categories)
	assert.Empty(t, d.Categories)

	_, issues = n.Dashboard(json.RawMessage(`[1,2]`))
	require.Len(t, issues, 1)

	_, issues = n.Dashboard(json.RawMessage(`{broken`))
	require.Len(t, issues, 1)
}

func TestDashboardHugeCountsAreClamped(t *testing.T) {
	n := New(locale.For(locale.English))

	d, issues := n.Dashboard(json.RawMessage(`{"totalComplaints": 1e20, "categoryBreakdown": {"Roads": 1e20, "Water": 10}}`))
	assert.Equal(t, maxCount, d.TotalComplaints)
	assert.Equal(t, []records.CategoryCount{
		{Name: "Roads", Count: maxCount},
		{Name: "Water", Count: 10},
	}, d.Categories)

	require.Len(t, issues, 2)
	assert.Equal(t, "totalComplaints", issues[0].Field)
	assert.Equal(t, "Roads", issues[1].Field)
	assert.Equal(t, "out of range, clamped", issues[1].Message)
}

func TestParseTimeRejectsHugeEpochs(t *testing.T) {
	assert.True(t, parseTime(1e20, time.UTC).IsZero())
	assert.True(t, parseTime(-5, time.UTC).IsZero())
	assert.Equal(t, int64(1700000000000), parseTime(1.7e12, time.UTC).UnixMilli())
	assert.Equal(t, int64(1700000000), parseTime(1.7e9, time.UTC).Unix())
}

func TestCategoriesListShape(t *testing.T) {
	got, issues := Categories(json.RawMessage(`[{"category": "Sewage", "count": 4}, {"name": "Parks", "value": "2"}, "bad"]`))
	assert.Equal(t, []records.CategoryCount{{Name: "Sewage", Count: 4}, {Name: "Parks", Count: 2}}, got)
	require.Len(t, issues, 1)
}

func TestActivityAndNotifications(t *testing.T) {
	n := New(locale.For(locale.English)).WithLocation(time.FixedZone("IST", 5*3600+1800))

	events, issues := n.Activity(json.RawMessage(`{"activities": [{"id": "a1", "type": "RESOLVED", "message": "Complaint closed", "timestamp": "2025-03-01 09:30:00"}]}`))
	assert.Empty(t, issues)
	require.Len(t, events, 1)
	assert.Equal(t, "resolved", events[0].Type)
	assert.Equal(t, 4, events[0].Timestamp.UTC().Hour())

	notes, _ := n.Notifications(json.RawMessage(`[{"id": "n1", "title": "Assigned", "is_read": "true"}]`))
	require.Len(t, notes, 1)
	assert.True(t, notes[0].Read)
}

func TestEnums(t *testing.T) {
	assert.Equal(t, records.RoleDistrictMagistrate, Role("District-Magistrate"))
	assert.Equal(t, records.RoleFieldWorker, Role("field worker"))
	assert.Equal(t, records.RoleGeneral, Role(""))
	assert.Equal(t, records.WorkerOffline, WorkerStatus("unknown"))
	assert.Equal(t, records.PriorityLow, Priority(" Low "))
}
