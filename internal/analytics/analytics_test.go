package analytics

import (
	"testing"
	"time"

	"viksitkanpur/internal/locale"
	"viksitkanpur/internal/models/records"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func enOpts() Options {
	return Options{
		Translator: locale.For(locale.English),
		Now:        time.Date(2025, time.March, 15, 12, 0, 0, 0, ist),
		Location:   ist,
		Role:       records.RoleDistrictMagistrate,
	}
}

func complaint(priority records.Priority, status records.Status, created, updated time.Time) records.Complaint {
	return records.Complaint{Priority: priority, Status: status, CreatedAt: created, UpdatedAt: updated}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, ist)
}

func TestMonthlyTrends(t *testing.T) {
	complaints := []records.Complaint{
		complaint(records.PriorityHigh, records.StatusCompleted, day(2025, time.February, 3), time.Time{}),
		complaint(records.PriorityHigh, records.StatusPending, day(2025, time.January, 9), time.Time{}),
		complaint(records.PriorityLow, records.StatusCompleted, day(2025, time.February, 20), time.Time{}),
		complaint(records.PriorityLow, records.StatusInProgress, day(2025, time.February, 21), time.Time{}),
		complaint(records.PriorityLow, records.StatusPending, time.Time{}, time.Time{}),
	}

	got := MonthlyTrends(complaints, enOpts())
	require.Len(t, got, 2)

	// first occurrence order
	assert.Equal(t, MonthlyTrend{Key: "2025-02", Month: "February", Complaints: 3, Resolved: 2, Efficiency: 67}, got[0])
	assert.Equal(t, MonthlyTrend{Key: "2025-01", Month: "January", Complaints: 1, Resolved: 0, Efficiency: 0}, got[1])

	sum := 0
	for _, m := range got {
		sum += m.Complaints
		assert.GreaterOrEqual(t, m.Efficiency, 0)
		assert.LessOrEqual(t, m.Efficiency, 100)
	}
	assert.Equal(t, 4, sum)
}

func TestMonthlyTrendsSplitsYears(t *testing.T) {
	opts := enOpts()
	opts.Translator = locale.For(locale.Hindi)

	got := MonthlyTrends([]records.Complaint{
		complaint(records.PriorityHigh, records.StatusPending, day(2024, time.January, 9), time.Time{}),
		complaint(records.PriorityHigh, records.StatusPending, day(2025, time.January, 9), time.Time{}),
	}, opts)

	require.Len(t, got, 2)
	assert.Equal(t, "जनवरी 2024", got[0].Month)
	assert.Equal(t, "जनवरी 2025", got[1].Month)
}

func TestDepartmentPerformance(t *testing.T) {
	departments := []records.Department{
		{Name: "Jal Kal", NameLocalized: "जल कल", TotalComplaints: 200, ResolvedComplaints: 150, Budget: decimal.NewFromInt(1500000)},
		{Name: "Unknown Department", TotalComplaints: 0, ResolvedComplaints: 0},
		{Name: "PWD", TotalComplaints: 10, ResolvedComplaints: 12},
	}

	got := DepartmentPerformanceOf(departments, enOpts())
	require.Len(t, got, 3)
	assert.Equal(t, "Jal Kal", got[0].Name)
	assert.Equal(t, 75, got[0].Efficiency)
	assert.Equal(t, "₹1,500,000", got[0].BudgetDisplay)
	assert.Equal(t, 0, got[1].Efficiency)
	assert.Equal(t, 100, got[2].Efficiency)

	hiOpts := enOpts()
	hiOpts.Translator = locale.For(locale.Hindi)
	got = DepartmentPerformanceOf(departments, hiOpts)
	assert.Equal(t, "जल कल", got[0].Name)
	assert.Equal(t, "PWD", got[2].Name)
}

func TestCategoryDistribution(t *testing.T) {
	categories := []records.CategoryCount{
		{Name: "Road Damage", Count: 50},
		{Name: "Parks", Count: 0},
		{Name: "Water Supply", Count: 30},
		{Name: "Drainage", Count: 20},
	}
	opts := enOpts()
	opts.CategoryNames = map[string]string{"Drainage": "Nala Safai"}

	got := CategoryDistribution(categories, opts)
	require.Len(t, got, 3)

	assert.Equal(t, CategorySlice{Key: "road_damage", Name: "Road Damage", Count: 50, Percentage: 50, Color: Palette[0]}, got[0])
	assert.Equal(t, Palette[1], got[1].Color)
	assert.Equal(t, 30, got[1].Percentage)
	assert.Equal(t, "Nala Safai", got[2].Name)
	assert.Equal(t, Palette[2], got[2].Color)

	sum := 0
	for _, c := range got {
		sum += c.Percentage
	}
	assert.InDelta(t, 100, sum, float64(len(got)))
}

func TestCategoryDistributionPaletteWraps(t *testing.T) {
	var categories []records.CategoryCount
	for i := 0; i < 9; i++ {
		categories = append(categories, records.CategoryCount{Name: string(rune('A' + i)), Count: 1})
	}

	got := CategoryDistribution(categories, enOpts())
	require.Len(t, got, 9)
	assert.Equal(t, Palette[0], got[7].Color)
	assert.Equal(t, Palette[1], got[8].Color)
	assert.Equal(t, 11, got[0].Percentage)

	sum := 0
	for _, c := range got {
		sum += c.Percentage
	}
	assert.InDelta(t, 100, sum, float64(len(got)))
}

func TestCategoryDistributionEmpty(t *testing.T) {
	got := CategoryDistribution([]records.CategoryCount{{Name: "Parks", Count: 0}}, enOpts())
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestClassifyDensity(t *testing.T) {
	tests := []struct {
		population int
		want       string
	}{
		{population: 100001, want: DensityHigh},
		{population: 100000, want: DensityMedium},
		{population: 70001, want: DensityMedium},
		{population: 70000, want: DensityLow},
		{population: 0, want: DensityLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyDensity(tt.population), "population %d", tt.population)
	}
}

func TestWardStatistics(t *testing.T) {
	wards := []records.Ward{
		{Name: "Swaroop Nagar", Population: 120000, TotalComplaints: 40, ResolvedComplaints: 30},
		{Name: "Kidwai Nagar", Population: 50000, TotalComplaints: 0, ResolvedComplaints: 0},
		{Name: "Govind Nagar", Population: 80000, TotalComplaints: 5, ResolvedComplaints: 9},
	}

	got := WardStatistics(wards, enOpts())
	require.Len(t, got, 3)
	assert.Equal(t, 75, got[0].ResolutionRate)
	assert.Equal(t, "High Density", got[0].DensityLabel)
	assert.Equal(t, 0, got[1].ResolutionRate)
	assert.Equal(t, DensityLow, got[1].Density)
	assert.Equal(t, 100, got[2].ProgressWidth)
	assert.Equal(t, DensityMedium, got[2].Density)
}

func TestWorkerRating(t *testing.T) {
	tests := []struct {
		efficiency float64
		want       float64
	}{
		{efficiency: 0, want: 4.0},
		{efficiency: 100, want: 5.0},
		{efficiency: 40, want: 2.0},
		{efficiency: 150, want: 5.0},
		{efficiency: 85.5, want: 4.275},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, WorkerRating(tt.efficiency), "efficiency %v", tt.efficiency)
	}
}

func TestWorkerProductivity(t *testing.T) {
	got := WorkerProductivityOf([]records.Worker{
		{Name: "Ramesh", Status: records.WorkerAvailable, EfficiencyRating: 130},
	}, enOpts())
	require.Len(t, got, 1)
	assert.Equal(t, 100.0, got[0].Efficiency)
	assert.Equal(t, 5.0, got[0].Rating)
	assert.Equal(t, "Available", got[0].StatusLabel)
}

func TestPriorityAnalysis(t *testing.T) {
	start := day(2025, time.January, 1)
	complaints := []records.Complaint{
		complaint(records.PriorityHigh, records.StatusCompleted, start, start.Add(48*time.Hour)),
		complaint(records.PriorityHigh, records.StatusCompleted, start, start.Add(96*time.Hour)),
		// still open, not counted towards the average
		complaint(records.PriorityHigh, records.StatusPending, start, start.Add(240*time.Hour)),
		// negative span excluded
		complaint(records.PriorityLow, records.StatusCompleted, start, start.Add(-24*time.Hour)),
		// missing update timestamp excluded
		complaint(records.PriorityLow, records.StatusCompleted, start, time.Time{}),
	}

	got := PriorityAnalysis(complaints, enOpts())
	require.Len(t, got, 2)

	assert.Equal(t, PriorityGroup{Priority: records.PriorityHigh, Label: "High Priority", Count: 3, Resolved: 2, AvgResolutionDays: 3.0}, got[0])
	assert.Equal(t, records.PriorityLow, got[1].Priority)
	assert.Equal(t, 0.0, got[1].AvgResolutionDays)
	assert.Equal(t, 2, got[1].Resolved)
}

func TestPriorityAnalysisRounding(t *testing.T) {
	start := day(2025, time.January, 1)
	got := PriorityAnalysis([]records.Complaint{
		complaint(records.PriorityMedium, records.StatusCompleted, start, start.Add(25*time.Hour)),
		complaint(records.PriorityMedium, records.StatusCompleted, start, start.Add(36*time.Hour)),
	}, enOpts())

	require.Len(t, got, 1)
	// (25h + 36h) / 2 = 30.5h = 1.2708 days
	assert.Equal(t, 1.3, got[0].AvgResolutionDays)
}

func TestToday(t *testing.T) {
	opts := enOpts()
	complaints := []records.Complaint{
		{CreatedAt: time.Date(2025, time.March, 15, 0, 30, 0, 0, ist)},
		// 14 March 19:00 UTC is 15 March 00:30 IST
		{CreatedAt: time.Date(2025, time.March, 14, 19, 0, 0, 0, time.UTC)},
		{CreatedAt: time.Date(2025, time.March, 14, 23, 59, 0, 0, ist)},
		{},
	}
	workers := []records.Worker{
		{Status: records.WorkerAvailable},
		{Status: records.WorkerBusy},
		{Status: records.WorkerAvailable},
	}

	got := Today(complaints, workers, true, records.Dashboard{AvgResponseHours: 1.75, HasAvgResponse: true}, opts)
	assert.Equal(t, 2, got.NewComplaints)
	assert.Equal(t, 2, got.ActiveWorkers)
	assert.Equal(t, 1.8, got.AvgResponseHours)
	assert.Equal(t, "1.8 hrs", got.AvgResponseTime)

	got = Today(nil, nil, false, records.Dashboard{}, opts)
	assert.Equal(t, 0, got.NewComplaints)
	assert.Equal(t, DefaultActiveWorkers, got.ActiveWorkers)
	assert.Equal(t, DefaultAvgResponseHours, got.AvgResponseHours)
}

func TestTotalsOf(t *testing.T) {
	got := TotalsOf(records.Dashboard{TotalComplaints: 200, CompletedComplaints: 150, PendingComplaints: 50}, nil)
	assert.Equal(t, 75, got.ResolutionRate)

	got = TotalsOf(records.Dashboard{}, []records.Complaint{
		{Status: records.StatusCompleted},
		{Status: records.StatusInProgress},
		{Status: records.StatusPending},
		{Status: records.StatusPending},
	})
	assert.Equal(t, Totals{TotalComplaints: 4, Completed: 1, InProgress: 1, Pending: 2, ResolutionRate: 25}, got)
}

func TestBuildEmptyInput(t *testing.T) {
	snap := Build(Input{}, enOpts())

	assert.Equal(t, AllSections, snap.Sections)
	assert.NotNil(t, snap.Monthly)
	assert.Empty(t, snap.Monthly)
	assert.Empty(t, snap.Departments)
	assert.Empty(t, snap.Categories)
	assert.Empty(t, snap.Wards)
	assert.Empty(t, snap.Workers)
	assert.Empty(t, snap.Priorities)
	require.NotNil(t, snap.Today)
	assert.Equal(t, 0, snap.Totals.ResolutionRate)
}

func TestBuildRoleScoping(t *testing.T) {
	opts := enOpts()
	opts.Role = records.RoleCitizen

	snap := Build(Input{
		Departments: []records.Department{{Name: "PWD", TotalComplaints: 1}},
		Workers:     []records.Worker{{Name: "Ramesh"}},
	}, opts)

	assert.True(t, snap.Has(SectionWards))
	assert.False(t, snap.Has(SectionDepartments))
	assert.Nil(t, snap.Departments)
	assert.Nil(t, snap.Workers)

	assert.Equal(t, SectionsFor(records.RoleGeneral), SectionsFor(records.Role("visitor")))
}
