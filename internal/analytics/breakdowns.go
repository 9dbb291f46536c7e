package analytics

import (
	"math"

	"viksitkanpur/internal/locale"
	"viksitkanpur/internal/models/records"
)

// Palette is the color cycle of the category chart.
var Palette = [...]string{
	"#3B82F6",
	"#10B981",
	"#F59E0B",
	"#EF4444",
	"#8B5CF6",
	"#06B6D4",
	"#F97316",
}

const (
	highDensityPopulation   = 100000
	mediumDensityPopulation = 70000

	// defaultWorkerRating is shown for workers without an efficiency score.
	defaultWorkerRating = 4.0
	maxWorkerRating     = 5.0
)

// Density classes
const (
	DensityHigh   = "high"
	DensityMedium = "medium"
	DensityLow    = "low"
)

// DepartmentPerformanceOf keeps the input order and computes the resolution
// efficiency of every department.
func DepartmentPerformanceOf(departments []records.Department, opts Options) []DepartmentPerformance {
	tr := opts.Translator
	out := make([]DepartmentPerformance, 0, len(departments))
	for _, d := range departments {
		name := d.Name
		if tr.Lang() != locale.English && d.NameLocalized != "" {
			name = d.NameLocalized
		}
		out = append(out, DepartmentPerformance{
			ID:                d.ID,
			Name:              name,
			Head:              d.Head,
			TotalComplaints:   d.TotalComplaints,
			Resolved:          d.ResolvedComplaints,
			Pending:           d.PendingComplaints,
			Efficiency:        percent(d.ResolvedComplaints, d.TotalComplaints),
			AvgResolutionDays: round1(d.AvgResolutionDays),
			Budget:            d.Budget,
			BudgetDisplay:     tr.FormatBudget(d.Budget),
		})
	}
	return out
}

// CategoryDistribution drops categories without complaints and assigns each
// remaining one its share and a palette color by position.
func CategoryDistribution(categories []records.CategoryCount, opts Options) []CategorySlice {
	total := 0
	for _, c := range categories {
		if c.Count > 0 {
			total += c.Count
		}
	}

	out := make([]CategorySlice, 0, len(categories))
	for _, c := range categories {
		if c.Count <= 0 {
			continue
		}
		name := c.Name
		if display, ok := opts.CategoryNames[c.Name]; ok && display != "" {
			name = display
		}
		out = append(out, CategorySlice{
			Key:        locale.CategoryKey(c.Name),
			Name:       name,
			Count:      c.Count,
			Percentage: percent(c.Count, total),
			Color:      Palette[len(out)%len(Palette)],
		})
	}
	return out
}

// ClassifyDensity buckets a ward population.
func ClassifyDensity(population int) string {
	switch {
	case population > highDensityPopulation:
		return DensityHigh
	case population > mediumDensityPopulation:
		return DensityMedium
	default:
		return DensityLow
	}
}

// WardStatistics computes resolution rate and density class per ward.
func WardStatistics(wards []records.Ward, opts Options) []WardStatistic {
	out := make([]WardStatistic, 0, len(wards))
	for _, w := range wards {
		rate := percent(w.ResolvedComplaints, w.TotalComplaints)
		density := ClassifyDensity(w.Population)
		out = append(out, WardStatistic{
			ID:             w.ID,
			Name:           w.Name,
			Zone:           w.Zone,
			Population:     w.Population,
			Complaints:     w.TotalComplaints,
			Resolved:       w.ResolvedComplaints,
			ResolutionRate: rate,
			ProgressWidth:  clampPercent(rate),
			Density:        density,
			DensityLabel:   opts.Translator.DensityLabel(density),
		})
	}
	return out
}

// WorkerRating converts an efficiency percentage to a 0-5 star rating. Workers
// without a score get the default rating rather than zero stars.
func WorkerRating(efficiency float64) float64 {
	if efficiency <= 0 {
		return defaultWorkerRating
	}
	return math.Min(efficiency/20, maxWorkerRating)
}

// WorkerProductivityOf maps workers to rows with a star rating.
func WorkerProductivityOf(workers []records.Worker, opts Options) []WorkerProductivity {
	out := make([]WorkerProductivity, 0, len(workers))
	for _, w := range workers {
		eff := math.Max(0, math.Min(w.EfficiencyRating, 100))
		out = append(out, WorkerProductivity{
			ID:          w.ID,
			Name:        w.Name,
			Department:  w.Department,
			Status:      w.Status,
			StatusLabel: opts.Translator.WorkerStatusLabel(w.Status),
			Assigned:    w.TotalAssigned,
			Completed:   w.TotalCompleted,
			Efficiency:  eff,
			Rating:      WorkerRating(w.EfficiencyRating),
		})
	}
	return out
}
