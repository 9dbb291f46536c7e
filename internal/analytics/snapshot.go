package analytics

import (
	"encoding/json"
	"time"

	"viksitkanpur/internal/locale"
	"viksitkanpur/internal/models/records"
)

// Section names a dashboard breakdown.
type Section string

const (
	SectionMonthly     Section = "monthly"
	SectionDepartments Section = "departments"
	SectionCategories  Section = "categories"
	SectionWards       Section = "wards"
	SectionWorkers     Section = "workers"
	SectionPriorities  Section = "priorities"
	SectionToday       Section = "today"
)

// AllSections in display order.
var AllSections = []Section{
	SectionMonthly, SectionDepartments, SectionCategories, SectionWards,
	SectionWorkers, SectionPriorities, SectionToday,
}

var roleSections = map[records.Role][]Section{
	records.RoleDistrictMagistrate: AllSections,
	records.RoleDepartmentHead:     AllSections,
	records.RoleFieldWorker:        {SectionCategories, SectionWorkers, SectionPriorities, SectionToday},
	records.RoleCitizen:            {SectionMonthly, SectionCategories, SectionWards, SectionToday},
	records.RoleGeneral:            {SectionMonthly, SectionCategories, SectionWards, SectionToday},
}

// SectionsFor returns the breakdowns the dashboard of role shows.
func SectionsFor(role records.Role) []Section {
	if sections, ok := roleSections[role]; ok {
		return sections
	}
	return roleSections[records.RoleGeneral]
}

// Input is the normalized data one snapshot is built from.
type Input struct {
	Dashboard   records.Dashboard
	Complaints  []records.Complaint
	Departments []records.Department
	Wards       []records.Ward
	Workers     []records.Worker
	// WorkersKnown is false when the worker list failed to load.
	WorkersKnown bool
}

// Snapshot is everything a dashboard renders. Its JSON form is View.
type Snapshot struct {
	Language    locale.Lang
	Role        records.Role
	GeneratedAt time.Time
	Sections    []Section
	Totals      Totals
	Monthly     []MonthlyTrend
	Departments []DepartmentPerformance
	Categories  []CategorySlice
	Wards       []WardStatistic
	Workers     []WorkerProductivity
	Priorities  []PriorityGroup
	Today       *TodayCounters
}

// View is the wire form of a Snapshot. Every section the role sees is
// present, as an empty list when there is no data. Other sections are left
// out.
type View struct {
	Language    locale.Lang              `json:"language"`
	Role        records.Role             `json:"role"`
	GeneratedAt time.Time                `json:"generatedAt"`
	Sections    []Section                `json:"sections"`
	Totals      Totals                   `json:"totals"`
	Monthly     *[]MonthlyTrend          `json:"monthly,omitempty"`
	Departments *[]DepartmentPerformance `json:"departments,omitempty"`
	Categories  *[]CategorySlice         `json:"categories,omitempty"`
	Wards       *[]WardStatistic         `json:"wards,omitempty"`
	Workers     *[]WorkerProductivity    `json:"workers,omitempty"`
	Priorities  *[]PriorityGroup         `json:"priorities,omitempty"`
	Today       *TodayCounters           `json:"today,omitempty"`
}

func present[T any](s Snapshot, section Section, list []T) *[]T {
	if !s.Has(section) {
		return nil
	}
	if list == nil {
		list = []T{}
	}
	return &list
}

func deref[T any](allowed bool, p *[]T) []T {
	switch {
	case p != nil && *p != nil:
		return *p
	case allowed:
		return []T{}
	}
	return nil
}

// View projects s onto the sections of its role.
func (s Snapshot) View() View {
	sections := s.Sections
	if sections == nil {
		sections = []Section{}
	}
	v := View{
		Language:    s.Language,
		Role:        s.Role,
		GeneratedAt: s.GeneratedAt,
		Sections:    sections,
		Totals:      s.Totals,
		Monthly:     present(s, SectionMonthly, s.Monthly),
		Departments: present(s, SectionDepartments, s.Departments),
		Categories:  present(s, SectionCategories, s.Categories),
		Wards:       present(s, SectionWards, s.Wards),
		Workers:     present(s, SectionWorkers, s.Workers),
		Priorities:  present(s, SectionPriorities, s.Priorities),
	}
	if s.Has(SectionToday) {
		v.Today = s.Today
	}
	return v
}

// Snapshot converts the wire form back. Allowed sections missing from the
// document come back as empty lists.
func (v View) Snapshot() Snapshot {
	s := Snapshot{
		Language:    v.Language,
		Role:        v.Role,
		GeneratedAt: v.GeneratedAt,
		Sections:    v.Sections,
		Totals:      v.Totals,
	}
	s.Monthly = deref(s.Has(SectionMonthly), v.Monthly)
	s.Departments = deref(s.Has(SectionDepartments), v.Departments)
	s.Categories = deref(s.Has(SectionCategories), v.Categories)
	s.Wards = deref(s.Has(SectionWards), v.Wards)
	s.Workers = deref(s.Has(SectionWorkers), v.Workers)
	s.Priorities = deref(s.Has(SectionPriorities), v.Priorities)
	if s.Has(SectionToday) {
		s.Today = v.Today
	}
	return s
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.View())
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var v View
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = v.Snapshot()
	return nil
}

// TotalsOf prefers the backend headline counters and falls back to counting
// complaints when the backend reported nothing.
func TotalsOf(dashboard records.Dashboard, complaints []records.Complaint) Totals {
	t := Totals{
		TotalComplaints:   dashboard.TotalComplaints,
		Completed:         dashboard.CompletedComplaints,
		Pending:           dashboard.PendingComplaints,
		InProgress:        dashboard.InProgressComplaints,
		AvgResolutionDays: round1(dashboard.AvgResolutionDays),
	}

	if t.TotalComplaints == 0 && len(complaints) > 0 {
		t = Totals{TotalComplaints: len(complaints)}
		for _, c := range complaints {
			switch c.Status {
			case records.StatusCompleted:
				t.Completed++
			case records.StatusInProgress:
				t.InProgress++
			default:
				t.Pending++
			}
		}
	}

	t.ResolutionRate = percent(t.Completed, t.TotalComplaints)
	return t
}

// Build runs every breakdown the role is allowed to see.
func Build(in Input, opts Options) Snapshot {
	sections := SectionsFor(opts.Role)
	snap := Snapshot{
		Language:    opts.Translator.Lang(),
		Role:        opts.Role,
		GeneratedAt: opts.now(),
		Sections:    sections,
		Totals:      TotalsOf(in.Dashboard, in.Complaints),
	}

	for _, s := range sections {
		switch s {
		case SectionMonthly:
			snap.Monthly = MonthlyTrends(in.Complaints, opts)
		case SectionDepartments:
			snap.Departments = DepartmentPerformanceOf(in.Departments, opts)
		case SectionCategories:
			snap.Categories = CategoryDistribution(in.Dashboard.Categories, opts)
		case SectionWards:
			snap.Wards = WardStatistics(in.Wards, opts)
		case SectionWorkers:
			snap.Workers = WorkerProductivityOf(in.Workers, opts)
		case SectionPriorities:
			snap.Priorities = PriorityAnalysis(in.Complaints, opts)
		case SectionToday:
			today := Today(in.Complaints, in.Workers, in.WorkersKnown, in.Dashboard, opts)
			snap.Today = &today
		}
	}
	return snap
}

// Has reports whether the snapshot includes section s.
func (s Snapshot) Has(section Section) bool {
	for _, x := range s.Sections {
		if x == section {
			return true
		}
	}
	return false
}
