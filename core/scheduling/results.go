package scheduling

import (
	"sort"
	"time"

	"github.com/jsundin/tcrplan/core/model"
)

// valueEps filters numerically insignificant continuous values out of
// results.
const valueEps = 1e-6

// Results holds the realized decision values of a successful solve. A
// Results value is never mutated after extraction.
type Results struct {
	Status            string
	Objective         float64
	StartTimes        map[model.TaskInstance]int
	Blockings         map[model.LinkPeriod]float64
	CancelledProjects []string
	ResourceUsage     map[model.ResourcePeriod]float64
}

// Cancelled reports whether the project was cancelled.
func (r *Results) Cancelled(projectID string) bool {
	for _, id := range r.CancelledProjects {
		if id == projectID {
			return true
		}
	}
	return false
}

// CapacityBlockings returns the realized link blockings of the last solve,
// empty before a successful solve.
func (m *Model) CapacityBlockings() map[model.LinkPeriod]float64 {
	if m.results == nil {
		return map[model.LinkPeriod]float64{}
	}
	return m.results.Blockings
}

// AffectedTrafficDays returns the calendar dates (midnight UTC) whose
// periods carry both a blocking and traffic, sorted ascending. Empty before
// a successful solve.
func (m *Model) AffectedTrafficDays() []time.Time {
	if m.results == nil {
		return nil
	}
	seen := map[time.Time]struct{}{}
	for key := range m.results.Blockings {
		periodStart, ok := m.plan.PeriodStart(key.Period)
		if !ok {
			continue
		}
		periodEnd, _ := m.plan.PeriodEnd(key.Period)
		if !m.plan.InTrafficWindow(periodStart) && !m.plan.InTrafficWindow(periodEnd) {
			continue
		}
		y, mo, d := periodStart.Date()
		seen[time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)] = struct{}{}
	}
	days := make([]time.Time, 0, len(seen))
	for day := range seen {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// InstanceSchedule is one scheduled repetition of a task.
type InstanceSchedule struct {
	Index int
	Start time.Time
	End   time.Time
}

// TaskSchedule is the realized schedule of one task.
type TaskSchedule struct {
	ID         string
	Desc       string
	DurationHr float64
	Instances  []InstanceSchedule
}

// ProjectSchedule is the realized schedule of one non-cancelled project.
type ProjectSchedule struct {
	ID    string
	Desc  string
	Tasks []TaskSchedule
}

// Schedule returns the realized schedule of all non-cancelled projects in
// input order. Empty before a successful solve.
func (m *Model) Schedule() []ProjectSchedule {
	if m.results == nil {
		return nil
	}
	var out []ProjectSchedule
	for _, projectID := range m.projects.IDs() {
		if m.results.Cancelled(projectID) {
			continue
		}
		project, _ := m.projects.Get(projectID)
		ps := ProjectSchedule{ID: projectID, Desc: project.Desc}
		for _, task := range project.Tasks {
			ts := TaskSchedule{ID: task.ID, Desc: task.Desc, DurationHr: task.DurationHr}
			for i := 0; i < task.Count; i++ {
				key := model.TaskInstance{Project: projectID, Task: task.ID, Index: i}
				startPeriod, ok := m.results.StartTimes[key]
				if !ok {
					continue
				}
				startTime, ok := m.plan.PeriodStart(startPeriod)
				if !ok {
					continue
				}
				ts.Instances = append(ts.Instances, InstanceSchedule{
					Index: i,
					Start: startTime,
					End:   startTime.Add(time.Duration(task.DurationHr * float64(time.Hour))),
				})
			}
			ps.Tasks = append(ps.Tasks, ts)
		}
		out = append(out, ps)
	}
	return out
}
