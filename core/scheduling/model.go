// Package scheduling builds and solves the closure-scheduling MIP: when each
// maintenance task instance starts, which projects are cancelled, and how
// much link capacity and shared resources the chosen schedule withdraws per
// period.
package scheduling

import (
	"fmt"
	"math"
	"sort"

	"github.com/jsundin/tcrplan/core/logger"
	"github.com/jsundin/tcrplan/core/mip"
	"github.com/jsundin/tcrplan/core/model"
)

// Model is the project scheduling optimization model.
type Model struct {
	network   *model.Network
	projects  *model.Projects
	resources *model.Resources
	params    *Params
	plan      *model.Plan

	// trafficUsage weights link blockings in the objective by how much
	// traffic actually uses the link in the period. Empty means a flat
	// blocking cost.
	trafficUsage map[model.LinkPeriod]float64
	// fixedBlockings are capacity withdrawals decided outside this model,
	// enforced as hard lower bounds.
	fixedBlockings map[model.LinkPeriod]float64

	solver mip.Solver
	log    logger.Logger

	built    *mip.Model
	start    map[model.TaskInstance]mip.Var
	cancel   map[string]mip.Var
	blocking map[model.LinkPeriod]mip.Var
	resource map[model.ResourcePeriod]mip.Var

	results *Results
}

// New creates a scheduling model over the given entities. The entities are
// treated as read-only from here on.
func New(network *model.Network, projects *model.Projects, resources *model.Resources,
	params *Params, plan *model.Plan, solver mip.Solver, log logger.Logger) *Model {
	if params == nil {
		params = NewParams()
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Model{
		network:        network,
		projects:       projects,
		resources:      resources,
		params:         params,
		plan:           plan,
		solver:         solver,
		log:            log,
		fixedBlockings: map[model.LinkPeriod]float64{},
	}
}

// SetTrafficUsage replaces the traffic-weighted blocking costs used by the
// next Build.
func (m *Model) SetTrafficUsage(usage map[model.LinkPeriod]float64) {
	m.trafficUsage = usage
}

// AddFixedBlockings merges externally decided capacity blockings into the
// model's hard lower bounds.
func (m *Model) AddFixedBlockings(blockings map[model.LinkPeriod]float64) {
	for k, v := range blockings {
		m.fixedBlockings[k] = v
	}
}

// MIP returns the last built optimization model, nil before Build.
func (m *Model) MIP() *mip.Model { return m.built }

// Build assembles variables, constraints and the objective. It must be
// called before Solve and again after any input change.
func (m *Model) Build() error {
	if m.plan == nil || m.plan.NumPeriods < 0 {
		return fmt.Errorf("scheduling model requires a valid plan")
	}
	if m.network == nil || m.projects == nil || m.resources == nil {
		return fmt.Errorf("scheduling model requires network, projects and resources")
	}

	b := mip.NewModel("ProjectScheduling")
	numPeriods := m.plan.NumPeriods

	m.start = map[model.TaskInstance]mip.Var{}
	m.cancel = map[string]mip.Var{}
	m.blocking = map[model.LinkPeriod]mip.Var{}
	m.resource = map[model.ResourcePeriod]mip.Var{}

	// Variables. Iteration orders are fixed so variable indices are stable
	// across builds.
	for _, projectID := range m.projects.IDs() {
		project, _ := m.projects.Get(projectID)
		m.cancel[projectID] = b.AddBinary(fmt.Sprintf("cancel_%s", projectID))
		for _, task := range project.Tasks {
			for i := 0; i < task.Count; i++ {
				key := model.TaskInstance{Project: projectID, Task: task.ID, Index: i}
				m.start[key] = b.AddInteger(0, float64(numPeriods-1), fmt.Sprintf("start_%s", key))
			}
		}
	}
	for _, linkID := range m.sortedLinkIDs() {
		for period := 0; period < numPeriods; period++ {
			key := model.LinkPeriod{Link: linkID, Period: period}
			m.blocking[key] = b.AddContinuous(0, 1, fmt.Sprintf("blocking_%s", key))
		}
	}
	for _, resourceID := range m.resources.IDs() {
		for period := 0; period < numPeriods; period++ {
			key := model.ResourcePeriod{Resource: resourceID, Period: period}
			m.resource[key] = b.AddContinuous(0, math.Inf(1), fmt.Sprintf("resource_%s", key))
		}
	}

	if err := m.addTimeWindows(b); err != nil {
		return err
	}
	m.addSequencing(b)
	m.addOccupancy(b)
	m.addFixedBlockingBounds(b)
	m.addResourceCapacity(b)
	m.setObjective(b)

	m.built = b
	return nil
}

func (m *Model) sortedLinkIDs() []string {
	ids := make([]string, 0, len(m.network.Links))
	for id := range m.network.Links {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// timeWindow resolves a task's effective window to period indices. A bound
// whose timestamp falls outside the plan horizon yields no constraint. A
// missing latest end defaults to the final period, so every instance must
// finish within the horizon.
func (m *Model) timeWindow(project *model.Project, task *model.Task) (earliest int, hasEarliest bool, latest int, hasLatest bool, err error) {
	earliestTok := task.EarliestStart
	if earliestTok == "" {
		earliestTok = project.EarliestStart
	}
	latestTok := task.LatestEnd
	if latestTok == "" {
		latestTok = project.LatestEnd
	}
	if earliestTok != "" {
		t, perr := model.ParseTimeToken(earliestTok, false)
		if perr != nil {
			return 0, false, 0, false, fmt.Errorf("task %s/%s earliest start: %w", project.ID, task.ID, perr)
		}
		earliest, hasEarliest = m.plan.PeriodIndex(t)
	}
	if latestTok == "" {
		latest, hasLatest = m.plan.NumPeriods-1, true
	} else {
		t, perr := model.ParseTimeToken(latestTok, true)
		if perr != nil {
			return 0, false, 0, false, fmt.Errorf("task %s/%s latest end: %w", project.ID, task.ID, perr)
		}
		latest, hasLatest = m.plan.PeriodIndex(t)
	}
	return earliest, hasEarliest, latest, hasLatest, nil
}

func (m *Model) addTimeWindows(b *mip.Model) error {
	n := float64(m.plan.NumPeriods)
	for _, projectID := range m.projects.IDs() {
		project, _ := m.projects.Get(projectID)
		cancel := m.cancel[projectID]
		for _, task := range project.Tasks {
			durPeriods := m.durationPeriods(task)
			earliest, hasEarliest, latest, hasLatest, err := m.timeWindow(project, task)
			if err != nil {
				return err
			}
			for i := 0; i < task.Count; i++ {
				key := model.TaskInstance{Project: projectID, Task: task.ID, Index: i}
				start := m.start[key]
				// Cancellation relaxes both bounds.
				if hasEarliest {
					b.AddConstraint([]mip.Term{
						{Var: start, Coef: 1},
						{Var: cancel, Coef: float64(earliest)},
					}, mip.GreaterEq, float64(earliest), fmt.Sprintf("earliest_%s", key))
				}
				if hasLatest {
					maxStart := latest - durPeriods + 1
					if maxStart >= 0 {
						b.AddConstraint([]mip.Term{
							{Var: start, Coef: 1},
							{Var: cancel, Coef: -n},
						}, mip.LessEq, float64(maxStart), fmt.Sprintf("latest_%s", key))
					}
				}
			}
		}
	}
	return nil
}

func (m *Model) addSequencing(b *mip.Model) {
	n := float64(m.plan.NumPeriods)
	for _, projectID := range m.projects.IDs() {
		project, _ := m.projects.Get(projectID)
		cancel := m.cancel[projectID]

		// Rest between repetitions of the same task.
		for _, task := range project.Tasks {
			durPeriods := m.durationPeriods(task)
			minRest := int(task.MinRestBetween / m.plan.PeriodLength)
			for i := 0; i < task.Count-1; i++ {
				prev := m.start[model.TaskInstance{Project: projectID, Task: task.ID, Index: i}]
				next := m.start[model.TaskInstance{Project: projectID, Task: task.ID, Index: i + 1}]
				b.AddConstraint([]mip.Term{
					{Var: next, Coef: 1},
					{Var: prev, Coef: -1},
					{Var: cancel, Coef: n},
				}, mip.GreaterEq, float64(durPeriods+minRest),
					fmt.Sprintf("min_rest_between_%s_%s_%d", projectID, task.ID, i))
				if task.MaxRestBetween != nil {
					maxRest := int(*task.MaxRestBetween / m.plan.PeriodLength)
					b.AddConstraint([]mip.Term{
						{Var: next, Coef: 1},
						{Var: prev, Coef: -1},
						{Var: cancel, Coef: -n},
					}, mip.LessEq, float64(durPeriods+maxRest),
						fmt.Sprintf("max_rest_between_%s_%s_%d", projectID, task.ID, i))
				}
			}
		}

		// Rest between the last instance of one task and the first of the
		// next.
		for t := 0; t < len(project.Tasks)-1; t++ {
			task1 := project.Tasks[t]
			task2 := project.Tasks[t+1]
			durPeriods := m.durationPeriods(task1)
			minRest := int(task1.MinRestAfter / m.plan.PeriodLength)
			last := m.start[model.TaskInstance{Project: projectID, Task: task1.ID, Index: task1.Count - 1}]
			first := m.start[model.TaskInstance{Project: projectID, Task: task2.ID, Index: 0}]
			b.AddConstraint([]mip.Term{
				{Var: first, Coef: 1},
				{Var: last, Coef: -1},
				{Var: cancel, Coef: n},
			}, mip.GreaterEq, float64(durPeriods+minRest),
				fmt.Sprintf("min_rest_after_%s_%s", projectID, task1.ID))
			if task1.MaxRestAfter != nil {
				maxRest := int(*task1.MaxRestAfter / m.plan.PeriodLength)
				b.AddConstraint([]mip.Term{
					{Var: first, Coef: 1},
					{Var: last, Coef: -1},
					{Var: cancel, Coef: -n},
				}, mip.LessEq, float64(durPeriods+maxRest),
					fmt.Sprintf("max_rest_after_%s_%s", projectID, task1.ID))
			}
		}
	}
}

// addOccupancy links start variables to the capacity-consuming blocking and
// resource variables through the big-M auxiliary encoding: for each
// (period, offset) pair an auxiliary binary is forced to 0 when
// start+offset <= period, which in turn forces the consuming variable up to
// the requested level unless the project is cancelled.
func (m *Model) addOccupancy(b *mip.Model) {
	n := float64(m.plan.NumPeriods)
	for _, projectID := range m.projects.IDs() {
		project, _ := m.projects.Get(projectID)
		cancel := m.cancel[projectID]
		for _, task := range project.Tasks {
			durPeriods := m.durationPeriods(task)
			for i := 0; i < task.Count; i++ {
				key := model.TaskInstance{Project: projectID, Task: task.ID, Index: i}
				start := m.start[key]

				for _, blk := range task.Blockings {
					if _, ok := m.network.Links[blk.Link]; !ok {
						m.log.Warnf("task %s blocks unknown link %s", key, blk.Link)
						continue
					}
					amount := blk.Amount.Fraction
					for offset := 0; offset < durPeriods; offset++ {
						for period := 0; period < m.plan.NumPeriods; period++ {
							tag := fmt.Sprintf("%s_%s_%d_%d", key, blk.Link, period, offset)
							aux := b.AddBinary("aux_" + tag)
							blocking := m.blocking[model.LinkPeriod{Link: blk.Link, Period: period}]
							// blocking >= amount*(1-aux)*(1-cancel), linearized.
							b.AddConstraint([]mip.Term{
								{Var: blocking, Coef: 1},
								{Var: aux, Coef: amount},
								{Var: cancel, Coef: amount},
							}, mip.GreaterEq, amount, "blocking_"+tag)
							m.addAuxLink(b, start, aux, period, offset, n, tag)
						}
					}
				}

				for _, req := range task.Resources {
					for offset := 0; offset < durPeriods; offset++ {
						for period := 0; period < m.plan.NumPeriods; period++ {
							tag := fmt.Sprintf("%s_%s_%d_%d", key, req.Resource, period, offset)
							aux := b.AddBinary("res_aux_" + tag)
							usage := m.resource[model.ResourcePeriod{Resource: req.Resource, Period: period}]
							b.AddConstraint([]mip.Term{
								{Var: usage, Coef: 1},
								{Var: aux, Coef: req.Amount},
								{Var: cancel, Coef: req.Amount},
							}, mip.GreaterEq, req.Amount, "resource_"+tag)
							m.addAuxLink(b, start, aux, period, offset, n, "res_"+tag)
						}
					}
				}
			}
		}
	}
}

// addAuxLink ties an auxiliary occupancy binary to a start variable:
// start+offset <= period + N*aux and start+offset >= period+1 - N*(1-aux).
func (m *Model) addAuxLink(b *mip.Model, start, aux mip.Var, period, offset int, n float64, tag string) {
	b.AddConstraint([]mip.Term{
		{Var: start, Coef: 1},
		{Var: aux, Coef: -n},
	}, mip.LessEq, float64(period-offset), "aux1_"+tag)
	b.AddConstraint([]mip.Term{
		{Var: start, Coef: 1},
		{Var: aux, Coef: -n},
	}, mip.GreaterEq, float64(period+1-offset)-n, "aux2_"+tag)
}

func (m *Model) addFixedBlockingBounds(b *mip.Model) {
	keys := make([]model.LinkPeriod, 0, len(m.fixedBlockings))
	for k := range m.fixedBlockings {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Link != keys[j].Link {
			return keys[i].Link < keys[j].Link
		}
		return keys[i].Period < keys[j].Period
	})
	for _, k := range keys {
		v, ok := m.blocking[k]
		if !ok {
			continue
		}
		b.AddConstraint([]mip.Term{{Var: v, Coef: 1}}, mip.GreaterEq, m.fixedBlockings[k],
			fmt.Sprintf("fixed_blocking_%s", k))
	}
}

func (m *Model) addResourceCapacity(b *mip.Model) {
	for _, resourceID := range m.resources.IDs() {
		capacity := m.resources.Capacity(resourceID)
		for period := 0; period < m.plan.NumPeriods; period++ {
			key := model.ResourcePeriod{Resource: resourceID, Period: period}
			b.AddConstraint([]mip.Term{{Var: m.resource[key], Coef: 1}}, mip.LessEq, capacity,
				fmt.Sprintf("capacity_%s", key))
		}
	}
}

func (m *Model) setObjective(b *mip.Model) {
	var obj []mip.Term
	for _, projectID := range m.projects.IDs() {
		obj = append(obj, mip.Term{Var: m.cancel[projectID], Coef: m.params.CancellationCostFor(projectID)})
	}
	for _, linkID := range m.sortedLinkIDs() {
		for period := 0; period < m.plan.NumPeriods; period++ {
			key := model.LinkPeriod{Link: linkID, Period: period}
			cost := m.params.BlockingCost
			if len(m.trafficUsage) > 0 {
				cost = m.trafficUsage[key] * m.params.BlockingCost
			}
			obj = append(obj, mip.Term{Var: m.blocking[key], Coef: cost})
		}
	}
	for _, resourceID := range m.resources.IDs() {
		cost := m.params.ResourceCostFor(resourceID)
		for period := 0; period < m.plan.NumPeriods; period++ {
			key := model.ResourcePeriod{Resource: resourceID, Period: period}
			obj = append(obj, mip.Term{Var: m.resource[key], Coef: cost})
		}
	}
	b.SetObjective(obj)
}

func (m *Model) durationPeriods(task *model.Task) int {
	return int(task.DurationHr / m.plan.PeriodLength)
}

// Solve hands the built model to the solver and extracts results. It returns
// false, with the status logged, when the model is unbuilt, the solver
// fails, or the terminal status carries no solution.
func (m *Model) Solve(opts mip.Options) bool {
	if m.built == nil {
		m.log.Errorf("scheduling model not built, call Build first")
		return false
	}
	sol, err := m.solver.Solve(m.built, opts)
	if err != nil {
		m.log.Errorf("scheduling solve failed: %v", err)
		return false
	}
	if !sol.Status.Solved() {
		m.log.Errorf("scheduling optimization failed with status: %s", sol.Status)
		return false
	}
	m.results = m.extractResults(sol)
	m.log.Infof("scheduling solved: status=%s objective=%.2f cancelled=%d",
		sol.Status, sol.Objective, len(m.results.CancelledProjects))
	return true
}

func (m *Model) extractResults(sol mip.Solution) *Results {
	r := &Results{
		Status:        sol.Status.String(),
		Objective:     sol.Objective,
		StartTimes:    map[model.TaskInstance]int{},
		Blockings:     map[model.LinkPeriod]float64{},
		ResourceUsage: map[model.ResourcePeriod]float64{},
	}
	for key, v := range m.start {
		r.StartTimes[key] = int(math.Round(sol.Value(v)))
	}
	for key, v := range m.blocking {
		if val := sol.Value(v); val > valueEps {
			r.Blockings[key] = val
		}
	}
	for projectID, v := range m.cancel {
		if sol.Value(v) > 0.5 {
			r.CancelledProjects = append(r.CancelledProjects, projectID)
		}
	}
	sort.Strings(r.CancelledProjects)
	for key, v := range m.resource {
		if val := sol.Value(v); val > valueEps {
			r.ResourceUsage[key] = val
		}
	}
	return r
}

// Results returns the results of the last successful solve, nil otherwise.
func (m *Model) Results() *Results { return m.results }
