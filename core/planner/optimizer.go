package planner

import (
	"fmt"
	"time"

	"github.com/jsundin/tcrplan/core/logger"
	"github.com/jsundin/tcrplan/core/mip"
	"github.com/jsundin/tcrplan/core/model"
	"github.com/jsundin/tcrplan/core/scheduling"
	"github.com/jsundin/tcrplan/core/traffic"
)

// Results aggregates the outcomes of the last solve mode that ran.
type Results struct {
	Sched   *scheduling.Results
	Traffic *traffic.Results
	// Daily holds one traffic result per affected calendar day (midnight
	// UTC), populated by SolveDaily.
	Daily map[time.Time]*traffic.Results
}

// Optimizer drives the two models over a shared problem.
type Optimizer struct {
	problem *Problem
	solver  mip.Solver
	log     logger.Logger

	sched   *scheduling.Model
	traffic *traffic.Model

	results Results
}

// New normalizes the problem and constructs both models over it.
func New(problem *Problem, solver mip.Solver, log logger.Logger) (*Optimizer, error) {
	if log == nil {
		log = logger.NopLogger{}
	}
	if err := problem.Validate(); err != nil {
		return nil, fmt.Errorf("invalid problem: %w", err)
	}
	problem.Normalize()
	o := &Optimizer{
		problem: problem,
		solver:  solver,
		log:     log,
		results: Results{Daily: map[time.Time]*traffic.Results{}},
	}
	o.sched = scheduling.New(problem.Network, problem.Projects, problem.Resources,
		problem.SchedParams, problem.Plan, solver, log)
	o.traffic = o.newTrafficModel()
	return o, nil
}

func (o *Optimizer) newTrafficModel() *traffic.Model {
	return traffic.New(o.problem.Network, o.problem.Demand, o.problem.Routes,
		o.problem.TrafficParams, o.problem.Plan, o.solver, o.log)
}

// SolveScheduling builds and solves the scheduling model alone, optionally
// seeded with externally fixed blockings.
func (o *Optimizer) SolveScheduling(fixedBlockings map[model.LinkPeriod]float64, opts mip.Options) bool {
	if fixedBlockings != nil {
		o.sched.AddFixedBlockings(fixedBlockings)
	}
	if err := o.sched.Build(); err != nil {
		o.log.Errorf("scheduling build failed: %v", err)
		return false
	}
	if !o.sched.Solve(opts) {
		return false
	}
	o.results.Sched = o.sched.Results()
	return true
}

// SolveTraffic builds and solves the traffic model alone, optionally with
// externally supplied capacity constraints.
func (o *Optimizer) SolveTraffic(capacityConstraints map[model.LinkPeriod]float64, opts mip.Options) bool {
	if err := o.traffic.Build(capacityConstraints); err != nil {
		o.log.Errorf("traffic build failed: %v", err)
		return false
	}
	if !o.traffic.Solve(opts) {
		return false
	}
	o.results.Traffic = o.traffic.Results()
	return true
}

// SolveIntegrated runs the fixed-point iteration between the two models: an
// unconstrained traffic solve seeds the scheduling objective with link
// utilization, then scheduling and constrained traffic alternate. The loop
// declares convergence purely by reaching maxIterations; successive
// utilization vectors are never compared.
func (o *Optimizer) SolveIntegrated(maxIterations int, opts mip.Options) bool {
	o.log.Infof("solving undisturbed traffic flow model")
	if !o.SolveTraffic(nil, opts) {
		o.log.Errorf("failed to solve undisturbed traffic flow model")
		return false
	}
	o.sched.SetTrafficUsage(o.traffic.CapacityUtilization())

	iteration := 0
	converged := false
	for !converged && iteration < maxIterations {
		iteration++
		o.log.Infof("iteration %d", iteration)

		if !o.SolveScheduling(nil, opts) {
			o.log.Errorf("failed to solve scheduling model")
			return false
		}
		if !o.SolveTraffic(o.sched.CapacityBlockings(), opts) {
			o.log.Errorf("failed to solve traffic flow model with capacity constraints")
			return false
		}
		if iteration >= maxIterations {
			converged = true
			o.log.Infof("reached maximum iterations")
			continue
		}
		o.sched.SetTrafficUsage(o.traffic.CapacityUtilization())
	}
	o.log.Infof("integrated solution completed in %d iterations", iteration)
	return true
}

// SolveDaily solves scheduling once, then one independent traffic model per
// affected day, restricted to the blockings whose period starts within that
// calendar day. Days without blockings are skipped. It returns true only if
// at least one daily result was produced.
func (o *Optimizer) SolveDaily(opts mip.Options) bool {
	o.log.Infof("solving scheduling model")
	if !o.SolveScheduling(nil, opts) {
		o.log.Errorf("failed to solve scheduling model")
		return false
	}
	blockings := o.sched.CapacityBlockings()

	daily := map[time.Time]*traffic.Results{}
	for _, day := range o.sched.AffectedTrafficDays() {
		dayBlockings := o.blockingsForDay(blockings, day)
		if len(dayBlockings) == 0 {
			continue
		}
		o.log.Infof("solving traffic flow model for %s", day.Format("2006-01-02"))
		dayModel := o.newTrafficModel()
		if err := dayModel.Build(dayBlockings); err != nil {
			o.log.Errorf("traffic build failed for %s: %v", day.Format("2006-01-02"), err)
			continue
		}
		if !dayModel.Solve(opts) {
			o.log.Errorf("failed to solve traffic flow model for %s", day.Format("2006-01-02"))
			continue
		}
		daily[day] = dayModel.Results()
	}
	o.results.Daily = daily
	return len(daily) > 0
}

func (o *Optimizer) blockingsForDay(blockings map[model.LinkPeriod]float64, day time.Time) map[model.LinkPeriod]float64 {
	dayEnd := day.AddDate(0, 0, 1)
	out := map[model.LinkPeriod]float64{}
	for key, amount := range blockings {
		periodStart, ok := o.problem.Plan.PeriodStart(key.Period)
		if !ok {
			continue
		}
		if !periodStart.Before(day) && periodStart.Before(dayEnd) {
			out[key] = amount
		}
	}
	return out
}

// Results returns the aggregated results of the solves run so far.
func (o *Optimizer) Results() Results { return o.results }

// Schedule returns the realized project schedule of the last scheduling
// solve.
func (o *Optimizer) Schedule() []scheduling.ProjectSchedule { return o.sched.Schedule() }

// CapacityBlockings returns the link blockings of the last scheduling solve.
func (o *Optimizer) CapacityBlockings() map[model.LinkPeriod]float64 {
	return o.sched.CapacityBlockings()
}

// AffectedDays returns the affected traffic days of the last scheduling
// solve.
func (o *Optimizer) AffectedDays() []time.Time { return o.sched.AffectedTrafficDays() }

// TrafficImpact returns the impact summary of the last shared traffic solve.
func (o *Optimizer) TrafficImpact() traffic.ImpactSummary { return o.traffic.Impact() }

// DailyTrafficImpact computes the impact summary for one daily result.
func (o *Optimizer) DailyTrafficImpact(day time.Time) traffic.ImpactSummary {
	r, ok := o.results.Daily[day]
	if !ok {
		return traffic.ImpactSummary{}
	}
	m := o.newTrafficModel()
	m.SetResults(r)
	return m.Impact()
}

// TrafficUtilization returns the link utilization of the last shared traffic
// solve.
func (o *Optimizer) TrafficUtilization() map[model.LinkPeriod]float64 {
	return o.traffic.CapacityUtilization()
}
