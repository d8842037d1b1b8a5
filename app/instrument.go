package app

import (
	"context"
	"time"

	"github.com/jsundin/tcrplan/core/logger"
	coremetrics "github.com/jsundin/tcrplan/core/metrics"
	"github.com/jsundin/tcrplan/core/mip"
	"github.com/jsundin/tcrplan/core/solvelog"
)

// recordingSolver wraps a solver and reports every invocation to the metrics
// sink and the solve log.
type recordingSolver struct {
	inner mip.Solver
	sink  coremetrics.Sink
	store solvelog.Store
	log   logger.Logger

	mode string
}

func newRecordingSolver(inner mip.Solver, sink coremetrics.Sink, store solvelog.Store, log logger.Logger) *recordingSolver {
	return &recordingSolver{inner: inner, sink: sink, store: store, log: log}
}

// SetMode labels subsequent solves with the planner mode that triggered them.
func (r *recordingSolver) SetMode(mode string) { r.mode = mode }

func (r *recordingSolver) Solve(m *mip.Model, opts mip.Options) (mip.Solution, error) {
	started := time.Now()
	sol, err := r.inner.Solve(m, opts)
	elapsed := time.Since(started)

	status := sol.Status.String()
	if err != nil {
		status = "error"
	}
	ev := coremetrics.SolveEvent{
		Model:    m.Name(),
		Mode:     r.mode,
		Status:   status,
		Duration: elapsed,
	}
	if serr := r.sink.RecordSolve(ev); serr != nil {
		r.log.Warnf("record solve metric: %v", serr)
	}
	if err == nil && sol.Status.Solved() {
		if serr := r.sink.RecordObjective(m.Name(), sol.Objective); serr != nil {
			r.log.Warnf("record objective metric: %v", serr)
		}
	}
	rec := solvelog.Record{
		Timestamp: started,
		Model:     m.Name(),
		Mode:      r.mode,
		Status:    status,
		Objective: sol.Objective,
		Duration:  elapsed,
	}
	if serr := r.store.Append(context.Background(), rec); serr != nil {
		r.log.Warnf("append solve log: %v", serr)
	}
	return sol, err
}
