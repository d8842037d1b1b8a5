package app

import (
	"context"
	"errors"
	"testing"

	"github.com/jsundin/tcrplan/core/logger"
	coremetrics "github.com/jsundin/tcrplan/core/metrics"
	"github.com/jsundin/tcrplan/core/mip"
	"github.com/jsundin/tcrplan/core/solvelog"
)

type stubSolver struct {
	sol mip.Solution
	err error
}

func (s stubSolver) Solve(_ *mip.Model, _ mip.Options) (mip.Solution, error) {
	return s.sol, s.err
}

type captureSink struct {
	events     []coremetrics.SolveEvent
	objectives map[string]float64
}

func (c *captureSink) RecordSolve(ev coremetrics.SolveEvent) error {
	c.events = append(c.events, ev)
	return nil
}

func (c *captureSink) RecordObjective(model string, value float64) error {
	if c.objectives == nil {
		c.objectives = map[string]float64{}
	}
	c.objectives[model] = value
	return nil
}

type captureStore struct {
	solvelog.NopStore
	records []solvelog.Record
}

func (c *captureStore) Append(_ context.Context, rec solvelog.Record) error {
	c.records = append(c.records, rec)
	return nil
}

func TestRecordingSolverReportsSuccess(t *testing.T) {
	inner := stubSolver{sol: mip.Solution{Status: mip.StatusOptimal, Objective: 7.5}}
	sink := &captureSink{}
	store := &captureStore{}
	r := newRecordingSolver(inner, sink, store, logger.NopLogger{})
	r.SetMode("integrated")

	m := mip.NewModel("ProjectScheduling")
	sol, err := r.Solve(m, mip.Options{})
	if err != nil || sol.Objective != 7.5 {
		t.Fatalf("solve: %v %+v", err, sol)
	}
	if len(sink.events) != 1 {
		t.Fatalf("events = %v", sink.events)
	}
	ev := sink.events[0]
	if ev.Model != "ProjectScheduling" || ev.Mode != "integrated" || ev.Status != "optimal" {
		t.Fatalf("event = %+v", ev)
	}
	if sink.objectives["ProjectScheduling"] != 7.5 {
		t.Fatalf("objectives = %v", sink.objectives)
	}
	if len(store.records) != 1 || store.records[0].Status != "optimal" {
		t.Fatalf("records = %+v", store.records)
	}
}

func TestRecordingSolverReportsError(t *testing.T) {
	inner := stubSolver{err: errors.New("solver crashed")}
	sink := &captureSink{}
	store := &captureStore{}
	r := newRecordingSolver(inner, sink, store, logger.NopLogger{})
	r.SetMode("daily")

	if _, err := r.Solve(mip.NewModel("TrafficFlow"), mip.Options{}); err == nil {
		t.Fatal("expected solver error to propagate")
	}
	if len(sink.events) != 1 || sink.events[0].Status != "error" {
		t.Fatalf("events = %+v", sink.events)
	}
	// A failed solve never updates the objective gauge.
	if len(sink.objectives) != 0 {
		t.Fatalf("objectives = %v", sink.objectives)
	}
	if len(store.records) != 1 || store.records[0].Status != "error" {
		t.Fatalf("records = %+v", store.records)
	}
}
