// Package metrics defines the observability sink the planner reports solver
// activity to. Implementations live under infra.
package metrics

import "time"

// SolveEvent describes one completed solver invocation.
type SolveEvent struct {
	Model    string // "scheduling" or "traffic"
	Mode     string // solve mode that triggered it
	Status   string
	Duration time.Duration
}

// Sink records solver activity for observability purposes.
type Sink interface {
	RecordSolve(ev SolveEvent) error
	RecordObjective(model string, value float64) error
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) RecordSolve(SolveEvent) error { return nil }

func (NopSink) RecordObjective(string, float64) error { return nil }
