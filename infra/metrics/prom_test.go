package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/jsundin/tcrplan/core/metrics"
)

func TestPromSink_RecordSolve(t *testing.T) {
	reg := prometheus.NewRegistry()
	sinkIf, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	sink, ok := sinkIf.(*PromSink)
	if !ok {
		t.Fatalf("expected PromSink")
	}
	if err := sink.RecordSolve(coremetrics.SolveEvent{
		Model:    "scheduling",
		Mode:     "integrated",
		Status:   "optimal",
		Duration: 150 * time.Millisecond,
	}); err != nil {
		t.Fatalf("record error: %v", err)
	}

	expected := `
# HELP tcrplan_solves_total Total number of solver invocations
# TYPE tcrplan_solves_total counter
tcrplan_solves_total{mode="integrated",model="scheduling",status="optimal"} 1
`
	if err := testutil.CollectAndCompare(sink.solves, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}

	if c := testutil.CollectAndCount(sink.duration); c == 0 {
		t.Errorf("duration not recorded")
	}

	if err := sink.RecordObjective("scheduling", 42.5); err != nil {
		t.Fatalf("objective error: %v", err)
	}
	expectedObjective := `
# HELP tcrplan_objective_value Objective value of the last successful solve
# TYPE tcrplan_objective_value gauge
tcrplan_objective_value{model="scheduling"} 42.5
`
	if err := testutil.CollectAndCompare(sink.objective, strings.NewReader(expectedObjective)); err != nil {
		t.Errorf("unexpected objective metric: %v", err)
	}
}

func TestPromSink_ReregisterReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatalf("first sink: %v", err)
	}
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatalf("second sink: %v", err)
	}
}
