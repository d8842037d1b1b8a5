package solvelog

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func sampleRecords(base time.Time) []Record {
	return []Record{
		{Timestamp: base, Model: "scheduling", Mode: "integrated", Status: "optimal", Objective: 12.5, Duration: time.Second},
		{Timestamp: base.Add(time.Minute), Model: "traffic", Mode: "integrated", Status: "optimal", Objective: 40, Duration: 2 * time.Second, Iterations: 1},
		{Timestamp: base.Add(2 * time.Minute), Model: "traffic", Mode: "daily", Status: "infeasible", Duration: time.Second},
	}
}

func runStoreTests(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	for _, rec := range sampleRecords(base) {
		if err := s.Append(ctx, rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	recs, err := s.Query(ctx, Query{})
	if err != nil || len(recs) != 3 {
		t.Fatalf("query all: %v len=%d", err, len(recs))
	}
	if recs[0].Objective != 12.5 || recs[1].Iterations != 1 {
		t.Fatalf("records = %+v", recs)
	}

	recs, err = s.Query(ctx, Query{Model: "traffic"})
	if err != nil || len(recs) != 2 {
		t.Fatalf("query model: %v len=%d", err, len(recs))
	}

	recs, err = s.Query(ctx, Query{Model: "traffic", Mode: "daily"})
	if err != nil || len(recs) != 1 || recs[0].Status != "infeasible" {
		t.Fatalf("query model+mode: %v %+v", err, recs)
	}

	recs, err = s.Query(ctx, Query{Start: base.Add(30 * time.Second), End: base.Add(90 * time.Second)})
	if err != nil || len(recs) != 1 || recs[0].Model != "traffic" {
		t.Fatalf("query window: %v %+v", err, recs)
	}
}

func TestJSONLStore(t *testing.T) {
	s, err := NewJSONLStore(filepath.Join(t.TempDir(), "solves.jsonl"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = s.Close() }()
	runStoreTests(t, s)
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "solves.db"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = s.Close() }()
	runStoreTests(t, s)
}

func TestNopStore(t *testing.T) {
	var s NopStore
	if err := s.Append(context.Background(), Record{Model: "scheduling"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	recs, err := s.Query(context.Background(), Query{})
	if err != nil || recs != nil {
		t.Fatalf("query: %v %v", err, recs)
	}
}
