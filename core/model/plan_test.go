package model

import (
	"testing"
	"time"
)

func mustPlan(t *testing.T, start, end string, periodLength float64) *Plan {
	t.Helper()
	s, err := ParsePlanTime(start)
	if err != nil {
		t.Fatalf("parse start: %v", err)
	}
	e, err := ParsePlanTime(end)
	if err != nil {
		t.Fatalf("parse end: %v", err)
	}
	p, err := NewPlan(s, e, periodLength)
	if err != nil {
		t.Fatalf("new plan: %v", err)
	}
	return p
}

func TestNewPlanPeriods(t *testing.T) {
	p := mustPlan(t, "2026-03-02 00:00:00", "2026-03-03 00:00:00", 8)
	if p.NumPeriods != 3 {
		t.Fatalf("expected 3 periods, got %d", p.NumPeriods)
	}
	// Partial trailing periods are dropped.
	p = mustPlan(t, "2026-03-02 00:00:00", "2026-03-02 23:00:00", 8)
	if p.NumPeriods != 2 {
		t.Fatalf("expected 2 periods, got %d", p.NumPeriods)
	}
}

func TestNewPlanInvalid(t *testing.T) {
	s, _ := ParsePlanTime("2026-03-02 00:00:00")
	if _, err := NewPlan(s, s.Add(time.Hour), 0); err == nil {
		t.Fatal("expected error for zero period length")
	}
	if _, err := NewPlan(s, s.Add(-time.Hour), 8); err == nil {
		t.Fatal("expected error for end before start")
	}
}

func TestPeriodIndex(t *testing.T) {
	p := mustPlan(t, "2026-03-02 00:00:00", "2026-03-03 00:00:00", 8)
	tm, _ := ParsePlanTime("2026-03-02 09:00:00")
	idx, ok := p.PeriodIndex(tm)
	if !ok || idx != 1 {
		t.Fatalf("expected period 1, got %d ok=%v", idx, ok)
	}
	before, _ := ParsePlanTime("2026-03-01 23:00:00")
	if _, ok := p.PeriodIndex(before); ok {
		t.Fatal("time before plan start should not resolve")
	}
	after, _ := ParsePlanTime("2026-03-03 01:00:00")
	if _, ok := p.PeriodIndex(after); ok {
		t.Fatal("time after plan end should not resolve")
	}
}

func TestPeriodStartEnd(t *testing.T) {
	p := mustPlan(t, "2026-03-02 00:00:00", "2026-03-03 00:00:00", 8)
	start, ok := p.PeriodStart(2)
	if !ok {
		t.Fatal("period 2 should exist")
	}
	want, _ := ParsePlanTime("2026-03-02 16:00:00")
	if !start.Equal(want) {
		t.Fatalf("period 2 start = %v, want %v", start, want)
	}
	end, _ := p.PeriodEnd(2)
	if !end.Equal(want.Add(8 * time.Hour)) {
		t.Fatalf("period 2 end = %v", end)
	}
	if _, ok := p.PeriodStart(3); ok {
		t.Fatal("period 3 should not exist")
	}
}

func TestTrafficWindow(t *testing.T) {
	p := mustPlan(t, "2026-03-02 00:00:00", "2026-03-04 00:00:00", 8)
	inside, _ := ParsePlanTime("2026-03-03 12:00:00")
	if !p.InTrafficWindow(inside) {
		t.Fatal("default traffic window should cover the whole horizon")
	}
	ws, _ := ParsePlanTime("2026-03-02 06:00:00")
	we, _ := ParsePlanTime("2026-03-02 22:00:00")
	p.SetTrafficWindow(ws, we)
	if !p.InTrafficWindow(ws) || !p.InTrafficWindow(we) {
		t.Fatal("window boundaries are inclusive")
	}
	if p.InTrafficWindow(inside) {
		t.Fatal("time outside the window should be rejected")
	}
}
