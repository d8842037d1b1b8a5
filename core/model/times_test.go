package model

import (
	"testing"
	"time"
)

func TestParseTimeTokenAbsolute(t *testing.T) {
	got, err := ParseTimeToken("2026-03-02 06:30:00", false)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := time.Date(2026, 3, 2, 6, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseWeekToken(t *testing.T) {
	// Week 10 of 2024 starts Monday March 4.
	got, err := ParseTimeToken("v2410", false)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	// End of week is always first day + 6.
	got, err = ParseTimeToken("v2410", true)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !got.Equal(want.AddDate(0, 0, 6)) {
		t.Fatalf("end of week = %v, want %v", got, want.AddDate(0, 0, 6))
	}
}

func TestParseWeekTokenYearBoundary(t *testing.T) {
	// Week 1 of 2026 starts Monday December 29, 2025.
	got, err := ParseTimeToken("v2601", false)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseWeekTokenInvalid(t *testing.T) {
	for _, tok := range []string{"v24", "v24100", "vab10", "v2400", "v2454"} {
		if _, err := ParseTimeToken(tok, false); err == nil {
			t.Fatalf("expected error for %q", tok)
		}
	}
}
