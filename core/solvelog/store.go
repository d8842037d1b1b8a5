// Package solvelog persists one record per solver invocation so runs can be
// audited and compared after the fact.
package solvelog

import (
	"context"
	"time"
)

// Record captures one model solve and its outcome.
type Record struct {
	Timestamp  time.Time     `json:"timestamp"`
	Model      string        `json:"model"` // "scheduling" or "traffic"
	Mode       string        `json:"mode"`  // solve mode that triggered it
	Status     string        `json:"status"`
	Objective  float64       `json:"objective"`
	Duration   time.Duration `json:"duration"`
	Iterations int           `json:"iterations,omitempty"`
}

// Query defines filters for retrieving records.
type Query struct {
	Start time.Time
	End   time.Time
	Model string
	Mode  string
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// NopStore discards every record.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error { return nil }

func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }

func (NopStore) Close() error { return nil }
