package mip

import "time"

// Status is the terminal state reported by a solver.
type Status int

const (
	// StatusNoSolution means the solver stopped without an incumbent
	// (undefined result, or the limit was exhausted before any solution).
	StatusNoSolution Status = iota
	// StatusInfeasible means the model was proven infeasible.
	StatusInfeasible
	// StatusFeasible means an incumbent exists but optimality was not proven.
	StatusFeasible
	// StatusOptimal means the solver proved optimality within its gap.
	StatusOptimal
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	default:
		return "no solution"
	}
}

// Solved reports whether the status carries a usable variable assignment.
func (s Status) Solved() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// Options bound a solve call. Backends that cannot honor a knob log a
// warning and proceed.
type Options struct {
	TimeLimit time.Duration
	Gap       float64 // relative optimality gap
	Verbose   bool
}

// Solution is the result of one solve: a terminal status and, when Solved,
// the objective value and one value per model variable.
type Solution struct {
	Status    Status
	Objective float64
	Values    []float64
}

// Value returns the assigned value of v.
func (s Solution) Value(v Var) float64 {
	return s.Values[v]
}

// Solver solves a fully built model. Implementations block until the solver
// terminates.
type Solver interface {
	Solve(m *Model, opts Options) (Solution, error)
}
