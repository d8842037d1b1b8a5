// Package mip provides a small mixed-integer-programming model builder and a
// solver interface. Model construction is pure in-memory assembly; solving is
// delegated to a backend implementing Solver.
package mip

import (
	"fmt"
	"math"
)

// VarType distinguishes continuous, general integer and binary variables.
type VarType int

const (
	Continuous VarType = iota
	Integer
	Binary
)

// Var references a variable in a Model by index.
type Var int

// VarDef describes one variable of a model.
type VarDef struct {
	Name string
	Type VarType
	Lo   float64
	Hi   float64 // math.Inf(1) for unbounded above
}

// Term is one coefficient*variable entry of a linear expression.
type Term struct {
	Var  Var
	Coef float64
}

// Sense is the direction of a linear constraint.
type Sense int

const (
	LessEq Sense = iota
	GreaterEq
	Equal
)

func (s Sense) String() string {
	switch s {
	case LessEq:
		return "<="
	case GreaterEq:
		return ">="
	default:
		return "=="
	}
}

// Constraint is a named linear constraint sum(Terms) Sense RHS.
type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// Model is a MIP under construction: variables, constraints and a minimize
// objective.
type Model struct {
	name   string
	vars   []VarDef
	byName map[string]Var
	cons   []Constraint
	obj    []Term
}

// NewModel returns an empty model.
func NewModel(name string) *Model {
	return &Model{name: name, byName: map[string]Var{}}
}

// Name returns the model name.
func (m *Model) Name() string { return m.name }

// AddContinuous adds a continuous variable with bounds [lo, hi].
func (m *Model) AddContinuous(lo, hi float64, name string) Var {
	return m.addVar(VarDef{Name: name, Type: Continuous, Lo: lo, Hi: hi})
}

// AddInteger adds an integer variable with bounds [lo, hi].
func (m *Model) AddInteger(lo, hi float64, name string) Var {
	return m.addVar(VarDef{Name: name, Type: Integer, Lo: lo, Hi: hi})
}

// AddBinary adds a 0/1 variable.
func (m *Model) AddBinary(name string) Var {
	return m.addVar(VarDef{Name: name, Type: Binary, Lo: 0, Hi: 1})
}

func (m *Model) addVar(def VarDef) Var {
	v := Var(len(m.vars))
	m.vars = append(m.vars, def)
	m.byName[def.Name] = v
	return v
}

// AddConstraint appends a named linear constraint.
func (m *Model) AddConstraint(terms []Term, sense Sense, rhs float64, name string) {
	m.cons = append(m.cons, Constraint{Name: name, Terms: terms, Sense: sense, RHS: rhs})
}

// SetObjective sets the minimize objective to the given linear expression.
func (m *Model) SetObjective(terms []Term) {
	m.obj = terms
}

// NumVars returns the number of variables.
func (m *Model) NumVars() int { return len(m.vars) }

// NumConstraints returns the number of constraints.
func (m *Model) NumConstraints() int { return len(m.cons) }

// VarDef returns the definition of v.
func (m *Model) VarDef(v Var) VarDef { return m.vars[v] }

// VarByName looks a variable up by its name.
func (m *Model) VarByName(name string) (Var, bool) {
	v, ok := m.byName[name]
	return v, ok
}

// Constraints returns the model's constraints.
func (m *Model) Constraints() []Constraint { return m.cons }

// Objective returns the minimize objective terms.
func (m *Model) Objective() []Term { return m.obj }

// ObjectiveValue evaluates the objective under a full assignment.
func (m *Model) ObjectiveValue(values []float64) float64 {
	var total float64
	for _, t := range m.obj {
		total += t.Coef * values[t.Var]
	}
	return total
}

// Violations evaluates a full assignment against bounds, integrality and all
// constraints, returning a description per violation. An empty slice means
// the assignment is feasible within tol.
func (m *Model) Violations(values []float64, tol float64) []string {
	var out []string
	if len(values) != len(m.vars) {
		return []string{fmt.Sprintf("assignment has %d values, model has %d variables", len(values), len(m.vars))}
	}
	for i, def := range m.vars {
		v := values[i]
		if v < def.Lo-tol || v > def.Hi+tol {
			out = append(out, fmt.Sprintf("%s=%v outside [%v,%v]", def.Name, v, def.Lo, def.Hi))
		}
		if def.Type != Continuous && math.Abs(v-math.Round(v)) > tol {
			out = append(out, fmt.Sprintf("%s=%v not integral", def.Name, v))
		}
	}
	for _, c := range m.cons {
		var lhs float64
		for _, t := range c.Terms {
			lhs += t.Coef * values[t.Var]
		}
		ok := false
		switch c.Sense {
		case LessEq:
			ok = lhs <= c.RHS+tol
		case GreaterEq:
			ok = lhs >= c.RHS-tol
		case Equal:
			ok = math.Abs(lhs-c.RHS) <= tol
		}
		if !ok {
			out = append(out, fmt.Sprintf("%s: %v %s %v violated", c.Name, lhs, c.Sense, c.RHS))
		}
	}
	return out
}
