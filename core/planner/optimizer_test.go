package planner

import (
	"testing"
	"time"

	"github.com/jsundin/tcrplan/core/mip"
	"github.com/jsundin/tcrplan/core/model"
)

// scriptedSolver records the name of every model it is handed and answers
// with a canned solution per model.
type scriptedSolver struct {
	names []string
	fn    func(m *mip.Model) (mip.Solution, error)
}

func (s *scriptedSolver) Solve(m *mip.Model, _ mip.Options) (mip.Solution, error) {
	s.names = append(s.names, m.Name())
	return s.fn(m)
}

func valuesByName(m *mip.Model, vals map[string]float64) []float64 {
	out := make([]float64, m.NumVars())
	for i := 0; i < m.NumVars(); i++ {
		out[i] = vals[m.VarDef(mip.Var(i)).Name]
	}
	return out
}

func testProblem(t *testing.T) *Problem {
	t.Helper()
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	plan, err := model.NewPlan(start, start.Add(4*time.Hour), 1)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	p := NewProblem(plan)
	for _, id := range []string{"A", "B", "C"} {
		p.Network.AddNode(model.Node{ID: id})
	}
	p.Network.AddLink(model.Link{ID: "A_B", FromNode: "A", ToNode: "B"})
	p.Network.AddLink(model.Link{ID: "A_C", FromNode: "A", ToNode: "C"})
	p.Network.AddLink(model.Link{ID: "C_B", FromNode: "C", ToNode: "B"})
	p.Projects.Add(&model.Project{ID: "P1", Tasks: []*model.Task{{
		ID:         "T1",
		DurationHr: 1,
		Count:      1,
		Blockings: []model.TrafficBlocking{
			{Link: "A_B", Amount: model.BlockingAmount{Fraction: 1.0}},
		},
	}}})
	p.Demand.AddTrainType("pass", "Passenger")
	p.Demand.AddLine(model.Line{ID: "L1", Origin: "A", Destination: "B", TrainType: "pass"})
	p.Demand.AddEntry("L1", 0, 24, 10)
	p.Routes.AddLineRoute("L1", "A_B")
	p.Routes.AddLinkDuration("L1", "A_B", 1)
	p.Routes.AddLinkDuration("L1", "A_C", 0.5)
	p.Routes.AddLinkDuration("L1", "C_B", 0.5)
	p.Routes.AddDiversion("L1", "A_B", model.Diversion{Route: "A_C-C_B"})
	return p
}

// optimalFor answers every model with a fixed optimal point: the task starts
// at period 2 with its blocking in force, traffic runs partly on the normal
// route, partly diverted, with a small cancelled share.
func optimalFor(m *mip.Model) (mip.Solution, error) {
	var vals []float64
	switch m.Name() {
	case "ProjectScheduling":
		vals = valuesByName(m, map[string]float64{
			"start_P1_T1_0":       2,
			"blocking_A_B_2":      1,
			"blocking_A_B_3":      1,
			"aux_P1_T1_0_A_B_0_0": 1,
			"aux_P1_T1_0_A_B_1_0": 1,
		})
	default:
		vals = valuesByName(m, map[string]float64{
			"flow_L1_normal_0":  4,
			"flow_L1_div_A_B_1": 4,
			"cancel_L1":         0.2,
		})
	}
	return mip.Solution{Status: mip.StatusOptimal, Objective: m.ObjectiveValue(vals), Values: vals}, nil
}

func TestNewRejectsInvalidProblem(t *testing.T) {
	if _, err := New(NewProblem(nil), nil, nil); err == nil {
		t.Fatal("expected error for problem without plan")
	}
	p := testProblem(t)
	p.Network.AddLink(model.Link{ID: "A_X", FromNode: "A", ToNode: "X"})
	if _, err := New(p, nil, nil); err == nil {
		t.Fatal("expected error for link to unknown node")
	}
}

func TestSolveIntegratedSolveOrder(t *testing.T) {
	solver := &scriptedSolver{fn: optimalFor}
	o, err := New(testProblem(t), solver, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !o.SolveIntegrated(1, mip.Options{}) {
		t.Fatal("integrated solve should succeed")
	}
	// One seeding traffic solve, then one scheduling/traffic round.
	want := []string{"TrafficFlow", "ProjectScheduling", "TrafficFlow"}
	if len(solver.names) != len(want) {
		t.Fatalf("solves = %v", solver.names)
	}
	for i, name := range want {
		if solver.names[i] != name {
			t.Fatalf("solve %d = %s, want %s", i, solver.names[i], name)
		}
	}
	res := o.Results()
	if res.Sched == nil || res.Traffic == nil {
		t.Fatalf("results incomplete: %+v", res)
	}
	if o.CapacityBlockings()[model.LinkPeriod{Link: "A_B", Period: 2}] != 1 {
		t.Fatalf("blockings = %v", o.CapacityBlockings())
	}
}

func TestSolveIntegratedTwoIterations(t *testing.T) {
	solver := &scriptedSolver{fn: optimalFor}
	o, err := New(testProblem(t), solver, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !o.SolveIntegrated(2, mip.Options{}) {
		t.Fatal("integrated solve should succeed")
	}
	if len(solver.names) != 5 {
		t.Fatalf("solves = %v", solver.names)
	}
}

func TestSolveIntegratedSchedulingFailure(t *testing.T) {
	solver := &scriptedSolver{fn: func(m *mip.Model) (mip.Solution, error) {
		if m.Name() == "ProjectScheduling" {
			return mip.Solution{Status: mip.StatusInfeasible}, nil
		}
		return optimalFor(m)
	}}
	o, err := New(testProblem(t), solver, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if o.SolveIntegrated(1, mip.Options{}) {
		t.Fatal("integrated solve should fail")
	}
	// The seeding traffic solve and the failed scheduling solve ran, nothing
	// after.
	if len(solver.names) != 2 {
		t.Fatalf("solves = %v", solver.names)
	}
}

func TestSolveDaily(t *testing.T) {
	solver := &scriptedSolver{fn: optimalFor}
	o, err := New(testProblem(t), solver, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !o.SolveDaily(mip.Options{}) {
		t.Fatal("daily solve should succeed")
	}
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	res := o.Results()
	if len(res.Daily) != 1 || res.Daily[day] == nil {
		t.Fatalf("daily results = %v", res.Daily)
	}

	impact := o.DailyTrafficImpact(day)
	if impact.TotalCancelled != 2 {
		t.Fatalf("total cancelled = %v", impact.TotalCancelled)
	}
	if impact.TotalDiverted != 4 {
		t.Fatalf("total diverted = %v", impact.TotalDiverted)
	}
	other := o.DailyTrafficImpact(day.AddDate(0, 0, 1))
	if other.TotalCancelled != 0 || other.TotalDiverted != 0 {
		t.Fatalf("unknown day impact = %+v", other)
	}
}

func TestSolveDailyWithoutBlockings(t *testing.T) {
	solver := &scriptedSolver{fn: func(m *mip.Model) (mip.Solution, error) {
		if m.Name() == "ProjectScheduling" {
			// Cancelling the project leaves no blockings and no affected days.
			vals := valuesByName(m, map[string]float64{"cancel_P1": 1})
			return mip.Solution{Status: mip.StatusOptimal, Values: vals}, nil
		}
		return optimalFor(m)
	}}
	o, err := New(testProblem(t), solver, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if o.SolveDaily(mip.Options{}) {
		t.Fatal("daily solve without blockings should report failure")
	}
	if len(o.AffectedDays()) != 0 {
		t.Fatalf("affected days = %v", o.AffectedDays())
	}
}
