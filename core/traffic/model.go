// Package traffic builds and solves the traffic-flow-allocation MIP: how
// train volumes are spread over each line's normal route and its diversions,
// and how much of each line is cancelled or delayed, given per-period
// capacity restrictions.
package traffic

import (
	"fmt"
	"sort"

	"github.com/jsundin/tcrplan/core/logger"
	"github.com/jsundin/tcrplan/core/mip"
	"github.com/jsundin/tcrplan/core/model"
)

// Model is the traffic flow optimization model.
type Model struct {
	network *model.Network
	demand  *model.Demand
	routes  *model.Routes
	params  *Params
	plan    *model.Plan

	solver mip.Solver
	log    logger.Logger

	built    *mip.Model
	flow     map[model.FlowKey]mip.Var
	flowKeys []model.FlowKey // creation order, for deterministic constraints
	cancel   map[string]mip.Var
	delay    map[string]mip.Var

	results *Results
}

// New creates a traffic model over the given entities. The entities are
// treated as read-only from here on.
func New(network *model.Network, demand *model.Demand, routes *model.Routes,
	params *Params, plan *model.Plan, solver mip.Solver, log logger.Logger) *Model {
	if params == nil {
		params = NewParams()
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Model{
		network: network,
		demand:  demand,
		routes:  routes,
		params:  params,
		plan:    plan,
		solver:  solver,
		log:     log,
	}
}

// MIP returns the last built optimization model, nil before Build.
func (m *Model) MIP() *mip.Model { return m.built }

// Build assembles the model. capacityConstraints maps (link, period) to the
// blocked capacity amount; nil means the network is unrestricted.
func (m *Model) Build(capacityConstraints map[model.LinkPeriod]float64) error {
	if m.plan == nil || m.plan.NumPeriods < 0 {
		return fmt.Errorf("traffic model requires a valid plan")
	}
	if m.network == nil || m.demand == nil || m.routes == nil {
		return fmt.Errorf("traffic model requires network, demand and routes")
	}

	b := mip.NewModel("TrafficFlow")
	m.flow = map[model.FlowKey]mip.Var{}
	m.flowKeys = nil
	m.cancel = map[string]mip.Var{}
	m.delay = map[string]mip.Var{}

	m.addVariables(b)
	m.addDemandConservation(b)
	m.addCapacity(b, capacityConstraints)
	m.addTravelTimeLimits(b)
	m.setObjective(b)

	m.built = b
	return nil
}

// trafficPeriods are the period indices whose start time lies in the traffic
// window; flow variables exist only for these.
func (m *Model) trafficPeriods() []int {
	var out []int
	for period := 0; period < m.plan.NumPeriods; period++ {
		if start, ok := m.plan.PeriodStart(period); ok && m.plan.InTrafficWindow(start) {
			out = append(out, period)
		}
	}
	return out
}

func (m *Model) addFlowVar(b *mip.Model, key model.FlowKey) {
	v := b.AddContinuous(0, infinity, fmt.Sprintf("flow_%s", key))
	m.flow[key] = v
	m.flowKeys = append(m.flowKeys, key)
}

func (m *Model) addVariables(b *mip.Model) {
	periods := m.trafficPeriods()
	for _, lineID := range m.demand.LineIDs() {
		m.cancel[lineID] = b.AddContinuous(0, 1, fmt.Sprintf("cancel_%s", lineID))
		m.delay[lineID] = b.AddContinuous(0, infinity, fmt.Sprintf("delay_%s", lineID))

		if _, ok := m.routes.LineRoute(lineID); !ok {
			continue
		}
		for _, period := range periods {
			m.addFlowVar(b, model.FlowKey{Line: lineID, Period: period})
		}
		for _, linkID := range m.routes.LinksForLine(lineID) {
			if _, ok := m.routes.Diversion(lineID, linkID); !ok {
				continue
			}
			for _, period := range periods {
				m.addFlowVar(b, model.FlowKey{Line: lineID, Via: linkID, Period: period})
			}
		}
	}
}

// addDemandConservation forces, per line, total flow plus the cancelled
// share to equal total demand.
func (m *Model) addDemandConservation(b *mip.Model) {
	for _, lineID := range m.demand.LineIDs() {
		totalDemand := m.demand.TotalDemand(lineID)
		var terms []mip.Term
		for _, key := range m.flowKeys {
			if key.Line == lineID {
				terms = append(terms, mip.Term{Var: m.flow[key], Coef: 1})
			}
		}
		if len(terms) == 0 {
			continue
		}
		terms = append(terms, mip.Term{Var: m.cancel[lineID], Coef: totalDemand})
		b.AddConstraint(terms, mip.Equal, totalDemand, fmt.Sprintf("demand_%s", lineID))
	}
}

// flowUsesLink reports whether the route variant behind a flow key runs over
// the link.
func (m *Model) flowUsesLink(key model.FlowKey, linkID string) bool {
	if key.Diverted() {
		d, ok := m.routes.Diversion(key.Line, key.Via)
		return ok && model.RouteUsesLink(d.Route, linkID)
	}
	route, ok := m.routes.LineRoute(key.Line)
	return ok && model.RouteUsesLink(route, linkID)
}

func (m *Model) addCapacity(b *mip.Model, constraints map[model.LinkPeriod]float64) {
	if len(constraints) == 0 {
		return
	}
	keys := make([]model.LinkPeriod, 0, len(constraints))
	for k := range constraints {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Link != keys[j].Link {
			return keys[i].Link < keys[j].Link
		}
		return keys[i].Period < keys[j].Period
	})
	for _, lp := range keys {
		if !m.network.HasLink(lp.Link) {
			continue
		}
		var terms []mip.Term
		for _, key := range m.flowKeys {
			if key.Period != lp.Period {
				continue
			}
			if m.flowUsesLink(key, lp.Link) {
				terms = append(terms, mip.Term{Var: m.flow[key], Coef: 1})
			}
		}
		if len(terms) == 0 {
			continue
		}
		residual := float64(m.network.LinkCapacity(lp.Link)) - constraints[lp]
		// A fully blocked link yields no constraint; demand conservation
		// then forces cancellation or other periods.
		if residual <= 0 {
			continue
		}
		b.AddConstraint(terms, mip.LessEq, residual, fmt.Sprintf("capacity_%s", lp))
	}
}

// addTravelTimeLimits fixes the flow of any diversion whose travel time
// exceeds the line's tolerated increase to zero.
func (m *Model) addTravelTimeLimits(b *mip.Model) {
	for _, lineID := range m.demand.LineIDs() {
		route, ok := m.routes.LineRoute(lineID)
		if !ok {
			continue
		}
		trainType := m.demand.TrainType(lineID)
		normalTime := m.routes.RouteTime(lineID, route)
		maxTime := normalTime * m.params.MaxRelIncreaseFor(lineID, trainType)
		if abs := normalTime + m.params.MaxAbsIncreaseFor(lineID, trainType); abs < maxTime {
			maxTime = abs
		}
		for _, linkID := range m.routes.LinksForLine(lineID) {
			d, ok := m.routes.Diversion(lineID, linkID)
			if !ok {
				continue
			}
			divTime := m.routes.RouteTime(lineID, d.Route) + d.AdditionalTime
			if divTime <= maxTime {
				continue
			}
			for period := 0; period < m.plan.NumPeriods; period++ {
				key := model.FlowKey{Line: lineID, Via: linkID, Period: period}
				v, ok := m.flow[key]
				if !ok {
					continue
				}
				b.AddConstraint([]mip.Term{{Var: v, Coef: 1}}, mip.Equal, 0,
					fmt.Sprintf("max_time_%s", key))
			}
		}
	}
}

func (m *Model) setObjective(b *mip.Model) {
	var obj []mip.Term
	for _, lineID := range m.demand.LineIDs() {
		trainType := m.demand.TrainType(lineID)
		obj = append(obj, mip.Term{
			Var:  m.cancel[lineID],
			Coef: m.params.CancellationCostFor(lineID, trainType) * m.demand.TotalDemand(lineID),
		})
		obj = append(obj, mip.Term{
			Var:  m.delay[lineID],
			Coef: m.params.DisplacementCostFor(lineID, trainType),
		})
	}
	for _, key := range m.flowKeys {
		trainType := m.demand.TrainType(key.Line)
		opCost := m.params.OperationCostFor(key.Line, trainType)
		cost := opCost
		if key.Diverted() {
			if d, ok := m.routes.Diversion(key.Line, key.Via); ok {
				cost = opCost + d.AdditionalTime*opCost
			}
		}
		obj = append(obj, mip.Term{Var: m.flow[key], Coef: cost})
	}
	b.SetObjective(obj)
}

// Solve hands the built model to the solver and extracts results. It returns
// false, with the status logged, when the model is unbuilt, the solver
// fails, or the terminal status carries no solution.
func (m *Model) Solve(opts mip.Options) bool {
	if m.built == nil {
		m.log.Errorf("traffic model not built, call Build first")
		return false
	}
	sol, err := m.solver.Solve(m.built, opts)
	if err != nil {
		m.log.Errorf("traffic solve failed: %v", err)
		return false
	}
	if !sol.Status.Solved() {
		m.log.Errorf("traffic optimization failed with status: %s", sol.Status)
		return false
	}
	m.results = m.extractResults(sol)
	m.log.Infof("traffic solved: status=%s objective=%.2f", sol.Status, sol.Objective)
	return true
}

func (m *Model) extractResults(sol mip.Solution) *Results {
	r := &Results{
		Status:    sol.Status.String(),
		Objective: sol.Objective,
		Flows:     map[model.FlowKey]float64{},
		Cancelled: map[string]float64{},
		Delayed:   map[string]float64{},
	}
	for key, v := range m.flow {
		if val := sol.Value(v); val > valueEps {
			r.Flows[key] = val
		}
	}
	for lineID, v := range m.cancel {
		if val := sol.Value(v); val > valueEps {
			r.Cancelled[lineID] = val
		}
	}
	for lineID, v := range m.delay {
		if val := sol.Value(v); val > valueEps {
			r.Delayed[lineID] = val
		}
	}
	return r
}

// Results returns the results of the last successful solve, nil otherwise.
func (m *Model) Results() *Results { return m.results }

// SetResults injects precomputed results so derived queries can run over a
// solution produced by another model instance (used by daily decomposition
// reporting).
func (m *Model) SetResults(r *Results) { m.results = r }
