package traffic

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/jsundin/tcrplan/core/model"
)

const valueEps = 1e-6

var infinity = math.Inf(1)

// Results holds the realized decision values of a successful solve. Flows
// are keyed by line, route variant and period; cancelled and delayed shares
// by line. Values below valueEps are dropped during extraction.
type Results struct {
	Status    string
	Objective float64
	Flows     map[model.FlowKey]float64
	Cancelled map[string]float64
	Delayed   map[string]float64
}

// LinkFlows aggregates the realized flow per link and period, over normal
// routes and diversions alike. Empty before a successful solve.
func (m *Model) LinkFlows() map[model.LinkPeriod]float64 {
	out := map[model.LinkPeriod]float64{}
	if m.results == nil {
		return out
	}
	for key, val := range m.results.Flows {
		for _, linkID := range m.flowLinks(key) {
			out[model.LinkPeriod{Link: linkID, Period: key.Period}] += val
		}
	}
	return out
}

func (m *Model) flowLinks(key model.FlowKey) []string {
	if key.Diverted() {
		if d, ok := m.routes.Diversion(key.Line, key.Via); ok {
			return model.RouteLinks(d.Route)
		}
		return nil
	}
	if route, ok := m.routes.LineRoute(key.Line); ok {
		return model.RouteLinks(route)
	}
	return nil
}

// CapacityUtilization returns, per link and period with nonzero flow, the
// fraction of link capacity in use. Links without capacity report 1.0.
func (m *Model) CapacityUtilization() map[model.LinkPeriod]float64 {
	out := map[model.LinkPeriod]float64{}
	for lp, flow := range m.LinkFlows() {
		capacity := float64(m.network.LinkCapacity(lp.Link))
		if capacity <= 0 {
			out[lp] = 1.0
			continue
		}
		out[lp] = flow / capacity
	}
	return out
}

// ImpactSummary aggregates the traffic consequences of a solve for
// reporting: cancelled trains, lines with residual delay, and train volume
// moved onto diversions, in total and per train type.
type ImpactSummary struct {
	TotalCancelled float64
	TotalDelayed   int
	TotalDiverted  float64

	CancelledByType map[string]float64
	DivertedByType  map[string]float64
}

// Impact computes the impact summary of the last solve. Zero-valued before a
// successful solve.
func (m *Model) Impact() ImpactSummary {
	s := ImpactSummary{
		CancelledByType: map[string]float64{},
		DivertedByType:  map[string]float64{},
	}
	if m.results == nil {
		return s
	}
	cancelled := make([]float64, 0, len(m.results.Cancelled))
	for lineID, share := range m.results.Cancelled {
		trains := share * m.demand.TotalDemand(lineID)
		cancelled = append(cancelled, trains)
		s.CancelledByType[m.demand.TrainType(lineID)] += trains
	}
	s.TotalCancelled = floats.Sum(cancelled)
	s.TotalDelayed = len(m.results.Delayed)
	for key, val := range m.results.Flows {
		if !key.Diverted() {
			continue
		}
		s.TotalDiverted += val
		s.DivertedByType[m.demand.TrainType(key.Line)] += val
	}
	return s
}

// SortedFlowKeys returns the flow keys of the last solve ordered by line,
// route variant and period, for stable report output.
func (r *Results) SortedFlowKeys() []model.FlowKey {
	keys := make([]model.FlowKey, 0, len(r.Flows))
	for k := range r.Flows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Line != keys[j].Line {
			return keys[i].Line < keys[j].Line
		}
		if keys[i].Via != keys[j].Via {
			return keys[i].Via < keys[j].Via
		}
		return keys[i].Period < keys[j].Period
	})
	return keys
}
