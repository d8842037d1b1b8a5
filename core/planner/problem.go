// Package planner coordinates the scheduling and traffic models: it owns the
// shared problem entities and drives the four solve modes (scheduling-only,
// traffic-only, integrated fixed-point iteration and daily decomposition).
package planner

import (
	"fmt"

	"github.com/jsundin/tcrplan/core/model"
	"github.com/jsundin/tcrplan/core/scheduling"
	"github.com/jsundin/tcrplan/core/traffic"
)

// Problem bundles the entities and parameters both models share. It is
// produced by a loader and treated as read-only once an Optimizer is created
// over it, except for the one-time normalization pass.
type Problem struct {
	Plan      *model.Plan
	Network   *model.Network
	Projects  *model.Projects
	Resources *model.Resources
	Demand    *model.Demand
	Routes    *model.Routes

	SchedParams   *scheduling.Params
	TrafficParams *traffic.Params
}

// NewProblem returns a problem with empty entities and default parameters.
func NewProblem(plan *model.Plan) *Problem {
	return &Problem{
		Plan:          plan,
		Network:       model.NewNetwork(),
		Projects:      model.NewProjects(),
		Resources:     model.NewResources(),
		Demand:        model.NewDemand(),
		Routes:        model.NewRoutes(),
		SchedParams:   scheduling.NewParams(),
		TrafficParams: traffic.NewParams(),
	}
}

// Validate checks the problem is complete enough to build models over.
func (p *Problem) Validate() error {
	if p.Plan == nil {
		return fmt.Errorf("problem has no plan")
	}
	if p.Network == nil || p.Projects == nil || p.Resources == nil ||
		p.Demand == nil || p.Routes == nil {
		return fmt.Errorf("problem has missing entities")
	}
	return p.Network.Validate()
}

// Normalize rewrites identifiers across all entities so that the network,
// project blockings and route line ids agree after special-character
// replacement. Must run before model construction.
func (p *Problem) Normalize() {
	p.Network.NormalizeNames()
	p.Projects.NormalizeLinks()
	p.Routes.NormalizeLineIDs()
}
