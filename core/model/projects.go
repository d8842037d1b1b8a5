package model

import (
	"fmt"
	"strconv"
)

// BlockingAmount is the capacity fraction a task withdraws from a link. The
// problem files express it either as a number in [0,1] or as the token "esp"
// (enkelspårsdrift, single-track operation) which counts as half the
// capacity. The token is resolved here, at load time, never inside the
// constraint-generation loops.
type BlockingAmount struct {
	Fraction    float64
	SingleTrack bool
}

// singleTrackFraction is the capacity share withdrawn by single-track
// operation on a double-track link.
const singleTrackFraction = 0.5

// ParseBlockingAmount resolves a raw amount string to a normalized value.
func ParseBlockingAmount(s string) (BlockingAmount, error) {
	if s == "esp" {
		return BlockingAmount{Fraction: singleTrackFraction, SingleTrack: true}, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return BlockingAmount{}, fmt.Errorf("invalid blocking amount %q: %w", s, err)
	}
	if f < 0 || f > 1 {
		return BlockingAmount{}, fmt.Errorf("blocking amount %v outside [0,1]", f)
	}
	return BlockingAmount{Fraction: f}, nil
}

// TrafficBlocking states that a task withdraws part of a link's capacity
// while it runs.
type TrafficBlocking struct {
	Link   string
	Amount BlockingAmount
}

// ResourceRequirement states that a task consumes an amount of a resource
// while it runs.
type ResourceRequirement struct {
	Resource string
	Amount   float64
}

// Task is one unit of maintenance work. A task may repeat Count times; each
// repetition is a task instance with its own start decision. Rest bounds are
// in hours. MaxRestBetween and MaxRestAfter are optional; nil means
// unbounded. Time window fields are raw tokens (absolute timestamp or week
// token) interpreted against the plan; empty means inherited from the
// project or unbounded.
type Task struct {
	ID             string
	Desc           string
	DurationHr     float64
	Count          int
	MinRestBetween float64
	MaxRestBetween *float64
	MinRestAfter   float64
	MaxRestAfter   *float64
	EarliestStart  string
	LatestEnd      string
	Blockings      []TrafficBlocking
	Resources      []ResourceRequirement
}

// Project is an ordered sequence of tasks that is either scheduled as a
// whole or cancelled as a whole.
type Project struct {
	ID            string
	Desc          string
	EarliestStart string
	LatestEnd     string
	Tasks         []*Task
}

// Projects holds all maintenance projects of a problem.
type Projects struct {
	Projects map[string]*Project
	order    []string
}

// NewProjects returns an empty project set.
func NewProjects() *Projects {
	return &Projects{Projects: map[string]*Project{}}
}

// Add inserts a project, keeping insertion order for deterministic model
// construction.
func (p *Projects) Add(project *Project) {
	if _, ok := p.Projects[project.ID]; !ok {
		p.order = append(p.order, project.ID)
	}
	p.Projects[project.ID] = project
}

// Get returns a project by id.
func (p *Projects) Get(id string) (*Project, bool) {
	proj, ok := p.Projects[id]
	return proj, ok
}

// IDs returns all project ids in insertion order.
func (p *Projects) IDs() []string {
	ids := make([]string, len(p.order))
	copy(ids, p.order)
	return ids
}

// NormalizeLinks rewrites blocked-link references with NormalizeName so they
// match the normalized network.
func (p *Projects) NormalizeLinks() {
	for _, proj := range p.Projects {
		for _, task := range proj.Tasks {
			for i := range task.Blockings {
				task.Blockings[i].Link = NormalizeName(task.Blockings[i].Link)
			}
		}
	}
}

func (p *Projects) String() string {
	tasks := 0
	for _, proj := range p.Projects {
		tasks += len(proj.Tasks)
	}
	return fmt.Sprintf("%d projects with %d tasks", len(p.Projects), tasks)
}
