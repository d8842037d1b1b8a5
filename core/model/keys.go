package model

import "fmt"

// LinkPeriod keys per-link, per-period quantities such as blockings, fixed
// capacity restrictions and traffic utilization. Comparable, usable as a map
// key.
type LinkPeriod struct {
	Link   string
	Period int
}

func (k LinkPeriod) String() string { return fmt.Sprintf("%s_%d", k.Link, k.Period) }

// ResourcePeriod keys per-resource, per-period usage levels.
type ResourcePeriod struct {
	Resource string
	Period   int
}

func (k ResourcePeriod) String() string { return fmt.Sprintf("%s_%d", k.Resource, k.Period) }

// TaskInstance identifies one repetition of a task within a project.
type TaskInstance struct {
	Project string
	Task    string
	Index   int
}

func (k TaskInstance) String() string {
	return fmt.Sprintf("%s_%s_%d", k.Project, k.Task, k.Index)
}

// LineLink keys per-line, per-link quantities such as link travel times and
// diversion routes.
type LineLink struct {
	Line string
	Link string
}

// FlowKey identifies one flow decision: trains of a line assigned to a route
// variant in a period. Via is empty for the normal route and names the
// avoided (blocked) link for a diversion variant.
type FlowKey struct {
	Line   string
	Via    string
	Period int
}

// Diverted reports whether the key refers to a diversion variant.
func (k FlowKey) Diverted() bool { return k.Via != "" }

func (k FlowKey) String() string {
	if k.Via == "" {
		return fmt.Sprintf("%s_normal_%d", k.Line, k.Period)
	}
	return fmt.Sprintf("%s_div_%s_%d", k.Line, k.Via, k.Period)
}
