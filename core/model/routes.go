package model

import (
	"fmt"
	"strings"
)

// Diversion is an alternative route a line can use while one of its normal
// links is blocked, at an additional travel-time cost in hours.
type Diversion struct {
	Route          string
	AdditionalTime float64
}

// Routes holds the normal route of each line, per-link travel times and the
// known diversions. Routes are stored as dash-separated link lists, the
// format of the problem files.
type Routes struct {
	LineRoutes    map[string]string
	LinkDurations map[LineLink]float64
	Diversions    map[LineLink]Diversion
}

// NewRoutes returns an empty route set.
func NewRoutes() *Routes {
	return &Routes{
		LineRoutes:    map[string]string{},
		LinkDurations: map[LineLink]float64{},
		Diversions:    map[LineLink]Diversion{},
	}
}

// AddLineRoute sets the normal route for a line.
func (r *Routes) AddLineRoute(lineID, route string) {
	r.LineRoutes[lineID] = route
}

// AddLinkDuration sets the travel time in hours for a link on a line.
func (r *Routes) AddLinkDuration(lineID, linkID string, hours float64) {
	r.LinkDurations[LineLink{Line: lineID, Link: linkID}] = hours
}

// AddDiversion registers an alternative route for a line when blockedLink is
// unavailable.
func (r *Routes) AddDiversion(lineID, blockedLink string, d Diversion) {
	r.Diversions[LineLink{Line: lineID, Link: blockedLink}] = d
}

// LineRoute returns the normal route of a line.
func (r *Routes) LineRoute(lineID string) (string, bool) {
	route, ok := r.LineRoutes[lineID]
	return route, ok
}

// LinkDuration returns the travel time of a link on a line, zero when
// unknown.
func (r *Routes) LinkDuration(lineID, linkID string) float64 {
	return r.LinkDurations[LineLink{Line: lineID, Link: linkID}]
}

// Diversion returns the alternative route for a line around blockedLink.
func (r *Routes) Diversion(lineID, blockedLink string) (Diversion, bool) {
	d, ok := r.Diversions[LineLink{Line: lineID, Link: blockedLink}]
	return d, ok
}

// LinksForLine returns the links of a line's normal route in order.
func (r *Routes) LinksForLine(lineID string) []string {
	route, ok := r.LineRoutes[lineID]
	if !ok {
		return nil
	}
	return RouteLinks(route)
}

// RouteTime sums the travel times of a line over the links of a route.
func (r *Routes) RouteTime(lineID, route string) float64 {
	var total float64
	for _, link := range RouteLinks(route) {
		total += r.LinkDuration(lineID, link)
	}
	return total
}

// NormalizeLineIDs rewrites line identifiers with NormalizeName so they
// match the normalized network and demand data.
func (r *Routes) NormalizeLineIDs() {
	normalized := make(map[string]string, len(r.LineRoutes))
	for lineID, route := range r.LineRoutes {
		normalized[NormalizeName(lineID)] = route
	}
	r.LineRoutes = normalized
}

// RouteLinks splits a dash-separated route string into its link ids.
func RouteLinks(route string) []string {
	if route == "" {
		return nil
	}
	return strings.Split(route, "-")
}

// RouteUsesLink reports whether a route string contains the link.
func RouteUsesLink(route, linkID string) bool {
	for _, l := range RouteLinks(route) {
		if l == linkID {
			return true
		}
	}
	return false
}

func (r *Routes) String() string {
	return fmt.Sprintf("routes for %d lines with %d diversions", len(r.LineRoutes), len(r.Diversions))
}
