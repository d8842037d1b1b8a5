package loader

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jsundin/tcrplan/core/model"
	"github.com/jsundin/tcrplan/core/planner"
)

// The problem file schema. A complete problem document has a <problem> root;
// manifest fragments may carry a single section as their own root instead.
type xmlProblem struct {
	XMLName   xml.Name
	Network   *xmlNetwork   `xml:"network"`
	Resources *xmlResources `xml:"resources"`
	Projects  *xmlProjects  `xml:"projects"`
	Traffic   *xmlTraffic   `xml:"traffic"`
	Params    *xmlParams    `xml:"params"`
	Plan      *xmlPlan      `xml:"plan"`
}

type xmlNetwork struct {
	Nodes []xmlNode `xml:"nodes>node"`
	Links []xmlLink `xml:"links>link"`
}

type xmlNode struct {
	ID         string  `xml:"id,attr"`
	Name       string  `xml:"name,attr"`
	Lat        float64 `xml:"lat,attr"`
	Lon        float64 `xml:"lon,attr"`
	MergeGroup string  `xml:"merge_group,attr"`
}

type xmlLink struct {
	ID       string  `xml:"id,attr"`
	From     string  `xml:"from,attr"`
	To       string  `xml:"to,attr"`
	Length   float64 `xml:"length,attr"`
	Tracks   int     `xml:"tracks,attr"`
	Capacity int     `xml:"capacity,attr"`
}

type xmlResources struct {
	Resources []xmlResource `xml:"resource"`
}

type xmlResource struct {
	ID       string   `xml:"id,attr"`
	Name     string   `xml:"name,attr"`
	Capacity *float64 `xml:"capacity,attr"`
}

type xmlProjects struct {
	Projects []xmlProject `xml:"project"`
}

type xmlProject struct {
	ID            string    `xml:"id,attr"`
	Desc          string    `xml:"desc,attr"`
	EarliestStart string    `xml:"earliestStart,attr"`
	LatestEnd     string    `xml:"latestEnd,attr"`
	Tasks         []xmlTask `xml:"task"`
}

type xmlTask struct {
	ID             string        `xml:"id,attr"`
	Desc           string        `xml:"desc,attr"`
	DurationHr     float64       `xml:"durationHr,attr"`
	Count          int           `xml:"count,attr"`
	MinRestBetween float64       `xml:"minRestBetween,attr"`
	MaxRestBetween *float64      `xml:"maxRestBetween,attr"`
	MinRestAfter   float64       `xml:"minRestAfter,attr"`
	MaxRestAfter   *float64      `xml:"maxRestAfter,attr"`
	EarliestStart  string        `xml:"earliestStart,attr"`
	LatestEnd      string        `xml:"latestEnd,attr"`
	Blockings      []xmlBlocking `xml:"traffic_blocking"`
	Resources      []xmlResReq   `xml:"requiredResources>resource"`
}

type xmlBlocking struct {
	Link   string `xml:"link,attr"`
	Amount string `xml:"amount,attr"`
}

type xmlResReq struct {
	ID     string   `xml:"id,attr"`
	Amount *float64 `xml:"amount,attr"`
}

type xmlTraffic struct {
	TrainTypes []xmlTrainType `xml:"train_types>train_type"`
	Lines      []xmlLine      `xml:"lines>line"`
	Demand     []xmlDemand    `xml:"demand>demand"`
	Routes     *xmlRoutes     `xml:"routes"`
}

type xmlTrainType struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

type xmlLine struct {
	ID          string `xml:"id,attr"`
	Origin      string `xml:"origin,attr"`
	Destination string `xml:"destination,attr"`
	TrainType   string `xml:"train_type,attr"`
}

type xmlDemand struct {
	Line    string  `xml:"line,attr"`
	StartHr float64 `xml:"startHr,attr"`
	EndHr   float64 `xml:"endHr,attr"`
	Demand  float64 `xml:"demand,attr"`
}

type xmlRoutes struct {
	LineRoutes []xmlLineRoute `xml:"line_route"`
	Diversions []xmlDiversion `xml:"diversion"`
}

type xmlLineRoute struct {
	Line  string   `xml:"line,attr"`
	Route string   `xml:"route,attr"`
	Durs  []xmlDur `xml:"dur"`
}

type xmlDur struct {
	Link  string `xml:"link,attr"`
	Hours string `xml:",chardata"`
}

type xmlDiversion struct {
	Line           string  `xml:"line,attr"`
	BlockedLink    string  `xml:"blocked_link,attr"`
	Route          string  `xml:"route,attr"`
	AdditionalTime float64 `xml:"additional_time,attr"`
}

type xmlParams struct {
	Scheduling *xmlKeyVals `xml:"scheduling"`
	Traffic    *xmlKeyVals `xml:"traffic"`
	KeyVals    []xmlKeyVal `xml:"keyVal"`
}

type xmlKeyVals struct {
	KeyVals []xmlKeyVal `xml:"keyVal"`
}

type xmlPlan struct {
	Start        string `xml:"start,attr"`
	End          string `xml:"end,attr"`
	PeriodLength string `xml:"period_length,attr"`
	TrafficStart string `xml:"traffic_start,attr"`
	TrafficEnd   string `xml:"traffic_end,attr"`
}

type xmlKeyVal struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

func (kv xmlKeyVal) float() (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(kv.Value), 64)
	if err != nil {
		return 0, fmt.Errorf("parameter %s: %w", kv.Key, err)
	}
	return v, nil
}

// buildProblem converts a parsed document into the planner's problem.
func buildProblem(doc *xmlProblem) (*planner.Problem, error) {
	plan, err := buildPlan(doc.Plan)
	if err != nil {
		return nil, err
	}
	p := planner.NewProblem(plan)
	if doc.Network != nil {
		applyNetwork(p.Network, doc.Network)
	}
	if doc.Resources != nil {
		applyResources(p.Resources, doc.Resources)
	}
	if doc.Projects != nil {
		if err := applyProjects(p.Projects, doc.Projects); err != nil {
			return nil, err
		}
	}
	if doc.Traffic != nil {
		applyTraffic(p.Demand, p.Routes, doc.Traffic)
	}
	if doc.Params != nil {
		if err := applyParams(p, doc.Params); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// defaultPeriodLength applies when the plan carries no explicit period
// length, in hours.
const defaultPeriodLength = 8

// buildPlan converts the plan element. Without one the plan defaults to a
// seven-day horizon from today's midnight.
func buildPlan(x *xmlPlan) (*model.Plan, error) {
	if x == nil || x.Start == "" || x.End == "" {
		now := time.Now().UTC()
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return model.NewPlan(start, start.AddDate(0, 0, 7), defaultPeriodLength)
	}
	start, err := model.ParsePlanTime(x.Start)
	if err != nil {
		return nil, fmt.Errorf("plan start: %w", err)
	}
	end, err := model.ParsePlanTime(x.End)
	if err != nil {
		return nil, fmt.Errorf("plan end: %w", err)
	}
	periodLength := float64(defaultPeriodLength)
	if x.PeriodLength != "" {
		periodLength, err = strconv.ParseFloat(x.PeriodLength, 64)
		if err != nil {
			return nil, fmt.Errorf("plan period_length: %w", err)
		}
	}
	plan, err := model.NewPlan(start, end, periodLength)
	if err != nil {
		return nil, err
	}
	if x.TrafficStart != "" && x.TrafficEnd != "" {
		ts, err := model.ParsePlanTime(x.TrafficStart)
		if err != nil {
			return nil, fmt.Errorf("plan traffic_start: %w", err)
		}
		te, err := model.ParsePlanTime(x.TrafficEnd)
		if err != nil {
			return nil, fmt.Errorf("plan traffic_end: %w", err)
		}
		plan.SetTrafficWindow(ts, te)
	}
	return plan, nil
}

func applyNetwork(n *model.Network, x *xmlNetwork) {
	for _, node := range x.Nodes {
		n.AddNode(model.Node{
			ID:         node.ID,
			Name:       node.Name,
			Lat:        node.Lat,
			Lon:        node.Lon,
			MergeGroup: node.MergeGroup,
		})
	}
	for _, link := range x.Links {
		n.AddLink(model.Link{
			ID:       link.ID,
			FromNode: link.From,
			ToNode:   link.To,
			Length:   link.Length,
			Tracks:   link.Tracks,
			Capacity: link.Capacity,
		})
	}
}

func applyResources(r *model.Resources, x *xmlResources) {
	for _, res := range x.Resources {
		capacity := 1.0
		if res.Capacity != nil {
			capacity = *res.Capacity
		}
		r.Add(model.Resource{ID: res.ID, Name: res.Name, Capacity: capacity})
	}
}

func applyProjects(p *model.Projects, x *xmlProjects) error {
	for _, proj := range x.Projects {
		project := &model.Project{
			ID:            proj.ID,
			Desc:          proj.Desc,
			EarliestStart: proj.EarliestStart,
			LatestEnd:     proj.LatestEnd,
		}
		for _, t := range proj.Tasks {
			count := t.Count
			if count < 1 {
				count = 1
			}
			task := &model.Task{
				ID:             t.ID,
				Desc:           t.Desc,
				DurationHr:     t.DurationHr,
				Count:          count,
				MinRestBetween: t.MinRestBetween,
				MaxRestBetween: t.MaxRestBetween,
				MinRestAfter:   t.MinRestAfter,
				MaxRestAfter:   t.MaxRestAfter,
				EarliestStart:  t.EarliestStart,
				LatestEnd:      t.LatestEnd,
			}
			for _, blk := range t.Blockings {
				amount, err := model.ParseBlockingAmount(blk.Amount)
				if err != nil {
					return fmt.Errorf("project %s task %s: %w", proj.ID, t.ID, err)
				}
				task.Blockings = append(task.Blockings, model.TrafficBlocking{
					Link:   blk.Link,
					Amount: amount,
				})
			}
			for _, req := range t.Resources {
				amount := 1.0
				if req.Amount != nil {
					amount = *req.Amount
				}
				task.Resources = append(task.Resources, model.ResourceRequirement{
					Resource: req.ID,
					Amount:   amount,
				})
			}
			project.Tasks = append(project.Tasks, task)
		}
		p.Add(project)
	}
	return nil
}

func applyTraffic(d *model.Demand, r *model.Routes, x *xmlTraffic) {
	for _, tt := range x.TrainTypes {
		d.AddTrainType(tt.ID, tt.Name)
	}
	for _, line := range x.Lines {
		d.AddLine(model.Line{
			ID:          line.ID,
			Origin:      line.Origin,
			Destination: line.Destination,
			TrainType:   line.TrainType,
		})
	}
	for _, dem := range x.Demand {
		d.AddEntry(dem.Line, dem.StartHr, dem.EndHr, dem.Demand)
	}
	if x.Routes == nil {
		return
	}
	for _, lr := range x.Routes.LineRoutes {
		r.AddLineRoute(lr.Line, lr.Route)
		for _, dur := range lr.Durs {
			hours, err := strconv.ParseFloat(strings.TrimSpace(dur.Hours), 64)
			if err != nil {
				continue
			}
			r.AddLinkDuration(lr.Line, dur.Link, hours)
		}
	}
	for _, div := range x.Routes.Diversions {
		r.AddDiversion(div.Line, div.BlockedLink, model.Diversion{
			Route:          div.Route,
			AdditionalTime: div.AdditionalTime,
		})
	}
}

// Parameter key prefixes of the problem files. Scheduling keys carry a cp_
// prefix, traffic keys ct_ or mx_.
const (
	keyBlockingCost       = "cp_block"
	keyCoordinationFactor = "cp_bs"
	prefixProjectCancel   = "cp_cancel_"
	prefixResourceCost    = "cp_res_"
	prefixLineCancel      = "ct_cancel_"
	prefixDisplacement    = "ct_post_"
	prefixOperation       = "ct_time_"
	prefixMaxRelIncrease  = "mx_inc_rel_"
	prefixMaxAbsIncrease  = "mx_inc_abs_"
)

// applyParams routes keyVal entries to the two parameter sets. A <scheduling>
// or <traffic> sub-element takes precedence; otherwise the keys on the main
// <params> element apply to both.
func applyParams(p *planner.Problem, x *xmlParams) error {
	schedKeys := x.KeyVals
	if x.Scheduling != nil {
		schedKeys = x.Scheduling.KeyVals
	}
	trafficKeys := x.KeyVals
	if x.Traffic != nil {
		trafficKeys = x.Traffic.KeyVals
	}
	for _, kv := range schedKeys {
		v, err := kv.float()
		if err != nil {
			return err
		}
		switch {
		case kv.Key == keyBlockingCost:
			p.SchedParams.BlockingCost = v
		case kv.Key == keyCoordinationFactor:
			p.SchedParams.SetCoordinationFactor(v)
		case strings.HasPrefix(kv.Key, prefixProjectCancel):
			p.SchedParams.CancellationCost[strings.TrimPrefix(kv.Key, prefixProjectCancel)] = v
		case strings.HasPrefix(kv.Key, prefixResourceCost):
			p.SchedParams.ResourceCost[strings.TrimPrefix(kv.Key, prefixResourceCost)] = v
		case kv.Key == "*":
			p.SchedParams.CancellationCost["*"] = v
		}
	}
	for _, kv := range trafficKeys {
		v, err := kv.float()
		if err != nil {
			return err
		}
		switch {
		case strings.HasPrefix(kv.Key, prefixLineCancel):
			p.TrafficParams.CancellationCost[strings.TrimPrefix(kv.Key, prefixLineCancel)] = v
		case strings.HasPrefix(kv.Key, prefixDisplacement):
			p.TrafficParams.DisplacementCost[strings.TrimPrefix(kv.Key, prefixDisplacement)] = v
		case strings.HasPrefix(kv.Key, prefixOperation):
			p.TrafficParams.OperationCost[strings.TrimPrefix(kv.Key, prefixOperation)] = v
		case strings.HasPrefix(kv.Key, prefixMaxRelIncrease):
			p.TrafficParams.MaxRelIncrease[strings.TrimPrefix(kv.Key, prefixMaxRelIncrease)] = v
		case strings.HasPrefix(kv.Key, prefixMaxAbsIncrease):
			p.TrafficParams.MaxAbsIncrease[strings.TrimPrefix(kv.Key, prefixMaxAbsIncrease)] = v
		}
	}
	return nil
}
