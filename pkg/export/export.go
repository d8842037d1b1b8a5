// Package export serializes solve results to XML and plain-text reports.
package export

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jsundin/tcrplan/core/model"
	"github.com/jsundin/tcrplan/core/planner"
	"github.com/jsundin/tcrplan/core/scheduling"
	"github.com/jsundin/tcrplan/core/traffic"
)

const timeLayout = "2006-01-02 15:04:05"

type xmlScheduleResults struct {
	XMLName   xml.Name      `xml:"schedule_results"`
	Status    string        `xml:"status,attr"`
	Objective float64       `xml:"objective,attr"`
	Cancelled []xmlProject  `xml:"cancelled_projects>project"`
	Projects  []xmlSchedule `xml:"schedule>project"`
	Blockings []xmlBlocking `xml:"capacity_blockings>blocking"`
	Days      []xmlDay      `xml:"affected_days>day"`
	Resources []xmlUsage    `xml:"resource_usage>usage"`
}

type xmlProject struct {
	ID string `xml:"id,attr"`
}

type xmlSchedule struct {
	ID    string    `xml:"id,attr"`
	Desc  string    `xml:"desc,attr,omitempty"`
	Tasks []xmlTask `xml:"task"`
}

type xmlTask struct {
	ID        string        `xml:"id,attr"`
	Desc      string        `xml:"desc,attr,omitempty"`
	Instances []xmlInstance `xml:"instance"`
}

type xmlInstance struct {
	Index int    `xml:"index,attr"`
	Start string `xml:"start,attr"`
	End   string `xml:"end,attr"`
}

type xmlBlocking struct {
	Link   string  `xml:"link,attr"`
	Period int     `xml:"period,attr"`
	Amount float64 `xml:"amount,attr"`
}

type xmlDay struct {
	Date string `xml:"date,attr"`
}

type xmlUsage struct {
	Resource string  `xml:"resource,attr"`
	Period   int     `xml:"period,attr"`
	Amount   float64 `xml:"amount,attr"`
}

// WriteScheduleXML writes the scheduling results to w.
func WriteScheduleXML(w io.Writer, res *scheduling.Results, schedule []scheduling.ProjectSchedule, days []time.Time) error {
	out := xmlScheduleResults{
		Status:    res.Status,
		Objective: res.Objective,
	}
	for _, id := range res.CancelledProjects {
		out.Cancelled = append(out.Cancelled, xmlProject{ID: id})
	}
	for _, ps := range schedule {
		xp := xmlSchedule{ID: ps.ID, Desc: ps.Desc}
		for _, ts := range ps.Tasks {
			xt := xmlTask{ID: ts.ID, Desc: ts.Desc}
			for _, inst := range ts.Instances {
				xt.Instances = append(xt.Instances, xmlInstance{
					Index: inst.Index,
					Start: inst.Start.Format(timeLayout),
					End:   inst.End.Format(timeLayout),
				})
			}
			xp.Tasks = append(xp.Tasks, xt)
		}
		out.Projects = append(out.Projects, xp)
	}
	for _, lp := range sortedLinkPeriods(res.Blockings) {
		out.Blockings = append(out.Blockings, xmlBlocking{
			Link:   lp.Link,
			Period: lp.Period,
			Amount: res.Blockings[lp],
		})
	}
	for _, day := range days {
		out.Days = append(out.Days, xmlDay{Date: day.Format("2006-01-02")})
	}
	for _, rp := range sortedResourcePeriods(res.ResourceUsage) {
		out.Resources = append(out.Resources, xmlUsage{
			Resource: rp.Resource,
			Period:   rp.Period,
			Amount:   res.ResourceUsage[rp],
		})
	}
	return writeXML(w, out)
}

type xmlTrafficResults struct {
	XMLName   xml.Name       `xml:"traffic_results"`
	Status    string         `xml:"status,attr"`
	Objective float64        `xml:"objective,attr"`
	Date      string         `xml:"date,attr,omitempty"`
	Impact    xmlImpact      `xml:"impact"`
	Flows     []xmlFlow      `xml:"flows>flow"`
	Cancelled []xmlLineValue `xml:"cancellations>line"`
	Delayed   []xmlLineValue `xml:"delays>line"`
}

type xmlImpact struct {
	Cancelled float64 `xml:"cancelled,attr"`
	Delayed   int     `xml:"delayed,attr"`
	Diverted  float64 `xml:"diverted,attr"`
}

type xmlFlow struct {
	Line   string  `xml:"line,attr"`
	Via    string  `xml:"via,attr,omitempty"`
	Period int     `xml:"period,attr"`
	Volume float64 `xml:"volume,attr"`
}

type xmlLineValue struct {
	ID    string  `xml:"id,attr"`
	Value float64 `xml:"value,attr"`
}

// WriteTrafficXML writes traffic results to w. A nonzero day marks the
// results of one daily-decomposition solve.
func WriteTrafficXML(w io.Writer, res *traffic.Results, impact traffic.ImpactSummary, day time.Time) error {
	out := xmlTrafficResults{
		Status:    res.Status,
		Objective: res.Objective,
		Impact: xmlImpact{
			Cancelled: impact.TotalCancelled,
			Delayed:   impact.TotalDelayed,
			Diverted:  impact.TotalDiverted,
		},
	}
	if !day.IsZero() {
		out.Date = day.Format("2006-01-02")
	}
	for _, key := range res.SortedFlowKeys() {
		out.Flows = append(out.Flows, xmlFlow{
			Line:   key.Line,
			Via:    key.Via,
			Period: key.Period,
			Volume: res.Flows[key],
		})
	}
	for _, id := range sortedKeys(res.Cancelled) {
		out.Cancelled = append(out.Cancelled, xmlLineValue{ID: id, Value: res.Cancelled[id]})
	}
	for _, id := range sortedKeys(res.Delayed) {
		out.Delayed = append(out.Delayed, xmlLineValue{ID: id, Value: res.Delayed[id]})
	}
	return writeXML(w, out)
}

// WriteSummary writes a human-readable run summary to w.
func WriteSummary(w io.Writer, results planner.Results) error {
	if results.Sched != nil {
		fmt.Fprintf(w, "scheduling: status=%s objective=%.2f cancelled=%d blockings=%d\n",
			results.Sched.Status, results.Sched.Objective,
			len(results.Sched.CancelledProjects), len(results.Sched.Blockings))
	}
	if results.Traffic != nil {
		fmt.Fprintf(w, "traffic: status=%s objective=%.2f cancelled_lines=%d delayed_lines=%d\n",
			results.Traffic.Status, results.Traffic.Objective,
			len(results.Traffic.Cancelled), len(results.Traffic.Delayed))
	}
	days := make([]time.Time, 0, len(results.Daily))
	for day := range results.Daily {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	for _, day := range days {
		r := results.Daily[day]
		fmt.Fprintf(w, "daily %s: status=%s objective=%.2f\n",
			day.Format("2006-01-02"), r.Status, r.Objective)
	}
	return nil
}

func writeXML(w io.Writer, v any) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func sortedLinkPeriods(m map[model.LinkPeriod]float64) []model.LinkPeriod {
	keys := make([]model.LinkPeriod, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Link != keys[j].Link {
			return keys[i].Link < keys[j].Link
		}
		return keys[i].Period < keys[j].Period
	})
	return keys
}

func sortedResourcePeriods(m map[model.ResourcePeriod]float64) []model.ResourcePeriod {
	keys := make([]model.ResourcePeriod, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Resource != keys[j].Resource {
			return keys[i].Resource < keys[j].Resource
		}
		return keys[i].Period < keys[j].Period
	})
	return keys
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
