package model

import (
	"fmt"
	"time"
)

// Plan describes the discretized planning horizon. The horizon is split into
// fixed-length periods; all scheduling and traffic decisions are indexed by
// period. A sub-interval of the horizon carries traffic.
type Plan struct {
	Start        time.Time
	End          time.Time
	PeriodLength float64 // hours
	NumPeriods   int
	TrafficStart time.Time
	TrafficEnd   time.Time
}

// NewPlan creates a plan covering [start, end) with periods of periodLength
// hours. The traffic window defaults to the whole horizon.
func NewPlan(start, end time.Time, periodLength float64) (*Plan, error) {
	if periodLength <= 0 {
		return nil, fmt.Errorf("period length must be positive, got %v", periodLength)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("plan end %v before start %v", end, start)
	}
	hours := end.Sub(start).Hours()
	p := &Plan{
		Start:        start,
		End:          end,
		PeriodLength: periodLength,
		NumPeriods:   int(hours / periodLength),
		TrafficStart: start,
		TrafficEnd:   end,
	}
	return p, nil
}

// SetTrafficWindow sets when traffic starts and ends within the plan.
func (p *Plan) SetTrafficWindow(start, end time.Time) {
	p.TrafficStart = start
	p.TrafficEnd = end
}

// InTrafficWindow reports whether t lies within the traffic window,
// boundaries included.
func (p *Plan) InTrafficWindow(t time.Time) bool {
	return !t.Before(p.TrafficStart) && !t.After(p.TrafficEnd)
}

// PeriodIndex returns the index of the period containing t. The second
// return value is false when t falls outside the plan horizon.
func (p *Plan) PeriodIndex(t time.Time) (int, bool) {
	if t.Before(p.Start) || t.After(p.End) {
		return 0, false
	}
	return int(t.Sub(p.Start).Hours() / p.PeriodLength), true
}

// PeriodStart returns the start time of period i.
func (p *Plan) PeriodStart(i int) (time.Time, bool) {
	if i < 0 || i >= p.NumPeriods {
		return time.Time{}, false
	}
	return p.Start.Add(p.periodDuration() * time.Duration(i)), true
}

// PeriodEnd returns the end time of period i.
func (p *Plan) PeriodEnd(i int) (time.Time, bool) {
	if i < 0 || i >= p.NumPeriods {
		return time.Time{}, false
	}
	return p.Start.Add(p.periodDuration() * time.Duration(i+1)), true
}

func (p *Plan) periodDuration() time.Duration {
	return time.Duration(p.PeriodLength * float64(time.Hour))
}

func (p *Plan) String() string {
	return fmt.Sprintf("plan with %d periods of %vh from %v to %v",
		p.NumPeriods, p.PeriodLength, p.Start, p.End)
}
