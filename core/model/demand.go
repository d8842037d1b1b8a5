package model

import "fmt"

// Line is a traffic relation between an origin and a destination served by a
// train type.
type Line struct {
	ID          string
	Origin      string
	Destination string
	TrainType   string
}

// DemandKey keys a demand volume for a line within an hour window of the
// traffic day.
type DemandKey struct {
	Line    string
	StartHr float64
	EndHr   float64
}

// Demand holds train types, lines and demand volumes.
type Demand struct {
	Lines      map[string]Line
	TrainTypes map[string]string // id -> name
	Entries    map[DemandKey]float64
	lineOrder  []string
}

// NewDemand returns an empty demand set.
func NewDemand() *Demand {
	return &Demand{
		Lines:      map[string]Line{},
		TrainTypes: map[string]string{},
		Entries:    map[DemandKey]float64{},
	}
}

// AddLine inserts a line, keeping insertion order.
func (d *Demand) AddLine(line Line) {
	if _, ok := d.Lines[line.ID]; !ok {
		d.lineOrder = append(d.lineOrder, line.ID)
	}
	d.Lines[line.ID] = line
}

// AddTrainType registers a train type.
func (d *Demand) AddTrainType(id, name string) {
	d.TrainTypes[id] = name
}

// AddEntry records a demand volume for a line during an hour window.
func (d *Demand) AddEntry(line string, startHr, endHr, volume float64) {
	d.Entries[DemandKey{Line: line, StartHr: startHr, EndHr: endHr}] = volume
}

// LineIDs returns all line ids in insertion order.
func (d *Demand) LineIDs() []string {
	ids := make([]string, len(d.lineOrder))
	copy(ids, d.lineOrder)
	return ids
}

// TrainType returns the train type of a line, empty for unknown lines.
func (d *Demand) TrainType(lineID string) string {
	if l, ok := d.Lines[lineID]; ok {
		return l.TrainType
	}
	return ""
}

// TotalDemand sums all demand entries of a line across time windows.
func (d *Demand) TotalDemand(lineID string) float64 {
	var total float64
	for key, vol := range d.Entries {
		if key.Line == lineID {
			total += vol
		}
	}
	return total
}

func (d *Demand) String() string {
	return fmt.Sprintf("demand with %d lines and %d entries", len(d.Lines), len(d.Entries))
}
