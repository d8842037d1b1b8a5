package traffic

// Defaults applied when neither the line, its train type nor "*" carries an
// explicit value.
const (
	defaultCancellationCost = 10
	defaultDisplacementCost = 5
	defaultOperationCost    = 1
	defaultMaxRelIncrease   = 1.2
	defaultMaxAbsIncrease   = 2.0 // hours
)

// Params holds the cost and travel-time parameters of the traffic model.
// Each map is keyed by line id or train type with "*" as the configurable
// fallback; lookup order is line, then type, then "*", then the built-in
// default.
type Params struct {
	CancellationCost map[string]float64
	DisplacementCost map[string]float64
	OperationCost    map[string]float64
	MaxRelIncrease   map[string]float64
	MaxAbsIncrease   map[string]float64
}

// NewParams returns empty parameters; all lookups fall through to defaults.
func NewParams() *Params {
	return &Params{
		CancellationCost: map[string]float64{},
		DisplacementCost: map[string]float64{},
		OperationCost:    map[string]float64{},
		MaxRelIncrease:   map[string]float64{},
		MaxAbsIncrease:   map[string]float64{},
	}
}

func lookup(m map[string]float64, lineID, trainType string, def float64) float64 {
	if v, ok := m[lineID]; ok {
		return v
	}
	if v, ok := m[trainType]; ok {
		return v
	}
	if v, ok := m["*"]; ok {
		return v
	}
	return def
}

// CancellationCostFor returns the per-train cancellation cost of a line.
func (p *Params) CancellationCostFor(lineID, trainType string) float64 {
	return lookup(p.CancellationCost, lineID, trainType, defaultCancellationCost)
}

// DisplacementCostFor returns the delay cost of a line.
func (p *Params) DisplacementCostFor(lineID, trainType string) float64 {
	return lookup(p.DisplacementCost, lineID, trainType, defaultDisplacementCost)
}

// OperationCostFor returns the per-train operating cost of a line.
func (p *Params) OperationCostFor(lineID, trainType string) float64 {
	return lookup(p.OperationCost, lineID, trainType, defaultOperationCost)
}

// MaxRelIncreaseFor returns the maximum relative travel-time increase
// tolerated for a line.
func (p *Params) MaxRelIncreaseFor(lineID, trainType string) float64 {
	return lookup(p.MaxRelIncrease, lineID, trainType, defaultMaxRelIncrease)
}

// MaxAbsIncreaseFor returns the maximum absolute travel-time increase in
// hours tolerated for a line.
func (p *Params) MaxAbsIncreaseFor(lineID, trainType string) float64 {
	return lookup(p.MaxAbsIncrease, lineID, trainType, defaultMaxAbsIncrease)
}
