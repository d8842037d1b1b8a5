package scheduling

// Default costs applied when a project or resource has no explicit entry and
// no "*" fallback is configured.
const (
	defaultCancellationCost = 100
	defaultResourceCost     = 1
)

// Params holds the cost parameters of the scheduling model. Cancellation and
// resource costs are keyed by id with "*" as the configurable fallback.
type Params struct {
	BlockingCost       float64
	CoordinationFactor float64
	CancellationCost   map[string]float64
	ResourceCost       map[string]float64
}

// NewParams returns parameters with the standard defaults.
func NewParams() *Params {
	return &Params{
		BlockingCost:       1.0,
		CoordinationFactor: 0.5,
		CancellationCost:   map[string]float64{},
		ResourceCost:       map[string]float64{},
	}
}

// SetCoordinationFactor clamps v into [0,1].
func (p *Params) SetCoordinationFactor(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	p.CoordinationFactor = v
}

// CancellationCostFor returns the cancellation cost of a project, falling
// back to the "*" entry and then the built-in default.
func (p *Params) CancellationCostFor(projectID string) float64 {
	if c, ok := p.CancellationCost[projectID]; ok {
		return c
	}
	if c, ok := p.CancellationCost["*"]; ok {
		return c
	}
	return defaultCancellationCost
}

// ResourceCostFor returns the per-unit cost of a resource, falling back to
// the "*" entry and then the built-in default.
func (p *Params) ResourceCostFor(resourceID string) float64 {
	if c, ok := p.ResourceCost[resourceID]; ok {
		return c
	}
	if c, ok := p.ResourceCost["*"]; ok {
		return c
	}
	return defaultResourceCost
}
