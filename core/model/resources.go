package model

import "fmt"

// Resource is a shared maintenance resource (crew, machine) with a per-period
// capacity.
type Resource struct {
	ID       string
	Name     string
	Capacity float64
}

// Resources holds all resources of a problem.
type Resources struct {
	Resources map[string]Resource
	order     []string
}

// NewResources returns an empty resource set.
func NewResources() *Resources {
	return &Resources{Resources: map[string]Resource{}}
}

// Add inserts a resource, keeping insertion order.
func (r *Resources) Add(res Resource) {
	if _, ok := r.Resources[res.ID]; !ok {
		r.order = append(r.order, res.ID)
	}
	r.Resources[res.ID] = res
}

// IDs returns all resource ids in insertion order.
func (r *Resources) IDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Capacity returns the capacity of a resource, zero for unknown ids.
func (r *Resources) Capacity(id string) float64 {
	if res, ok := r.Resources[id]; ok {
		return res.Capacity
	}
	return 0
}

func (r *Resources) String() string {
	return fmt.Sprintf("%d resources defined", len(r.Resources))
}
