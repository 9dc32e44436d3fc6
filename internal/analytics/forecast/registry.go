package forecast

import (
	"github.com/soltixdb/lagforest/internal/schema"
)

// Registry maps entity identifiers to their fitted models. It is built once
// per training run and treated as an immutable snapshot afterwards.
type Registry struct {
	Schema schema.Schema
	Models map[string]*EntityModel
	// Order lists every entity seen at training time, in first-encountered
	// order, including entities that could not be fit
	Order []string
}

func newRegistry(s schema.Schema, order []string) *Registry {
	return &Registry{
		Schema: s,
		Models: make(map[string]*EntityModel, len(order)),
		Order:  order,
	}
}

// Get returns the model of an entity
func (r *Registry) Get(id string) (*EntityModel, bool) {
	m, ok := r.Models[id]
	return m, ok
}

// IDs returns the identifiers of fitted entities in training-time order
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.Models))
	for _, id := range r.Order {
		if _, ok := r.Models[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Len returns the number of fitted entities
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Models)
}
