package personality

import (
	"fmt"

	"github.com/aristath/quirk/internal/domain"
	"github.com/aristath/quirk/internal/store"
)

// ErrNotFound is returned when a personality id is not in the registry.
var ErrNotFound = fmt.Errorf("personality not found")

// Registry holds the live personality objects by id. The evolution engine
// mutates traits through Mutate so readers never observe a half-applied
// change.
type Registry struct {
	personalities *store.Keyed[*domain.TradingPersonality]
}

// NewRegistry creates an empty personality registry.
func NewRegistry() *Registry {
	return &Registry{personalities: store.NewKeyed[*domain.TradingPersonality]()}
}

// Add registers a personality, replacing any previous entry with the same id.
func (r *Registry) Add(p *domain.TradingPersonality) {
	r.personalities.Put(p.ID, p)
}

// Get returns the personality by id.
func (r *Registry) Get(id string) (*domain.TradingPersonality, error) {
	p, ok := r.personalities.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, nil
}

// Mutate applies fn to the personality under the registry's write lock.
func (r *Registry) Mutate(id string, fn func(p *domain.TradingPersonality)) error {
	ok := r.personalities.Update(id, func(p *domain.TradingPersonality) *domain.TradingPersonality {
		fn(p)
		return p
	})
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Remove deletes the personality. Removing an unknown id is a no-op.
func (r *Registry) Remove(id string) {
	r.personalities.Delete(id)
}

// IDs lists the registered personality ids.
func (r *Registry) IDs() []string {
	return r.personalities.Keys()
}

// Len returns the number of registered personalities.
func (r *Registry) Len() int {
	return r.personalities.Len()
}
