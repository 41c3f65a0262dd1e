package provider

import (
	"sync"

	"audiocodec-go/errcode"
	"audiocodec-go/services/hal/internal/core"

	"tinygo.org/x/drivers"
)

// Registry hands out serialised I2C owners. Several devices may share one
// bus; each device may claim a bus once.
type Registry struct {
	mu     sync.Mutex
	owners map[core.ResourceID]*i2cOwner
	claims map[core.ResourceID]map[string]struct{}
}

var _ core.ResourceRegistry = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{
		owners: make(map[core.ResourceID]*i2cOwner),
		claims: make(map[core.ResourceID]map[string]struct{}),
	}
}

// AddI2C registers hw under id and starts its worker. Re-adding an id
// replaces the previous owner.
func (r *Registry) AddI2C(id core.ResourceID, hw drivers.I2C) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o := r.owners[id]; o != nil {
		o.stop()
	}
	r.owners[id] = newI2COwner(id, hw)
}

func (r *Registry) ClaimI2C(devID string, id core.ResourceID) (core.I2COwner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := r.owners[id]
	if o == nil {
		return nil, errcode.UnknownBus
	}
	c := r.claims[id]
	if c == nil {
		c = make(map[string]struct{})
		r.claims[id] = c
	}
	if _, taken := c[devID]; taken {
		return nil, errcode.BusInUse
	}
	c[devID] = struct{}{}
	return o, nil
}

func (r *Registry) ReleaseI2C(devID string, id core.ResourceID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.claims[id], devID)
}

// Close stops every bus worker.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, o := range r.owners {
		o.stop()
		delete(r.owners, id)
	}
}
