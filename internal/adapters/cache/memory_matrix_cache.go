package cache

import (
	"context"
	"sync"

	"delivery-optimizer/internal/ports"
)

// MemoryMatrixCache is an in-process cache of directed travel legs keyed
// by rounded coordinate pairs. It lives for the process lifetime.
//
// Reads take a shared lock and never wait for fills; writes serialize per
// key so a miss is resolved by a single writer.
type MemoryMatrixCache struct {
	mu   sync.RWMutex
	legs map[ports.PairKey]ports.TravelLeg

	guardMu sync.Mutex
	guards  map[ports.PairKey]*sync.Mutex
}

func NewMemoryMatrixCache() *MemoryMatrixCache {
	return &MemoryMatrixCache{
		legs:   make(map[ports.PairKey]ports.TravelLeg),
		guards: make(map[ports.PairKey]*sync.Mutex),
	}
}

// GetMany returns the cached legs for the given keys. Missing keys are
// simply absent from the result.
func (c *MemoryMatrixCache) GetMany(_ context.Context, keys []ports.PairKey) (map[ports.PairKey]ports.TravelLeg, error) {
	out := make(map[ports.PairKey]ports.TravelLeg, len(keys))

	c.mu.RLock()
	for _, k := range keys {
		if leg, ok := c.legs[k]; ok {
			out[k] = leg
		}
	}
	c.mu.RUnlock()

	return out, nil
}

// PutMany stores legs, serializing writers per key.
func (c *MemoryMatrixCache) PutMany(_ context.Context, legs map[ports.PairKey]ports.TravelLeg) error {
	for k, leg := range legs {
		g := c.guard(k)
		g.Lock()
		c.mu.Lock()
		c.legs[k] = leg
		c.mu.Unlock()
		g.Unlock()
	}
	return nil
}

// Len reports the number of cached pairs.
func (c *MemoryMatrixCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.legs)
}

func (c *MemoryMatrixCache) guard(k ports.PairKey) *sync.Mutex {
	c.guardMu.Lock()
	defer c.guardMu.Unlock()

	g, ok := c.guards[k]
	if !ok {
		g = &sync.Mutex{}
		c.guards[k] = g
	}
	return g
}
