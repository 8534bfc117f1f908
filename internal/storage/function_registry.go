package storage

import (
	"context"
	"sync"

	"github.com/conclave-run/taskcore/internal/function"
	"github.com/conclave-run/taskcore/internal/identity"
)

// InMemoryFunctionRegistry provides thread-safe in-memory storage for
// function descriptors. It is the registry backend used by tests and
// local development; a production deployment registers against whatever
// external function-registry service owns the real Descriptors.
type InMemoryFunctionRegistry struct {
	mutex       sync.RWMutex
	descriptors map[identity.ExternalID]function.Descriptor
}

// NewInMemoryFunctionRegistry creates a new thread-safe in-memory function registry.
func NewInMemoryFunctionRegistry() *InMemoryFunctionRegistry {
	return &InMemoryFunctionRegistry{
		descriptors: make(map[identity.ExternalID]function.Descriptor),
	}
}

// Register adds or replaces the Descriptor registered under d.ID.
func (r *InMemoryFunctionRegistry) Register(d function.Descriptor) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.descriptors[d.ID] = d
}

// Get implements function.Registry.
func (r *InMemoryFunctionRegistry) Get(_ context.Context, id identity.ExternalID) (function.Descriptor, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	d, ok := r.descriptors[id]
	if !ok {
		return function.Descriptor{}, function.ErrNotFound
	}

	return d, nil
}
