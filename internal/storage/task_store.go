// Package storage provides data storage implementations for the task-lifecycle core.
package storage

import (
	"context"
	"sync"

	"github.com/conclave-run/taskcore/internal/identity"
	"github.com/conclave-run/taskcore/internal/task"
)

// InMemoryTaskStore provides thread-safe in-memory storage for TaskState
// records, keyed by TaskID under the "task" key-prefix (task.Storable).
//
// This is the storage backend used by tests and local development; the
// production backend is PostgresTaskStore.
type InMemoryTaskStore struct {
	mutex         sync.RWMutex
	tasks         map[identity.TaskID]task.State
	idempotencyIx map[string]identity.TaskID
}

// NewInMemoryTaskStore creates a new thread-safe in-memory task store.
func NewInMemoryTaskStore() *InMemoryTaskStore {
	return &InMemoryTaskStore{
		tasks:         make(map[identity.TaskID]task.State),
		idempotencyIx: make(map[string]identity.TaskID),
	}
}

// Put persists state, overwriting any prior record for the same TaskID.
func (s *InMemoryTaskStore) Put(_ context.Context, state task.State) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.tasks[state.TaskID] = state

	if state.IdempotencyKey != "" {
		s.idempotencyIx[state.IdempotencyKey] = state.TaskID
	}

	return nil
}

// Get loads the State stored under id, or task.ErrNotFound.
func (s *InMemoryTaskStore) Get(_ context.Context, id identity.TaskID) (task.State, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	state, ok := s.tasks[id]
	if !ok {
		return task.State{}, task.ErrNotFound
	}

	return state, nil
}

// FindByIdempotencyKey loads the State created with the given key, or
// task.ErrNotFound.
func (s *InMemoryTaskStore) FindByIdempotencyKey(_ context.Context, key string) (task.State, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	id, ok := s.idempotencyIx[key]
	if !ok {
		return task.State{}, task.ErrNotFound
	}

	state, ok := s.tasks[id]
	if !ok {
		return task.State{}, task.ErrNotFound
	}

	return state, nil
}

// HealthCheck always succeeds: the in-memory store has no external dependency.
func (s *InMemoryTaskStore) HealthCheck(context.Context) error {
	return nil
}
