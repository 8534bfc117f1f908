package task

import (
	"context"
	"errors"

	"github.com/conclave-run/taskcore/internal/identity"
)

// ErrNotFound indicates no task is stored under the requested id.
var ErrNotFound = errors.New("task: not found")

// Store defines what the task core needs for persistence, without
// depending on a concrete storage engine. Implementations (PostgreSQL,
// in-memory) live in internal/storage.
//
// Pattern: same Dependency Inversion split as the teacher's
// ingestion.Store / storage.APIKeyStore pair - the domain package states
// the contract, internal/storage satisfies it.
type Store interface {
	// Put persists state under the "task" key-prefix, keyed by its
	// TaskID. A Put of an existing TaskID overwrites the prior state -
	// the storage layer is not itself responsible for enforcing the
	// status-monotonicity discipline (§5); that is the caller's CAS
	// responsibility.
	Put(ctx context.Context, state State) error

	// Get loads the State stored under id, or ErrNotFound.
	Get(ctx context.Context, id identity.TaskID) (State, error)

	// FindByIdempotencyKey loads the State created with the given
	// CreationRequest.IdempotencyKey(), or ErrNotFound if no task was
	// ever created with that key. handleCreateTask consults this before
	// calling New so a retried create-task call is a no-op rather than
	// a duplicate task.
	FindByIdempotencyKey(ctx context.Context, key string) (State, error)

	// HealthCheck verifies the storage backend is reachable.
	HealthCheck(ctx context.Context) error
}
