package storage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/conclave-run/taskcore/internal/identity"
	"github.com/conclave-run/taskcore/internal/task"
)

func newTestTaskState() task.State {
	return task.State{
		TaskID:            identity.NewTaskID(),
		Creator:           identity.UserID("user-1"),
		FunctionID:        identity.ExternalID("func-1"),
		FunctionOwner:     identity.UserID("user-1"),
		FunctionArguments: map[string]string{"arg": "input"},
		Executor:          "executor-1",
		Participants:      identity.UserList{},
		ApprovedUsers:     identity.UserList{},
		Status:            task.StatusCreated,
	}
}

func TestInMemoryTaskStorePutGet(t *testing.T) {
	store := NewInMemoryTaskStore()
	ctx := context.Background()

	state := newTestTaskState()

	if err := store.Put(ctx, state); err != nil {
		t.Fatalf("Put() unexpected error: %v", err)
	}

	got, err := store.Get(ctx, state.TaskID)
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}

	if got.TaskID != state.TaskID {
		t.Errorf("Get() TaskID = %v, want %v", got.TaskID, state.TaskID)
	}

	if got.Status != state.Status {
		t.Errorf("Get() Status = %v, want %v", got.Status, state.Status)
	}
}

func TestInMemoryTaskStoreGetNotFound(t *testing.T) {
	store := NewInMemoryTaskStore()

	_, err := store.Get(context.Background(), identity.NewTaskID())
	if !errors.Is(err, task.ErrNotFound) {
		t.Errorf("Get() error = %v, want %v", err, task.ErrNotFound)
	}
}

func TestInMemoryTaskStorePutOverwrites(t *testing.T) {
	store := NewInMemoryTaskStore()
	ctx := context.Background()

	state := newTestTaskState()

	if err := store.Put(ctx, state); err != nil {
		t.Fatalf("Put() unexpected error: %v", err)
	}

	state.Status = task.StatusDataAssigned

	if err := store.Put(ctx, state); err != nil {
		t.Fatalf("Put() unexpected error on overwrite: %v", err)
	}

	got, err := store.Get(ctx, state.TaskID)
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}

	if got.Status != task.StatusDataAssigned {
		t.Errorf("Get() Status = %v, want %v", got.Status, task.StatusDataAssigned)
	}
}

func TestInMemoryTaskStoreFindByIdempotencyKey(t *testing.T) {
	store := NewInMemoryTaskStore()
	ctx := context.Background()

	state := newTestTaskState()
	state.IdempotencyKey = "idem-key-1"

	if err := store.Put(ctx, state); err != nil {
		t.Fatalf("Put() unexpected error: %v", err)
	}

	got, err := store.FindByIdempotencyKey(ctx, "idem-key-1")
	if err != nil {
		t.Fatalf("FindByIdempotencyKey() unexpected error: %v", err)
	}

	if got.TaskID != state.TaskID {
		t.Errorf("FindByIdempotencyKey() TaskID = %v, want %v", got.TaskID, state.TaskID)
	}
}

func TestInMemoryTaskStoreFindByIdempotencyKeyNotFound(t *testing.T) {
	store := NewInMemoryTaskStore()

	_, err := store.FindByIdempotencyKey(context.Background(), "missing-key")
	if !errors.Is(err, task.ErrNotFound) {
		t.Errorf("FindByIdempotencyKey() error = %v, want %v", err, task.ErrNotFound)
	}
}

func TestInMemoryTaskStoreHealthCheck(t *testing.T) {
	store := NewInMemoryTaskStore()

	if err := store.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() unexpected error: %v", err)
	}
}

func TestInMemoryTaskStoreConcurrency(t *testing.T) {
	store := NewInMemoryTaskStore()
	ctx := context.Background()

	const workers = 50

	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			state := newTestTaskState()
			if err := store.Put(ctx, state); err != nil {
				t.Errorf("concurrent Put() unexpected error: %v", err)
			}

			if _, err := store.Get(ctx, state.TaskID); err != nil {
				t.Errorf("concurrent Get() unexpected error: %v", err)
			}
		}()
	}

	wg.Wait()
}
