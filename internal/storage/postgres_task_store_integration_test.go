package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/conclave-run/taskcore/internal/identity"
	"github.com/conclave-run/taskcore/internal/task"
)

func TestPostgresTaskStorePutGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, conn := setupTestDatabase(ctx, t)

	defer func() {
		_ = conn.Close()
		_ = container.Terminate(ctx)
	}()

	store := NewPostgresTaskStore(conn)

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

	if got.Creator != state.Creator {
		t.Errorf("Get() Creator = %v, want %v", got.Creator, state.Creator)
	}

	if got.Status != state.Status {
		t.Errorf("Get() Status = %v, want %v", got.Status, state.Status)
	}
}

func TestPostgresTaskStoreUpsert(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, conn := setupTestDatabase(ctx, t)

	defer func() {
		_ = conn.Close()
		_ = container.Terminate(ctx)
	}()

	store := NewPostgresTaskStore(conn)

	state := newTestTaskState()

	if err := store.Put(ctx, state); err != nil {
		t.Fatalf("Put() unexpected error: %v", err)
	}

	state.Status = task.StatusDataAssigned

	if err := store.Put(ctx, state); err != nil {
		t.Fatalf("Put() unexpected error on upsert: %v", err)
	}

	got, err := store.Get(ctx, state.TaskID)
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}

	if got.Status != task.StatusDataAssigned {
		t.Errorf("Get() Status = %v, want %v", got.Status, task.StatusDataAssigned)
	}
}

func TestPostgresTaskStoreFindByIdempotencyKey(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, conn := setupTestDatabase(ctx, t)

	defer func() {
		_ = conn.Close()
		_ = container.Terminate(ctx)
	}()

	store := NewPostgresTaskStore(conn)

	state := newTestTaskState()
	state.IdempotencyKey = "idem-key-pg-1"

	if err := store.Put(ctx, state); err != nil {
		t.Fatalf("Put() unexpected error: %v", err)
	}

	got, err := store.FindByIdempotencyKey(ctx, "idem-key-pg-1")
	if err != nil {
		t.Fatalf("FindByIdempotencyKey() unexpected error: %v", err)
	}

	if got.TaskID != state.TaskID {
		t.Errorf("FindByIdempotencyKey() TaskID = %v, want %v", got.TaskID, state.TaskID)
	}
}

func TestPostgresTaskStoreFindByIdempotencyKeyNotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, conn := setupTestDatabase(ctx, t)

	defer func() {
		_ = conn.Close()
		_ = container.Terminate(ctx)
	}()

	store := NewPostgresTaskStore(conn)

	_, err := store.FindByIdempotencyKey(ctx, "missing-key")
	if !errors.Is(err, task.ErrNotFound) {
		t.Errorf("FindByIdempotencyKey() error = %v, want %v", err, task.ErrNotFound)
	}
}

func TestPostgresTaskStoreGetNotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, conn := setupTestDatabase(ctx, t)

	defer func() {
		_ = conn.Close()
		_ = container.Terminate(ctx)
	}()

	store := NewPostgresTaskStore(conn)

	_, err := store.Get(ctx, identity.NewTaskID())
	if !errors.Is(err, task.ErrNotFound) {
		t.Errorf("Get() error = %v, want %v", err, task.ErrNotFound)
	}
}

func TestPostgresTaskStoreHealthCheck(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, conn := setupTestDatabase(ctx, t)

	defer func() {
		_ = conn.Close()
		_ = container.Terminate(ctx)
	}()

	store := NewPostgresTaskStore(conn)

	if err := store.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() unexpected error: %v", err)
	}
}
