package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/conclave-run/taskcore/internal/function"
	"github.com/conclave-run/taskcore/internal/identity"
)

func newTestDescriptor() function.Descriptor {
	return function.Descriptor{
		ID:            identity.ExternalID("func-1"),
		Owner:         identity.UserID("owner-1"),
		Public:        true,
		ArgumentNames: []string{"arg"},
		InputNames:    []string{"in"},
		OutputNames:   []string{"out"},
		ExecutorType:  function.ExecutorType("enclave"),
		Name:          "test-function",
	}
}

func TestInMemoryFunctionRegistryRegisterGet(t *testing.T) {
	registry := NewInMemoryFunctionRegistry()
	descriptor := newTestDescriptor()

	registry.Register(descriptor)

	got, err := registry.Get(context.Background(), descriptor.ID)
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}

	if got.ID != descriptor.ID {
		t.Errorf("Get() ID = %v, want %v", got.ID, descriptor.ID)
	}

	if got.Name != descriptor.Name {
		t.Errorf("Get() Name = %v, want %v", got.Name, descriptor.Name)
	}
}

func TestInMemoryFunctionRegistryGetNotFound(t *testing.T) {
	registry := NewInMemoryFunctionRegistry()

	_, err := registry.Get(context.Background(), identity.ExternalID("missing"))
	if !errors.Is(err, function.ErrNotFound) {
		t.Errorf("Get() error = %v, want %v", err, function.ErrNotFound)
	}
}

func TestInMemoryFunctionRegistryRegisterOverwrites(t *testing.T) {
	registry := NewInMemoryFunctionRegistry()
	descriptor := newTestDescriptor()

	registry.Register(descriptor)

	descriptor.Name = "renamed-function"
	registry.Register(descriptor)

	got, err := registry.Get(context.Background(), descriptor.ID)
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}

	if got.Name != "renamed-function" {
		t.Errorf("Get() Name = %v, want %v", got.Name, "renamed-function")
	}
}
