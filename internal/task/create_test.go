package task

import (
	"errors"
	"testing"

	"github.com/conclave-run/taskcore/internal/function"
	"github.com/conclave-run/taskcore/internal/identity"
	"github.com/conclave-run/taskcore/internal/taskfile"
)

func testFunction() function.Descriptor {
	return function.Descriptor{
		ID:            identity.ExternalID("fn-1"),
		Owner:         identity.UserID("owner"),
		Public:        true,
		ArgumentNames: []string{"threshold"},
		InputNames:    []string{"in1"},
		OutputNames:   []string{"out1"},
		Name:          "classify",
	}
}

func testRequest() CreationRequest {
	alice := identity.NewUserList(identity.UserID("alice"))

	return CreationRequest{
		Requester:         identity.UserID("alice"),
		Executor:          "executor-1",
		FunctionArguments: map[string]string{"threshold": "0.5"},
		InputsOwnership:   taskfile.Owners{"in1": alice},
		OutputsOwnership:  taskfile.Owners{"out1": alice},
		Function:          testFunction(),
	}
}

func TestNew_Success(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	c, err := New(testRequest())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if c.State.TaskID.IsZero() {
		t.Error("expected a non-zero TaskID")
	}
	if c.State.Status != StatusCreated {
		t.Errorf("Status = %v, want %v", c.State.Status, StatusCreated)
	}
	if !c.State.HasParticipant(identity.UserID("alice")) {
		t.Error("expected requester to be a participant")
	}
}

func TestNew_PrivateFunctionOwnerIsParticipant(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	req := testRequest()
	req.Function.Public = false
	req.Function.Owner = identity.UserID("fn-owner")

	c, err := New(req)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if !c.State.HasParticipant(identity.UserID("fn-owner")) {
		t.Error("expected private function owner to be a participant")
	}
}

func TestNew_ValidationOrder(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	tests := []struct {
		name    string
		mutate  func(*CreationRequest)
		wantErr error
	}{
		{
			name:    "argument mismatch reported first",
			mutate:  func(r *CreationRequest) { r.FunctionArguments = map[string]string{"wrong": "1"} },
			wantErr: ErrFunctionArgumentsMismatch,
		},
		{
			name:    "input key mismatch",
			mutate:  func(r *CreationRequest) { r.InputsOwnership = taskfile.Owners{"wrong": identity.NewUserList()} },
			wantErr: ErrInputKeysMismatch,
		},
		{
			name:    "output key mismatch",
			mutate:  func(r *CreationRequest) { r.OutputsOwnership = taskfile.Owners{"wrong": identity.NewUserList()} },
			wantErr: ErrOutputKeysMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testRequest()
			tt.mutate(&req)

			_, err := New(req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreationRequest_IdempotencyKey_Deterministic(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	r1 := testRequest()
	r2 := testRequest()

	if r1.IdempotencyKey() != r2.IdempotencyKey() {
		t.Error("expected identical requests to produce the same idempotency key")
	}

	r3 := testRequest()
	r3.Executor = "executor-2"

	if r1.IdempotencyKey() == r3.IdempotencyKey() {
		t.Error("expected a changed executor to change the idempotency key")
	}
}
