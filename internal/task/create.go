package task

import (
	"fmt"

	"github.com/conclave-run/taskcore/internal/canonicalization"
	"github.com/conclave-run/taskcore/internal/function"
	"github.com/conclave-run/taskcore/internal/identity"
	"github.com/conclave-run/taskcore/internal/taskfile"
)

// CreationRequest is the input to New: everything a requester supplies to
// define a task, validated against a function descriptor.
type CreationRequest struct {
	Requester         identity.UserID
	Executor          string
	FunctionArguments map[string]string
	InputsOwnership   taskfile.Owners
	OutputsOwnership  taskfile.Owners
	Function          function.Descriptor
}

// IdempotencyKey returns a deterministic key for deduplicating repeated
// creation requests - a retried create-task call with identical content is
// a no-op rather than a second task.
func (r CreationRequest) IdempotencyKey() string {
	return canonicalization.GenerateIdempotencyKeyFromParts(
		string(r.Requester),
		string(r.Function.ID),
		r.Executor,
		fmt.Sprintf("%v", r.FunctionArguments),
		fmt.Sprintf("%v", r.InputsOwnership),
		fmt.Sprintf("%v", r.OutputsOwnership),
	)
}

// Create is the view returned by New: a freshly constructed task, not yet
// persisted.
type Create struct {
	State State
}

// New validates req against function and, on success, constructs a fresh
// Create view with a newly allocated TaskID.
//
// Validation order matches the source: argument keys, then input keys,
// then output keys, each reported as a distinct, client-matchable error.
func New(req CreationRequest) (Create, error) {
	participants := identity.UnionUserLists(
		req.InputsOwnership.AllOwners(),
		req.OutputsOwnership.AllOwners(),
	)
	participants.Insert(req.Requester)

	if !req.Function.Public {
		participants.Insert(req.Function.Owner)
	}

	if !keySetsEqual(namesToSet(req.FunctionArguments), req.Function.ArgumentSet()) {
		return Create{}, ErrFunctionArgumentsMismatch
	}

	if !keySetsEqual(req.InputsOwnership.KeySet(), req.Function.InputSet()) {
		return Create{}, ErrInputKeysMismatch
	}

	if !keySetsEqual(req.OutputsOwnership.KeySet(), req.Function.OutputSet()) {
		return Create{}, ErrOutputKeysMismatch
	}

	state := State{
		TaskID:            identity.NewTaskID(),
		IdempotencyKey:    req.IdempotencyKey(),
		Creator:           req.Requester,
		Executor:          req.Executor,
		FunctionID:        req.Function.ID,
		FunctionOwner:     req.Function.Owner,
		FunctionArguments: req.FunctionArguments,
		InputsOwnership:   req.InputsOwnership,
		OutputsOwnership:  req.OutputsOwnership,
		Participants:      participants,
		ApprovedUsers:     identity.NewUserList(),
		AssignedInputs:    make(taskfile.Files[taskfile.InputFile]),
		AssignedOutputs:   make(taskfile.Files[taskfile.OutputFile]),
		Status:            StatusCreated,
	}

	return Create{State: state}, nil
}

func namesToSet(m map[string]string) map[string]struct{} {
	set := make(map[string]struct{}, len(m))
	for k := range m {
		set[k] = struct{}{}
	}

	return set
}
