package task

import (
	"github.com/google/uuid"

	"github.com/conclave-run/taskcore/internal/identity"
	"github.com/conclave-run/taskcore/internal/taskfile"
)

// State is the canonical persisted record of a task: the single, stable
// shape every typed view converts to and from. Whatever view last held a
// task in memory, State is the ground truth written to storage.
type State struct {
	TaskID identity.TaskID

	// IdempotencyKey is CreationRequest.IdempotencyKey() at the moment
	// this task was created. A Store consults it at creation time so a
	// retried create-task call finds the existing task instead of
	// minting a duplicate; it never changes across a task's lifetime.
	IdempotencyKey    string
	Creator           identity.UserID
	FunctionID        identity.ExternalID
	FunctionOwner     identity.UserID
	FunctionArguments map[string]string
	Executor          string
	InputsOwnership   taskfile.Owners
	OutputsOwnership  taskfile.Owners
	Participants      identity.UserList
	ApprovedUsers     identity.UserList
	AssignedInputs    taskfile.Files[taskfile.InputFile]
	AssignedOutputs   taskfile.Files[taskfile.OutputFile]
	Result            Result
	Status            Status
}

// Storable is the dependency-inversion contract internal/storage depends
// on: the key-prefix a TaskState is stored under, and the identity used as
// its within-prefix key.
type Storable interface {
	KeyPrefix() string
	UUID() uuid.UUID
}

// taskKeyPrefix is the storage key-prefix every TaskState is persisted under.
const taskKeyPrefix = "task"

// KeyPrefix implements Storable.
func (s State) KeyPrefix() string {
	return taskKeyPrefix
}

// UUID implements Storable.
func (s State) UUID() uuid.UUID {
	return uuid.UUID(s.TaskID)
}

// EveryoneApproved reports whether I9 holds: a single-participant task is
// auto-approved by its creator; otherwise every participant must have
// approved.
func (s State) EveryoneApproved() bool {
	return s.Participants.Len() == 1 || s.Participants.Equal(s.ApprovedUsers)
}

// AllDataAssigned reports whether I8's key-set half holds: every declared
// input and output name has a bound file. Owner-set equality for each
// name is enforced at assignment time (taskfile.Owners.Check), not
// re-checked here.
func (s State) AllDataAssigned() bool {
	return keySetsEqual(s.InputsOwnership.KeySet(), s.AssignedInputs.KeySet()) &&
		keySetsEqual(s.OutputsOwnership.KeySet(), s.AssignedOutputs.KeySet())
}

// HasParticipant reports whether user is among the task's participants.
func (s State) HasParticipant(user identity.UserID) bool {
	return s.Participants.Contains(user)
}

// HasCreator reports whether user is the task's creator.
func (s State) HasCreator(user identity.UserID) bool {
	return s.Creator == user
}

func keySetsEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}

	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}

	return true
}
