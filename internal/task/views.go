package task

import (
	"fmt"

	"github.com/conclave-run/taskcore/internal/dispatch"
	"github.com/conclave-run/taskcore/internal/function"
	"github.com/conclave-run/taskcore/internal/identity"
	"github.com/conclave-run/taskcore/internal/taskfile"
)

type (
	// Assign wraps a TaskState whose declared inputs and outputs are
	// still being bound to concrete files.
	Assign struct {
		State State
	}

	// Approve wraps a TaskState whose data is fully assigned and is now
	// collecting participant approvals.
	Approve struct {
		State State
	}

	// Stage wraps a TaskState every participant has approved; only the
	// creator may advance it further.
	Stage struct {
		State State
	}

	// Run wraps a TaskState the executor has picked up but not yet
	// reported on. It exposes no mutators of its own.
	Run struct {
		State State
	}

	// Finish wraps a TaskState the executor has reported completion for,
	// pending output tagging and a final result.
	Finish struct {
		State State
	}

	// Done wraps a terminal TaskState. It exposes no mutators.
	Done struct {
		State State
	}
)

// AssignInput binds file to the declared input name, on behalf of requester.
func (a *Assign) AssignInput(requester identity.UserID, name string, file taskfile.InputFile) error {
	if !file.Owner.Contains(requester) {
		return fmt.Errorf("%w: %q", ErrRequesterNotOwner, file.ExternalID)
	}

	if err := a.State.InputsOwnership.Check(name, file.Owner); err != nil {
		return err
	}

	return a.State.AssignedInputs.Assign(name, file)
}

// AssignOutput binds file to the declared output name, on behalf of requester.
func (a *Assign) AssignOutput(requester identity.UserID, name string, file taskfile.OutputFile) error {
	if !file.Owner.Contains(requester) {
		return fmt.Errorf("%w: %q", ErrRequesterNotOwner, file.ExternalID)
	}

	if err := a.State.OutputsOwnership.Check(name, file.Owner); err != nil {
		return err
	}

	return a.State.AssignedOutputs.Assign(name, file)
}

// Approve records requester's approval. Idempotent: approving twice as
// the same user is a no-op.
func (a *Approve) Approve(requester identity.UserID) error {
	if !a.State.HasParticipant(requester) {
		return fmt.Errorf("%w: %q", ErrUnexpectedApprover, requester)
	}

	a.State.ApprovedUsers.Insert(requester)

	return nil
}

// StageForRunning produces the StagedTask dispatch record, on behalf of
// requester, who must be the task's creator. A non-creator approval,
// however unanimous, does not suffice.
func (s *Stage) StageForRunning(requester identity.UserID, fn function.Descriptor) (dispatch.StagedTask, error) {
	if !s.State.HasCreator(requester) {
		return dispatch.StagedTask{}, ErrNotTaskCreator
	}

	return dispatch.StagedTask{
		TaskID:          s.State.TaskID,
		Executor:        s.State.Executor,
		ExecutorType:    fn.ExecutorType,
		FunctionID:      fn.ID,
		FunctionName:    fn.Name,
		FunctionPayload: fn.Payload,
		FunctionArgs:    s.State.FunctionArguments,
		InputData:       s.State.AssignedInputs,
		OutputData:      s.State.AssignedOutputs,
	}, nil
}

// UpdateOutputCMAC attaches authTag to the named output file. Fails if
// the name is unbound. Re-tagging an output that already carries a tag
// is rejected unless authTag is byte-identical to the existing one.
func (f *Finish) UpdateOutputCMAC(name string, authTag taskfile.FileAuthTag) (*taskfile.OutputFile, error) {
	return taskfile.UpdateOutputCMAC(f.State.AssignedOutputs, name, authTag)
}

// UpdateResult sets the task's final result.
func (f *Finish) UpdateResult(result Result) {
	f.State.Result = result

	if result.Kind == ResultFailureKind {
		f.State.Status = StatusFailed
	}
}

// Persist writes the task's terminal record. Unlike every other view,
// Done never auto-advances further on persistence: once a task reaches
// Done its TaskState is read-only, whether its Result is success or
// failure.
func (d *Done) Persist() State {
	if d.State.Result.Kind != ResultFailureKind {
		d.State.Status = StatusFinished
	}

	return d.State
}
