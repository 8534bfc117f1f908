package task

import (
	"errors"
	"testing"

	"github.com/conclave-run/taskcore/internal/identity"
	"github.com/conclave-run/taskcore/internal/taskfile"
)

func newAssignState() State {
	alice := identity.NewUserList(identity.UserID("alice"))
	bob := identity.NewUserList(identity.UserID("bob"))

	return State{
		TaskID:            identity.NewTaskID(),
		Creator:           identity.UserID("alice"),
		InputsOwnership:   taskfile.Owners{"in1": alice},
		OutputsOwnership:  taskfile.Owners{"out1": bob},
		Participants:      identity.NewUserList(identity.UserID("alice"), identity.UserID("bob")),
		ApprovedUsers:     identity.NewUserList(),
		AssignedInputs:    make(taskfile.Files[taskfile.InputFile]),
		AssignedOutputs:   make(taskfile.Files[taskfile.OutputFile]),
		Status:            StatusCreated,
	}
}

func TestAssign_AssignInput_RequesterNotOwner(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	a := &Assign{State: newAssignState()}

	file := taskfile.InputFile{ExternalID: "file-1", Owner: identity.NewUserList(identity.UserID("bob"))}

	err := a.AssignInput(identity.UserID("alice"), "in1", file)
	if !errors.Is(err, ErrRequesterNotOwner) {
		t.Errorf("AssignInput() error = %v, want %v", err, ErrRequesterNotOwner)
	}
}

func TestAssign_AssignInput_OwnerMismatch(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	a := &Assign{State: newAssignState()}

	file := taskfile.InputFile{ExternalID: "file-1", Owner: identity.NewUserList(identity.UserID("carol"))}

	err := a.AssignInput(identity.UserID("carol"), "in1", file)
	if !errors.Is(err, taskfile.ErrOwnerMismatch) {
		t.Errorf("AssignInput() error = %v, want %v", err, taskfile.ErrOwnerMismatch)
	}
}

func TestAssign_AssignInputAndOutput_Success(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	a := &Assign{State: newAssignState()}

	inFile := taskfile.InputFile{ExternalID: "in-file", Owner: identity.NewUserList(identity.UserID("alice"))}
	if err := a.AssignInput(identity.UserID("alice"), "in1", inFile); err != nil {
		t.Fatalf("AssignInput() error = %v", err)
	}

	outFile := taskfile.OutputFile{ExternalID: "out-file", Owner: identity.NewUserList(identity.UserID("bob"))}
	if err := a.AssignOutput(identity.UserID("bob"), "out1", outFile); err != nil {
		t.Fatalf("AssignOutput() error = %v", err)
	}

	if !a.State.AllDataAssigned() {
		t.Error("expected all data to be assigned")
	}
}

func TestApprove_Approve(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	state := newAssignState()
	state.Status = StatusDataAssigned

	ap := &Approve{State: state}

	if err := ap.Approve(identity.UserID("alice")); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if err := ap.Approve(identity.UserID("alice")); err != nil {
		t.Fatalf("second Approve() by the same user should be idempotent, got error = %v", err)
	}

	if !ap.State.ApprovedUsers.Contains(identity.UserID("alice")) {
		t.Error("expected alice to be recorded as approved")
	}
}

func TestApprove_Approve_UnexpectedApprover(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	ap := &Approve{State: newAssignState()}

	err := ap.Approve(identity.UserID("carol"))
	if !errors.Is(err, ErrUnexpectedApprover) {
		t.Errorf("Approve() error = %v, want %v", err, ErrUnexpectedApprover)
	}
}

func TestStage_StageForRunning_NotCreator(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	s := &Stage{State: newAssignState()}

	_, err := s.StageForRunning(identity.UserID("bob"), testFunction())
	if !errors.Is(err, ErrNotTaskCreator) {
		t.Errorf("StageForRunning() error = %v, want %v", err, ErrNotTaskCreator)
	}
}

func TestStage_StageForRunning_Success(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	s := &Stage{State: newAssignState()}

	staged, err := s.StageForRunning(identity.UserID("alice"), testFunction())
	if err != nil {
		t.Fatalf("StageForRunning() error = %v", err)
	}

	if staged.TaskID != s.State.TaskID {
		t.Error("expected the dispatch record to carry the task's id")
	}
}

func TestFinish_UpdateOutputCMAC(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	state := newAssignState()
	state.AssignedOutputs = taskfile.Files[taskfile.OutputFile]{
		"out1": {ExternalID: "out-file", Owner: identity.NewUserList(identity.UserID("bob"))},
	}

	f := &Finish{State: state}

	of, err := f.UpdateOutputCMAC("out1", "tag-1")
	if err != nil {
		t.Fatalf("UpdateOutputCMAC() error = %v", err)
	}
	if of.CMAC != "tag-1" {
		t.Errorf("CMAC = %q, want %q", of.CMAC, "tag-1")
	}

	if _, err := f.UpdateOutputCMAC("out1", "tag-2"); !errors.Is(err, taskfile.ErrCMACAlreadySet) {
		t.Errorf("UpdateOutputCMAC() conflicting re-tag error = %v, want %v", err, taskfile.ErrCMACAlreadySet)
	}

	if _, err := f.UpdateOutputCMAC("out1", "tag-1"); err != nil {
		t.Errorf("UpdateOutputCMAC() identical re-tag should succeed, got error = %v", err)
	}
}

func TestFinish_UpdateResult_FailureSetsStatus(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	f := &Finish{State: newAssignState()}

	f.UpdateResult(NewFailureResult("boom"))

	if f.State.Status != StatusFailed {
		t.Errorf("Status = %v, want %v", f.State.Status, StatusFailed)
	}
}

func TestDone_Persist(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	d := &Done{State: newAssignState()}
	d.State.Result = NewSuccessResult([]byte("ok"))

	final := d.Persist()
	if final.Status != StatusFinished {
		t.Errorf("Status = %v, want %v", final.Status, StatusFinished)
	}
}
