package task

import (
	"testing"

	"github.com/conclave-run/taskcore/internal/identity"
	"github.com/conclave-run/taskcore/internal/taskfile"
)

func TestState_EveryoneApproved(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	alice := identity.UserID("alice")
	bob := identity.UserID("bob")

	tests := []struct {
		name         string
		participants identity.UserList
		approved     identity.UserList
		want         bool
	}{
		{"single participant needs no approval", identity.NewUserList(alice), identity.NewUserList(), true},
		{"all participants approved", identity.NewUserList(alice, bob), identity.NewUserList(alice, bob), true},
		{"partial approval", identity.NewUserList(alice, bob), identity.NewUserList(alice), false},
		{"no approvals", identity.NewUserList(alice, bob), identity.NewUserList(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := State{Participants: tt.participants, ApprovedUsers: tt.approved}
			if got := s.EveryoneApproved(); got != tt.want {
				t.Errorf("EveryoneApproved() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestState_AllDataAssigned(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	owner := identity.NewUserList(identity.UserID("alice"))

	declared := taskfile.Owners{"in1": owner, "out1": owner}

	tests := []struct {
		name    string
		inputs  taskfile.Files[taskfile.InputFile]
		outputs taskfile.Files[taskfile.OutputFile]
		want    bool
	}{
		{
			name:    "fully assigned",
			inputs:  taskfile.Files[taskfile.InputFile]{"in1": {}},
			outputs: taskfile.Files[taskfile.OutputFile]{"out1": {}},
			want:    true,
		},
		{
			name:    "missing output",
			inputs:  taskfile.Files[taskfile.InputFile]{"in1": {}},
			outputs: taskfile.Files[taskfile.OutputFile]{},
			want:    false,
		},
		{
			name:    "nothing assigned",
			inputs:  taskfile.Files[taskfile.InputFile]{},
			outputs: taskfile.Files[taskfile.OutputFile]{},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := State{
				InputsOwnership:  taskfile.Owners{"in1": declared["in1"]},
				OutputsOwnership: taskfile.Owners{"out1": declared["out1"]},
				AssignedInputs:   tt.inputs,
				AssignedOutputs:  tt.outputs,
			}
			if got := s.AllDataAssigned(); got != tt.want {
				t.Errorf("AllDataAssigned() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestState_HasParticipantAndCreator(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	alice := identity.UserID("alice")
	bob := identity.UserID("bob")

	s := State{Creator: alice, Participants: identity.NewUserList(alice, bob)}

	if !s.HasParticipant(bob) {
		t.Error("expected bob to be a participant")
	}
	if s.HasParticipant(identity.UserID("carol")) {
		t.Error("did not expect carol to be a participant")
	}
	if !s.HasCreator(alice) {
		t.Error("expected alice to be the creator")
	}
	if s.HasCreator(bob) {
		t.Error("did not expect bob to be the creator")
	}
}
