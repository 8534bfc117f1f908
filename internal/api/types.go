// Package api provides the HTTP API server implementation for the task-lifecycle core.
package api

import (
	"github.com/conclave-run/taskcore/internal/identity"
	"github.com/conclave-run/taskcore/internal/task"
	"github.com/conclave-run/taskcore/internal/taskfile"
)

type (
	// CreateTaskRequest is the payload for POST /api/v1/tasks.
	CreateTaskRequest struct {
		Requester         string            `json:"requester"`
		Executor          string            `json:"executor"`
		FunctionID        string            `json:"function_id"`        //nolint:tagliatelle
		FunctionArguments map[string]string `json:"function_arguments"` //nolint:tagliatelle
		InputsOwnership   map[string][]string `json:"inputs_ownership"`  //nolint:tagliatelle
		OutputsOwnership  map[string][]string `json:"outputs_ownership"` //nolint:tagliatelle
	}

	// AssignFileRequest is the payload for PUT /api/v1/tasks/{id}/inputs/{name}
	// and PUT /api/v1/tasks/{id}/outputs/{name}.
	AssignFileRequest struct {
		Requester  string   `json:"requester"`
		ExternalID string   `json:"external_id"` //nolint:tagliatelle
		Owners     []string `json:"owners"`
	}

	// ApproveRequest is the payload for POST /api/v1/tasks/{id}/approve.
	ApproveRequest struct {
		Requester string `json:"requester"`
	}

	// StageRequest is the payload for POST /api/v1/tasks/{id}/stage.
	StageRequest struct {
		Requester string `json:"requester"`
	}

	// UpdateOutputCMACRequest is the payload for
	// POST /api/v1/tasks/{id}/outputs/{name}/cmac.
	UpdateOutputCMACRequest struct {
		AuthTag string `json:"auth_tag"` //nolint:tagliatelle
	}

	// UpdateResultRequest is the payload for POST /api/v1/tasks/{id}/result.
	// Kind is either "success" or "failure"; exactly one of Success/Failure
	// is expected to carry content for the corresponding Kind.
	UpdateResultRequest struct {
		Kind    string `json:"kind"`
		Success []byte `json:"success,omitempty"`
		Failure string `json:"failure,omitempty"`
	}

	// TaskResponse is the read view returned by GET /api/v1/tasks/{id} and
	// by every mutating endpoint once its transition has been persisted.
	TaskResponse struct {
		TaskID            string            `json:"task_id"`            //nolint:tagliatelle
		Status            string            `json:"status"`
		Creator           string            `json:"creator"`
		Executor          string            `json:"executor"`
		FunctionID        string            `json:"function_id"`        //nolint:tagliatelle
		FunctionArguments map[string]string `json:"function_arguments"` //nolint:tagliatelle
		Participants      []string          `json:"participants"`
		ApprovedUsers     []string          `json:"approved_users"`  //nolint:tagliatelle
		AssignedInputs    map[string]string `json:"assigned_inputs"` //nolint:tagliatelle
		AssignedOutputs   map[string]string `json:"assigned_outputs"` //nolint:tagliatelle
		Result            *ResultResponse   `json:"result,omitempty"`
	}

	// ResultResponse is the JSON view of a task.Result.
	ResultResponse struct {
		Kind    string `json:"kind"`
		Success []byte `json:"success,omitempty"`
		Failure string `json:"failure,omitempty"`
	}
)

// resolveUser maps a wire-supplied user string to its canonical UserID,
// through the identity alias resolver if one is configured, so the same
// human is recognized whether they were named by an SSO email, an LDAP
// DN, or an already-canonical id.
func (s *Server) resolveUser(raw string) identity.UserID {
	return s.identities.Resolve(raw)
}

func (s *Server) resolveUserList(users []string) identity.UserList {
	ul := make(identity.UserList, len(users))
	for _, u := range users {
		ul.Insert(s.resolveUser(u))
	}

	return ul
}

func (s *Server) resolveOwnership(m map[string][]string) taskfile.Owners {
	owners := make(taskfile.Owners, len(m))
	for name, users := range m {
		owners[name] = s.resolveUserList(users)
	}

	return owners
}

func newTaskResponse(state task.State) TaskResponse {
	assignedInputs := make(map[string]string, len(state.AssignedInputs))
	for name, f := range state.AssignedInputs {
		assignedInputs[name] = string(f.ExternalID)
	}

	assignedOutputs := make(map[string]string, len(state.AssignedOutputs))
	for name, f := range state.AssignedOutputs {
		assignedOutputs[name] = string(f.ExternalID)
	}

	resp := TaskResponse{
		TaskID:            state.TaskID.String(),
		Status:            string(state.Status),
		Creator:           string(state.Creator),
		Executor:          state.Executor,
		FunctionID:        string(state.FunctionID),
		FunctionArguments: state.FunctionArguments,
		Participants:      userIDsToStrings(state.Participants.Slice()),
		ApprovedUsers:     userIDsToStrings(state.ApprovedUsers.Slice()),
		AssignedInputs:    assignedInputs,
		AssignedOutputs:   assignedOutputs,
	}

	if state.Result.Kind != task.ResultUnset {
		resp.Result = &ResultResponse{
			Kind:    resultKindString(state.Result.Kind),
			Success: state.Result.Success,
			Failure: state.Result.Failure,
		}
	}

	return resp
}

func userIDsToStrings(users []identity.UserID) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = string(u)
	}

	return out
}

func resultKindString(kind task.ResultKind) string {
	switch kind {
	case task.ResultSuccess:
		return "success"
	case task.ResultFailureKind:
		return "failure"
	default:
		return "unset"
	}
}
