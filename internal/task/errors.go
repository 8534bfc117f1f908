package task

import "errors"

// Sentinel errors for task validation, authorization, and transition gates.
// Error text is string-stable: the RPC layer and its clients match on
// these phrases, so wording changes here are a breaking change.
var (
	// ErrFunctionArgumentsMismatch indicates the creation request's
	// argument keys don't match the function's declared arguments.
	ErrFunctionArgumentsMismatch = errors.New("function_arguments mismatch")

	// ErrInputKeysMismatch indicates the creation request's input
	// ownership keys don't match the function's declared inputs.
	ErrInputKeysMismatch = errors.New("input keys mismatch")

	// ErrOutputKeysMismatch indicates the creation request's output
	// ownership keys don't match the function's declared outputs.
	ErrOutputKeysMismatch = errors.New("output keys mismatch")

	// ErrRequesterNotOwner indicates a file-assignment requester is not
	// in the file's owner set.
	ErrRequesterNotOwner = errors.New("requester is not in the owner list")

	// ErrUnexpectedApprover indicates an approval from a non-participant.
	ErrUnexpectedApprover = errors.New("Unexpected user trying to approve a task") //nolint:staticcheck // string-stable client-facing phrase

	// ErrNotTaskCreator indicates a stage request from someone other than the creator.
	ErrNotTaskCreator = errors.New("Requestor is not the task creator") //nolint:staticcheck // string-stable client-facing phrase

	// ErrAssignNotReady indicates Assign -> Approve was attempted before all data was assigned.
	ErrAssignNotReady = errors.New("Not ready: Assign -> Approve")

	// ErrApproveNotReady indicates Approve -> Stage was attempted before every participant approved.
	ErrApproveNotReady = errors.New("Not ready: Approve -> Stage")

	// ErrCannotRestore indicates a restore request targeting a phase the
	// persisted status cannot reach. Wrapped with the target phase name by
	// the transition engine, e.g. "Cannot restore to Run from saved state".
	ErrCannotRestore = errors.New("cannot restore from saved state")
)
