// Package function describes the external function registry's view of a
// registered computation: its identity, ownership, visibility, and the
// argument/input/output names a task must supply to invoke it.
//
// The registry itself - storage, versioning, discovery - is an external
// collaborator; this package holds only the descriptor shape the task
// core needs to validate a creation request and to build a dispatch
// record.
package function

import "github.com/conclave-run/taskcore/internal/identity"

// ExecutorType names the isolated execution environment a function runs
// in (e.g. a particular enclave runtime or a native builtin). The task
// core treats it as an opaque string surfaced to the executor subsystem
// unchanged.
type ExecutorType string

// Descriptor is the immutable view of a registered function a task
// creation request is validated against.
type Descriptor struct {
	// ID is the external identifier by which a task references this function.
	ID identity.ExternalID

	// Owner is the user who registered the function.
	Owner identity.UserID

	// Public marks the function visible (and usable) by anyone. When
	// false, Owner must be included among a task's participants.
	Public bool

	// ArgumentNames are the keys a task's function-argument mapping must
	// match exactly.
	ArgumentNames []string

	// InputNames are the declared input parameter names a task's
	// inputs-ownership declaration must match exactly.
	InputNames []string

	// OutputNames are the declared output parameter names a task's
	// outputs-ownership declaration must match exactly.
	OutputNames []string

	// ExecutorType names the isolated execution environment this function runs in.
	ExecutorType ExecutorType

	// Name is the function's display name, carried into the dispatch record.
	Name string

	// Payload is the function's executable payload (bytecode, script, or
	// a reference to one), opaque to the task core.
	Payload []byte
}

// namesSet returns names as a comparable set, for key-equality checks
// against a task's declared argument/input/output maps.
func namesSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}

	return set
}

// ArgumentSet returns ArgumentNames as a comparable set.
func (d Descriptor) ArgumentSet() map[string]struct{} {
	return namesSet(d.ArgumentNames)
}

// InputSet returns InputNames as a comparable set.
func (d Descriptor) InputSet() map[string]struct{} {
	return namesSet(d.InputNames)
}

// OutputSet returns OutputNames as a comparable set.
func (d Descriptor) OutputSet() map[string]struct{} {
	return namesSet(d.OutputNames)
}
