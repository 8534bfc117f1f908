// Package taskfile provides the file-binding primitives shared by every
// task: the ownership declarations a task creator makes for its input and
// output parameters, and the concrete file assignments bound to them
// later, during the Assign phase.
package taskfile

import (
	"errors"
	"fmt"

	"github.com/conclave-run/taskcore/internal/identity"
)

// Owners maps a declared parameter name to the set of users any file bound
// to that name must be owned by. It is populated once, at task creation,
// and never mutated afterward - the declared owner-set is the contract
// later file assignments are checked against.
type Owners map[string]identity.UserList

var (
	// ErrUnknownParameter indicates a check against a name that was never declared.
	ErrUnknownParameter = errors.New("taskfile: unknown parameter name")

	// ErrOwnerMismatch indicates a supplied file's owners don't match the declared set.
	ErrOwnerMismatch = errors.New("taskfile: owner-set mismatch")
)

// Keys returns the declared parameter names.
func (o Owners) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}

	return keys
}

// AllOwners returns the union of every declared owner-set, used at task
// creation to compute the participant set.
func (o Owners) AllOwners() identity.UserList {
	lists := make([]identity.UserList, 0, len(o))
	for _, ul := range o {
		lists = append(lists, ul)
	}

	return identity.UnionUserLists(lists...)
}

// Check verifies that name was declared and that owners matches the
// declared owner-set for it exactly.
func (o Owners) Check(name string, owners identity.UserList) error {
	declared, ok := o[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}

	if !declared.Equal(owners) {
		return fmt.Errorf("%w: %q declared %v, got %v", ErrOwnerMismatch, name, declared.Slice(), owners.Slice())
	}

	return nil
}

// KeySet returns the declared parameter names as a comparable set, for
// equality checks against an assignment map's key set.
func (o Owners) KeySet() map[string]struct{} {
	set := make(map[string]struct{}, len(o))
	for k := range o {
		set[k] = struct{}{}
	}

	return set
}
