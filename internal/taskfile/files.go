package taskfile

import (
	"errors"
	"fmt"

	"github.com/conclave-run/taskcore/internal/identity"
)

type (
	// FileAuthTag is the authentication tag (CMAC) an executor attaches to
	// an output file once the computation that produced it has finalized.
	FileAuthTag string

	// InputFile is a concrete file record bound to a declared input
	// parameter. The core never reads its bytes; it only compares Owner
	// against the corresponding Owners declaration.
	InputFile struct {
		ExternalID identity.ExternalID
		Owner      identity.UserList
	}

	// OutputFile is a concrete file record bound to a declared output
	// parameter. CMAC is unset until update, at the Finish phase, attaches
	// the executor's authentication tag.
	OutputFile struct {
		ExternalID identity.ExternalID
		Owner      identity.UserList
		CMAC       FileAuthTag
	}

	// Files maps a declared parameter name to a bound file record of kind
	// T (InputFile or OutputFile). A name may be assigned at most once.
	Files[T any] map[string]T
)

var (
	// ErrAlreadyAssigned indicates a second Assign call for a name already bound.
	ErrAlreadyAssigned = errors.New("taskfile: name already assigned")

	// ErrNotAssigned indicates an operation on a name with no bound file.
	ErrNotAssigned = errors.New("taskfile: name not assigned")

	// ErrCMACAlreadySet indicates a conflicting re-tag of an already-CMAC'd output.
	ErrCMACAlreadySet = errors.New("taskfile: output already has a different authentication tag")
)

// Keys returns the bound parameter names.
func (f Files[T]) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}

	return keys
}

// KeySet returns the bound parameter names as a comparable set.
func (f Files[T]) KeySet() map[string]struct{} {
	set := make(map[string]struct{}, len(f))
	for k := range f {
		set[k] = struct{}{}
	}

	return set
}

// Assign binds file to name. Fails if name is already bound -
// single-assignment, per the owning task's immutability guarantee once a
// file is in place.
func (f Files[T]) Assign(name string, file T) error {
	if _, exists := f[name]; exists {
		return fmt.Errorf("%w: %q", ErrAlreadyAssigned, name)
	}

	f[name] = file

	return nil
}

// UpdateOutputCMAC attaches tag to the output file bound at name.
//
// Re-tagging an output that already carries a tag is rejected unless the
// new tag is byte-identical to the existing one - a safe default for an
// operation the source left unspecified beyond "attaches a tag".
func UpdateOutputCMAC(files Files[OutputFile], name string, tag FileAuthTag) (*OutputFile, error) {
	of, ok := files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotAssigned, name)
	}

	if of.CMAC != "" && of.CMAC != tag {
		return nil, fmt.Errorf("%w: %q", ErrCMACAlreadySet, name)
	}

	of.CMAC = tag
	files[name] = of

	return &of, nil
}
