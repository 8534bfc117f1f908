package function

import (
	"context"
	"errors"

	"github.com/conclave-run/taskcore/internal/identity"
)

// ErrNotFound indicates no Descriptor is registered under the requested ID.
var ErrNotFound = errors.New("function: not found")

// Registry is the dependency-inversion contract the task core uses to
// resolve a function reference at creation and staging time. The registry
// itself - storage, versioning, discovery - is an external collaborator;
// the task core only ever reads through this interface.
type Registry interface {
	Get(ctx context.Context, id identity.ExternalID) (Descriptor, error)
}
