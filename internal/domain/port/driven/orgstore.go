// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/orgvault/internal/domain/model"
)

// ErrOrgNotFound indicates no org exists with the requested ID.
var ErrOrgNotFound = errors.New("org not found")

// OrgStore defines the driven port for durable org persistence. Ciphertext
// fields are stored and returned verbatim; implementations never encrypt,
// decrypt or inspect them.
type OrgStore interface {
	// List returns every org ordered by name. Password ciphertext is never
	// loaded.
	List(ctx context.Context) ([]model.OrgSummary, error)

	// Get returns the org with the given ID, or ErrOrgNotFound.
	Get(ctx context.Context, id string) (*model.Org, error)

	// Create persists a new org and returns its freshly assigned ID.
	Create(ctx context.Context, org model.NewOrg) (string, error)

	// Update replaces both credential ciphertexts of an existing org and
	// returns the updated record, or ErrOrgNotFound.
	Update(ctx context.Context, id, usernameCiphertext, passwordCiphertext string) (*model.Org, error)

	// Delete permanently removes the org, or returns ErrOrgNotFound.
	Delete(ctx context.Context, id string) error
}
