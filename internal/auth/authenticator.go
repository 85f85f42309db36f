package auth

import (
	"context"

	"github.com/mmynk/karkkilista/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// Registration always creates both the account and the owner profile, so every
// registered identity owns a list.
type Authenticator interface {
	// Register creates a new account and its public owner profile.
	Register(ctx context.Context, email, username, credential string) (*models.Account, *models.Owner, error)

	// Authenticate verifies the credentials and returns the account.
	Authenticate(ctx context.Context, email, credential string) (*models.Account, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}

// CanEdit reports whether identity may mutate owner's list. It is the only
// authorization rule: the identity id must equal the owner id. A missing
// identity (anonymous session) or a missing owner (still loading) never may.
func CanEdit(identity *models.Identity, owner *models.Owner) bool {
	if identity == nil || owner == nil {
		return false
	}
	return identity.ID != "" && identity.ID == owner.ID
}
