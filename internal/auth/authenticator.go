package auth

import (
	"context"

	"github.com/mmynk/duet/internal/models"
)

// Authenticator verifies credentials and creates accounts.
// Services depend on this rather than on a concrete credential scheme.
type Authenticator interface {
	// Register creates an account. credential is a password for PasswordAuthenticator.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the user whose credentials match, or ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks a credential before it is stored.
	ValidateCredential(credential string) error
}
