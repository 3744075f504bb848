// Package auth verifies institution credentials. Two interchangeable
// strategies exist: delegated verification against the record service and a
// legacy local check against the shipped credential directory.
package auth

import (
	"context"

	"github.com/Mondli-02/union-dues-system/internal/domain"
)

// Authenticator turns an institution ID and secret into an authenticated
// session. Implementations must fail with domain.ErrInvalidCredentials
// without revealing which of the two inputs was wrong.
type Authenticator interface {
	Authenticate(ctx context.Context, institutionID, secret string) (domain.Session, error)
}
