package auth

import (
	"context"
	"crypto/subtle"

	"github.com/Mondli-02/union-dues-system/internal/directory"
	"github.com/Mondli-02/union-dues-system/internal/domain"
	"github.com/Mondli-02/union-dues-system/internal/infra"
)

// Local verifies credentials against the preloaded directory map.
//
// This is the legacy variant: it only works when the directory document
// ships passwords to the client, which exposes every institution's secret to
// anyone who can read the document. Keep it for compatibility with existing
// deployments and prefer the delegated Remote authenticator everywhere else.
type Local struct {
	dir    *directory.Directory
	logger infra.Logger
}

// NewLocal builds the legacy directory-backed authenticator. It logs a
// warning at construction so the insecure mode is visible in operations.
func NewLocal(dir *directory.Directory, logger infra.Logger) *Local {
	logger.Warn().Msg("auth: local credential verification enabled; directory document carries cleartext secrets")
	return &Local{dir: dir, logger: logger}
}

// Authenticate checks the secret against the directory entry for the ID.
func (l *Local) Authenticate(_ context.Context, institutionID, secret string) (domain.Session, error) {
	inst, ok := l.dir.Lookup(institutionID)
	// Compare even on a directory miss so a missing ID and a wrong secret
	// are indistinguishable to the caller.
	expected := inst.Password
	match := subtle.ConstantTimeCompare([]byte(expected), []byte(secret)) == 1
	if !ok || expected == "" || !match {
		return domain.Session{}, domain.ErrInvalidCredentials
	}
	return domain.Session{
		InstitutionID:   inst.ID,
		InstitutionName: inst.Name,
		Authenticated:   true,
	}, nil
}
