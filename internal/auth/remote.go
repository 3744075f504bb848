package auth

import (
	"context"

	"github.com/Mondli-02/union-dues-system/internal/directory"
	"github.com/Mondli-02/union-dues-system/internal/domain"
	"github.com/Mondli-02/union-dues-system/internal/duesapi"
	"github.com/Mondli-02/union-dues-system/internal/infra"
)

// LoginClient is the slice of the record-service client Remote needs.
type LoginClient interface {
	Login(ctx context.Context, institutionID, password string) (duesapi.LoginResult, error)
}

// Remote delegates credential verification to the record service's login
// action and carries back its opaque session context.
type Remote struct {
	client LoginClient
	dir    *directory.Directory
	logger infra.Logger
}

// NewRemote builds the delegated authenticator. The directory is only used
// to resolve display names; it never sees secrets in this mode.
func NewRemote(client LoginClient, dir *directory.Directory, logger infra.Logger) *Remote {
	return &Remote{client: client, dir: dir, logger: logger}
}

// Authenticate performs the login round-trip. A transport failure surfaces
// as domain.ErrNetwork; a rejected login as domain.ErrInvalidCredentials.
func (r *Remote) Authenticate(ctx context.Context, institutionID, secret string) (domain.Session, error) {
	res, err := r.client.Login(ctx, institutionID, secret)
	if err != nil {
		r.logger.Error().Err(err).Msg("auth: login call failed")
		return domain.Session{}, err
	}
	if !res.Success {
		return domain.Session{}, domain.ErrInvalidCredentials
	}
	return domain.Session{
		InstitutionID:   institutionID,
		InstitutionName: r.dir.DisplayName(institutionID),
		Authenticated:   true,
		ServerContext:   res.Session,
	}, nil
}
