// Package dashboard holds the session and data-synchronization core: the
// authenticated session, the per-institution snapshots fetched from the
// record service, the local filter engine, and the two-phase payment
// submission workflow. Presentation is an external collaborator reached
// through the Renderer capability.
package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Mondli-02/union-dues-system/internal/auth"
	"github.com/Mondli-02/union-dues-system/internal/domain"
	"github.com/Mondli-02/union-dues-system/internal/infra"
)

// RecordAPI is the slice of the record-service client the core consumes.
type RecordAPI interface {
	GetSummary(ctx context.Context, institutionID string) (domain.Summary, error)
	GetMembers(ctx context.Context, institutionID string) ([]domain.Member, error)
	GetPaymentHistory(ctx context.Context, institutionID string) ([]domain.Payment, error)
	UploadFile(ctx context.Context, name string, data []byte) (string, error)
	LogPayment(ctx context.Context, draft domain.PaymentDraft) (bool, error)
}

// Options configures an AppState.
type Options struct {
	Authenticator auth.Authenticator
	API           RecordAPI
	Renderer      Renderer
	Logger        *infra.Logger
	NoticeTTL     time.Duration
	NewKey        func() string // idempotency token source, uuid by default
}

// AppState owns all mutable client-side state, scoped to the currently
// authenticated session. Mutations are serialized by the mutex; everything
// is cleared on logout and replaced on re-authentication.
type AppState struct {
	authenticator auth.Authenticator
	api           RecordAPI
	renderer      Renderer
	logger        infra.Logger
	noticeTTL     time.Duration
	newKey        func() string

	mu         sync.Mutex
	session    domain.Session
	generation uint64

	summary      domain.Summary
	members      []domain.Member
	payments     []domain.Payment
	memberQuery  string
	paymentQuery string

	draft     domain.PaymentDraft
	submit    SubmitState
	notice    *Notice
	noticeSeq uint64
}

// New constructs an AppState in the logged-out state.
func New(opts Options) *AppState {
	renderer := opts.Renderer
	if renderer == nil {
		renderer = NopRenderer{}
	}
	logger := infra.DiscardLogger()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	ttl := opts.NoticeTTL
	if ttl <= 0 {
		ttl = 4 * time.Second
	}
	newKey := opts.NewKey
	if newKey == nil {
		newKey = uuid.NewString
	}
	return &AppState{
		authenticator: opts.Authenticator,
		api:           opts.API,
		renderer:      renderer,
		logger:        logger,
		noticeTTL:     ttl,
		newKey:        newKey,
		submit:        SubmitIdle,
	}
}

// Authenticate verifies the credentials and, on success, installs the new
// session and loads the initial dashboard data. A failed attempt leaves the
// prior (absent) session untouched.
func (a *AppState) Authenticate(ctx context.Context, institutionID, secret string) (domain.Session, error) {
	session, err := a.authenticator.Authenticate(ctx, institutionID, secret)
	if err != nil {
		a.logger.Warn().Str("institution", institutionID).Err(err).Msg("dashboard: authentication failed")
		return domain.Session{}, err
	}

	a.mu.Lock()
	a.resetLocked()
	a.session = session
	a.generation++
	a.mu.Unlock()

	a.logger.Info().Str("institution", session.InstitutionID).Msg("dashboard: session opened")
	a.RefreshAll(ctx)
	return session, nil
}

// Logout clears the session and every piece of derived state. It is
// idempotent and never performs a server round-trip.
func (a *AppState) Logout() {
	a.mu.Lock()
	wasAuthenticated := a.session.Authenticated
	institutionID := a.session.InstitutionID
	a.resetLocked()
	a.generation++
	a.mu.Unlock()

	if wasAuthenticated {
		a.logger.Info().Str("institution", institutionID).Msg("dashboard: session closed")
	}
}

// resetLocked returns every session-scoped field to its zero value. Caller
// holds a.mu.
func (a *AppState) resetLocked() {
	a.session = domain.Session{}
	a.summary = domain.Summary{}
	a.members = nil
	a.payments = nil
	a.memberQuery = ""
	a.paymentQuery = ""
	a.draft = domain.PaymentDraft{}
	a.submit = SubmitIdle
	a.notice = nil
	a.noticeSeq++ // invalidates any pending notice expiry
}

// Session returns the current session value.
func (a *AppState) Session() domain.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// Authenticated reports whether a session is live.
func (a *AppState) Authenticated() bool {
	return a.Session().Authenticated
}

// Summary returns the last fetched totals.
func (a *AppState) Summary() domain.Summary {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.summary
}

// Draft returns the in-progress payment draft, preserved after a failed
// submission so the form can be repopulated for a retry.
func (a *AppState) Draft() domain.PaymentDraft {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.draft
}

// sessionScope captures the institution and generation for a fetch that
// will run outside the lock.
func (a *AppState) sessionScope() (institutionID string, generation uint64, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.session.Authenticated {
		return "", 0, false
	}
	return a.session.InstitutionID, a.generation, true
}

// stillCurrent reports whether a response that started under generation gen
// may still write into the snapshots. Caller holds a.mu.
func (a *AppState) stillCurrent(gen uint64) bool {
	return a.generation == gen && a.session.Authenticated
}
