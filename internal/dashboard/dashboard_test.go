package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Mondli-02/union-dues-system/internal/domain"
)

// stubAPI implements RecordAPI with canned responses and call counters.
type stubAPI struct {
	mu sync.Mutex

	summary    domain.Summary
	summaryErr error
	members    []domain.Member
	membersErr error
	payments   []domain.Payment
	historyErr error

	uploadURL     string
	uploadErr     error
	logSuccess    bool
	logErr        error
	lastLogged    domain.PaymentDraft
	uploadBefore  bool
	uploadedFirst bool

	// When set, LogPayment signals logEntered and then blocks until
	// logRelease closes, so tests can interleave other calls mid-flight.
	logEntered chan struct{}
	logRelease chan struct{}

	summaryCalls int
	memberCalls  int
	historyCalls int
	uploadCalls  int
	logCalls     int
}

func (s *stubAPI) GetSummary(context.Context, string) (domain.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaryCalls++
	return s.summary, s.summaryErr
}

func (s *stubAPI) GetMembers(context.Context, string) ([]domain.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberCalls++
	return s.members, s.membersErr
}

func (s *stubAPI) GetPaymentHistory(context.Context, string) ([]domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.historyCalls++
	return s.payments, s.historyErr
}

func (s *stubAPI) UploadFile(context.Context, string, []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploadCalls++
	s.uploadBefore = true
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	return s.uploadURL, nil
}

func (s *stubAPI) LogPayment(_ context.Context, draft domain.PaymentDraft) (bool, error) {
	if s.logEntered != nil {
		s.logEntered <- struct{}{}
	}
	if s.logRelease != nil {
		<-s.logRelease
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logCalls++
	s.lastLogged = draft
	s.uploadedFirst = s.uploadBefore
	if s.logErr != nil {
		return false, s.logErr
	}
	return s.logSuccess, nil
}

// stubAuth accepts exactly one credential pair.
type stubAuth struct {
	id, secret string
	name       string
	err        error
}

func (s *stubAuth) Authenticate(_ context.Context, institutionID, secret string) (domain.Session, error) {
	if s.err != nil {
		return domain.Session{}, s.err
	}
	if institutionID != s.id || secret != s.secret {
		return domain.Session{}, domain.ErrInvalidCredentials
	}
	return domain.Session{
		InstitutionID:   institutionID,
		InstitutionName: s.name,
		Authenticated:   true,
	}, nil
}

// recordingRenderer captures every push so tests can assert on what the
// presentation layer would have drawn.
type recordingRenderer struct {
	mu        sync.Mutex
	summaries []domain.Summary
	members   [][]domain.Member
	payments  [][]domain.Payment
	notices   []Notice
	cleared   int
}

func (r *recordingRenderer) RenderSummary(s domain.Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries = append(r.summaries, s)
}

func (r *recordingRenderer) RenderMembers(m []domain.Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members = append(r.members, m)
}

func (r *recordingRenderer) RenderPayments(p []domain.Payment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments = append(r.payments, p)
}

func (r *recordingRenderer) ShowNotice(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recordingRenderer) ClearNotice() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleared++
}

func (r *recordingRenderer) lastNotice() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

func newTestState(api *stubAPI, opts ...func(*Options)) (*AppState, *recordingRenderer) {
	renderer := &recordingRenderer{}
	o := Options{
		Authenticator: &stubAuth{id: "A1", secret: "pw", name: "Acme"},
		API:           api,
		Renderer:      renderer,
		NoticeTTL:     20 * time.Millisecond,
		NewKey:        func() string { return "key-test" },
	}
	for _, fn := range opts {
		fn(&o)
	}
	return New(o), renderer
}

func login(state *AppState) error {
	_, err := state.Authenticate(context.Background(), "A1", "pw")
	return err
}

var errBoom = errors.New("boom")
