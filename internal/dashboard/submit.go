package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mondli-02/union-dues-system/internal/domain"
)

// SubmitState tracks the payment submission workflow:
// Idle → (file attached?) Uploading → Submitting → Succeeded|Failed → Idle.
type SubmitState string

const (
	SubmitIdle       SubmitState = "idle"
	SubmitUploading  SubmitState = "uploading"
	SubmitSubmitting SubmitState = "submitting"
	SubmitSucceeded  SubmitState = "succeeded"
	SubmitFailed     SubmitState = "failed"
)

// SubmitPaymentState returns the workflow's current state.
func (a *AppState) SubmitPaymentState() SubmitState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.submit
}

// SubmitPayment runs one two-phase payment submission. If the draft carries
// an attachment the file is uploaded first and the returned reference URL is
// attached to the draft strictly before the record-creation call; an upload
// failure means record creation is never attempted. On success the payment
// history and summary are re-fetched (the server copy is authoritative) and
// the draft is cleared; on failure the draft is preserved so the user can
// retry without re-entering data. Only one submission may be in flight.
func (a *AppState) SubmitPayment(ctx context.Context, draft domain.PaymentDraft) error {
	a.mu.Lock()
	if !a.session.Authenticated {
		a.mu.Unlock()
		return domain.ErrNotAuthenticated
	}
	if a.submit == SubmitUploading || a.submit == SubmitSubmitting {
		a.mu.Unlock()
		return domain.ErrSubmissionInFlight
	}
	draft.InstitutionID = a.session.InstitutionID
	if err := draft.Validate(); err != nil {
		a.mu.Unlock()
		return err
	}
	if draft.IdempotencyKey == "" {
		draft.IdempotencyKey = a.newKey()
	}
	if draft.Attachment != nil {
		a.submit = SubmitUploading
	} else {
		a.submit = SubmitSubmitting
	}
	a.draft = draft
	gen := a.generation
	a.mu.Unlock()

	if draft.Attachment != nil {
		fileURL, err := a.api.UploadFile(ctx, draft.Attachment.Name, draft.Attachment.Data)
		if err != nil {
			a.logger.Error().Err(err).Msg("dashboard: schedule upload failed, record creation skipped")
			a.finishSubmit(gen, SubmitFailed, draft, "Failed to upload schedule file.")
			return fmt.Errorf("dashboard: upload schedule: %w: %w", domain.ErrUploadFailed, err)
		}
		draft.ScheduleFileLink = fileURL

		a.mu.Lock()
		if a.generation == gen {
			a.draft = draft
			a.submit = SubmitSubmitting
		}
		a.mu.Unlock()
	}

	ok, err := a.api.LogPayment(ctx, draft)
	if err != nil {
		a.logger.Error().Err(err).Msg("dashboard: payment submission failed")
		a.finishSubmit(gen, SubmitFailed, draft, "Failed to log payment.")
		return err
	}
	if !ok {
		a.logger.Warn().Str("transaction", draft.TransactionID).Msg("dashboard: payment rejected by record service")
		a.finishSubmit(gen, SubmitFailed, draft, "Failed to log payment.")
		return domain.ErrSubmissionRejected
	}

	a.logger.Info().Str("transaction", draft.TransactionID).Msg("dashboard: payment logged")
	a.finishSubmit(gen, SubmitSucceeded, domain.PaymentDraft{}, "Payment logged successfully!")

	// Not a local append: re-fetch so server-side derived totals are shown.
	_ = a.RefreshPaymentHistory(ctx)
	_ = a.RefreshSummary(ctx)
	return nil
}

// finishSubmit records the terminal state, notice, and draft disposition.
// Succeeded and Failed are resting states: the next submission (or logout)
// moves the machine back through Idle. A submission that outlived its
// session writes nothing; logout already cleared the draft and notices and
// the logged-out state must stay clean.
func (a *AppState) finishSubmit(gen uint64, outcome SubmitState, draft domain.PaymentDraft, message string) {
	kind := NoticeSuccess
	if outcome == SubmitFailed {
		kind = NoticeError
	}
	a.mu.Lock()
	if a.generation != gen {
		a.mu.Unlock()
		return
	}
	a.submit = outcome
	a.draft = draft
	notice := a.setNotice(kind, message)
	a.mu.Unlock()
	a.renderer.ShowNotice(notice)
}

// IsSubmissionError reports whether err belongs to the submission failure
// taxonomy rather than a validation problem.
func IsSubmissionError(err error) bool {
	return errors.Is(err, domain.ErrUploadFailed) ||
		errors.Is(err, domain.ErrSubmissionRejected) ||
		errors.Is(err, domain.ErrNetwork)
}
