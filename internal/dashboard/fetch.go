package dashboard

import (
	"context"

	"github.com/Mondli-02/union-dues-system/internal/domain"
)

// The fetchers fail soft: a network or decode failure is logged and the
// prior snapshot stays on display. Nothing retries automatically; the user
// re-triggers the fetch by navigating back to the tab.

// RefreshSummary re-fetches the dashboard totals for the current session.
func (a *AppState) RefreshSummary(ctx context.Context) error {
	institutionID, gen, ok := a.sessionScope()
	if !ok {
		return domain.ErrNotAuthenticated
	}
	summary, err := a.api.GetSummary(ctx, institutionID)
	if err != nil {
		a.logger.Error().Err(err).Msg("dashboard: summary fetch failed, keeping previous totals")
		return err
	}

	a.mu.Lock()
	if !a.stillCurrent(gen) {
		a.mu.Unlock()
		return nil
	}
	a.summary = summary
	a.mu.Unlock()

	a.renderer.RenderSummary(summary)
	return nil
}

// RefreshMembers re-fetches the membership snapshot and re-renders it
// through the active filter.
func (a *AppState) RefreshMembers(ctx context.Context) error {
	institutionID, gen, ok := a.sessionScope()
	if !ok {
		return domain.ErrNotAuthenticated
	}
	members, err := a.api.GetMembers(ctx, institutionID)
	if err != nil {
		a.logger.Error().Err(err).Msg("dashboard: members fetch failed, keeping previous snapshot")
		return err
	}

	a.mu.Lock()
	if !a.stillCurrent(gen) {
		a.mu.Unlock()
		return nil
	}
	a.members = members
	view := filterMembers(a.members, a.memberQuery)
	a.mu.Unlock()

	a.renderer.RenderMembers(view)
	return nil
}

// RefreshPaymentHistory re-fetches the payment snapshot and re-renders it
// through the active filter.
func (a *AppState) RefreshPaymentHistory(ctx context.Context) error {
	institutionID, gen, ok := a.sessionScope()
	if !ok {
		return domain.ErrNotAuthenticated
	}
	payments, err := a.api.GetPaymentHistory(ctx, institutionID)
	if err != nil {
		a.logger.Error().Err(err).Msg("dashboard: payment history fetch failed, keeping previous snapshot")
		return err
	}

	a.mu.Lock()
	if !a.stillCurrent(gen) {
		a.mu.Unlock()
		return nil
	}
	a.payments = payments
	view := filterPayments(a.payments, a.paymentQuery)
	a.mu.Unlock()

	a.renderer.RenderPayments(view)
	return nil
}

// RefreshAll loads everything the dashboard shows. The three fetches are
// independent and carry no ordering guarantee; each fails soft on its own.
func (a *AppState) RefreshAll(ctx context.Context) {
	_ = a.RefreshSummary(ctx)
	_ = a.RefreshMembers(ctx)
	_ = a.RefreshPaymentHistory(ctx)
}
