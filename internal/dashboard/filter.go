package dashboard

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/Mondli-02/union-dues-system/internal/domain"
)

// The filter engine always recomputes from the full snapshot, never from a
// previously filtered subset, so filters are order-independent and clearing
// the query restores the snapshot exactly.

// foldString normalizes a string under Unicode case folding. A fresh Caser
// per call because Casers are stateful and not safe for concurrent use.
func foldString(s string) string {
	return cases.Fold().String(s)
}

// FilterMembers stores the query, recomputes the member view from the full
// snapshot, and pushes it to the renderer.
func (a *AppState) FilterMembers(query string) []domain.Member {
	a.mu.Lock()
	a.memberQuery = query
	view := filterMembers(a.members, query)
	a.mu.Unlock()

	a.renderer.RenderMembers(view)
	return view
}

// FilterPayments behaves like FilterMembers for the payment snapshot.
func (a *AppState) FilterPayments(query string) []domain.Payment {
	a.mu.Lock()
	a.paymentQuery = query
	view := filterPayments(a.payments, query)
	a.mu.Unlock()

	a.renderer.RenderPayments(view)
	return view
}

// Members returns the member view under the active filter.
func (a *AppState) Members() []domain.Member {
	a.mu.Lock()
	defer a.mu.Unlock()
	return filterMembers(a.members, a.memberQuery)
}

// Payments returns the payment view under the active filter.
func (a *AppState) Payments() []domain.Payment {
	a.mu.Lock()
	defer a.mu.Unlock()
	return filterPayments(a.payments, a.paymentQuery)
}

// PaymentSnapshot returns the full unfiltered payment history, for export.
func (a *AppState) PaymentSnapshot() []domain.Payment {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.Payment, len(a.payments))
	copy(out, a.payments)
	return out
}

func filterMembers(members []domain.Member, query string) []domain.Member {
	if strings.TrimSpace(query) == "" {
		out := make([]domain.Member, len(members))
		copy(out, members)
		return out
	}
	q := foldString(query)
	out := make([]domain.Member, 0, len(members))
	for _, m := range members {
		if matches(q, m.MemberID, m.Name, m.JobTitle) {
			out = append(out, m)
		}
	}
	return out
}

func filterPayments(payments []domain.Payment, query string) []domain.Payment {
	if strings.TrimSpace(query) == "" {
		out := make([]domain.Payment, len(payments))
		copy(out, payments)
		return out
	}
	q := foldString(query)
	out := make([]domain.Payment, 0, len(payments))
	for _, p := range payments {
		if matches(q, p.TransactionID, string(p.Status)) {
			out = append(out, p)
		}
	}
	return out
}

// matches reports whether the folded query is a substring of any field,
// compared under Unicode case folding.
func matches(foldedQuery string, fields ...string) bool {
	for _, f := range fields {
		if f == "" {
			continue
		}
		if strings.Contains(foldString(f), foldedQuery) {
			return true
		}
	}
	return false
}
