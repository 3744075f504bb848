package dashboard

import "github.com/Mondli-02/union-dues-system/internal/domain"

// Renderer is the presentation capability the core pushes updates through.
// The core never touches a concrete UI; anything that can draw a collection
// can subscribe by implementing this interface.
type Renderer interface {
	RenderSummary(domain.Summary)
	RenderMembers([]domain.Member)
	RenderPayments([]domain.Payment)
	ShowNotice(Notice)
	ClearNotice()
}

// NopRenderer discards every update. It is the default when no presentation
// layer is attached, which keeps the core usable headless and in tests.
type NopRenderer struct{}

func (NopRenderer) RenderSummary(domain.Summary)    {}
func (NopRenderer) RenderMembers([]domain.Member)   {}
func (NopRenderer) RenderPayments([]domain.Payment) {}
func (NopRenderer) ShowNotice(Notice)               {}
func (NopRenderer) ClearNotice()                    {}
