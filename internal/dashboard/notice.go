package dashboard

import "time"

// NoticeKind distinguishes success confirmations from failure messages.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient inline message. Each notice self-clears after the
// configured TTL unless a newer notice has replaced it first.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// setNotice stores the notice and schedules its expiry. Caller holds a.mu
// and must hand the returned value to Renderer.ShowNotice after releasing
// it; renderer calls never run under the lock so a renderer is free to read
// back into the state.
func (a *AppState) setNotice(kind NoticeKind, message string) Notice {
	a.noticeSeq++
	seq := a.noticeSeq
	notice := Notice{Kind: kind, Message: message}
	a.notice = &notice

	time.AfterFunc(a.noticeTTL, func() {
		a.mu.Lock()
		if a.noticeSeq != seq {
			a.mu.Unlock()
			return
		}
		a.notice = nil
		a.mu.Unlock()
		a.renderer.ClearNotice()
	})
	return notice
}

// Notice returns the currently displayed transient message, if any.
func (a *AppState) Notice() *Notice {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.notice == nil {
		return nil
	}
	n := *a.notice
	return &n
}
