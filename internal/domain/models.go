package domain

import "strings"

// Institution is one tenant organization in the directory. The set is loaded
// once at startup and never mutated afterwards.
type Institution struct {
	ID       string
	Name     string
	Password string // only present in the legacy local-auth directory
}

// Session is the live authenticated context for exactly one institution.
// The zero value is the logged-out state.
type Session struct {
	InstitutionID   string
	InstitutionName string
	Authenticated   bool
	ServerContext   map[string]any // opaque context returned by delegated login
}

// Member is a read-only membership record scoped to one institution.
type Member struct {
	MemberID         string
	Name             string
	NationalID       string
	DateOfBirth      string
	Gender           string
	JobTitle         string
	DateOfEmployment string
	Grade            string
	Email            string
}

// PaymentStatus is the server-assigned verification state of a payment.
type PaymentStatus string

const (
	StatusPendingVerification PaymentStatus = "Pending Verification"
	StatusReceiptReady        PaymentStatus = "Receipt Ready"
	StatusPickedUp            PaymentStatus = "Picked Up"
)

// DisplayClass maps a status onto the presentation class the dashboard uses
// to colour it. Unknown statuses render unstyled.
func (s PaymentStatus) DisplayClass() string {
	switch s {
	case StatusPendingVerification:
		return "status-pending"
	case StatusReceiptReady:
		return "status-ready"
	case StatusPickedUp:
		return "status-picked-up"
	default:
		return ""
	}
}

// Payment is one row of the payment-history snapshot.
type Payment struct {
	TransactionID    string
	ReceiptNumber    string
	Date             string
	AmountUSD        float64
	AmountZWL        float64
	MonthsPaid       int
	Status           PaymentStatus
	PickupDate       string
	ScheduleFileLink string
}

// Summary holds the per-institution dashboard totals.
type Summary struct {
	TotalMembers      int
	TotalUSD          float64
	TotalZWL          float64
	OutstandingMonths int
}

// Attachment is a schedule file staged for upload alongside a payment.
type Attachment struct {
	Name string
	Data []byte
}

// PaymentDraft is the transient record assembled for one submission. The
// ScheduleFileLink is filled in only after a successful upload step, and the
// IdempotencyKey is generated client-side so a duplicate retry cannot create
// a second record.
type PaymentDraft struct {
	InstitutionID    string
	TransactionID    string
	Date             string
	AmountUSD        float64
	AmountZWL        float64
	MonthsPaid       int
	Attachment       *Attachment
	ScheduleFileLink string
	IdempotencyKey   string
}

// Validate reports whether the draft carries the minimum fields the record
// service requires.
func (d PaymentDraft) Validate() error {
	if strings.TrimSpace(d.TransactionID) == "" {
		return ErrMissingTransactionID
	}
	if strings.TrimSpace(d.Date) == "" {
		return ErrMissingDate
	}
	if d.MonthsPaid <= 0 {
		return ErrInvalidMonthsPaid
	}
	return nil
}
