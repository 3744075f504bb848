// Package web is the presentation facade: a thin JSON surface over the
// dashboard core for whatever browser UI is pointed at it. It only consumes
// AppState; no core package knows this layer exists.
package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Mondli-02/union-dues-system/internal/dashboard"
	"github.com/Mondli-02/union-dues-system/internal/directory"
	"github.com/Mondli-02/union-dues-system/internal/domain"
	"github.com/Mondli-02/union-dues-system/internal/export"
	"github.com/Mondli-02/union-dues-system/internal/infra"
)

// maxScheduleFileBytes caps schedule uploads; the record service declines
// anything larger anyway.
const maxScheduleFileBytes = 10 << 20

// App bundles the facade's dependencies.
type App struct {
	State             *dashboard.AppState
	Dir               *directory.Directory
	Logger            infra.Logger
	OmitReceiptColumn bool
}

type loginRequest struct {
	InstitutionID string `json:"institutionID"`
	Password      string `json:"password"`
}

type sessionDTO struct {
	InstitutionID   string `json:"institutionID"`
	InstitutionName string `json:"institutionName"`
	Authenticated   bool   `json:"authenticated"`
}

type institutionDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type summaryDTO struct {
	TotalMembers      int     `json:"totalMembers"`
	TotalUSD          float64 `json:"totalUSD"`
	TotalZWL          float64 `json:"totalZWL"`
	OutstandingMonths int     `json:"outstandingMonths"`
}

type memberDTO struct {
	MemberID         string `json:"memberID"`
	Name             string `json:"name"`
	NationalID       string `json:"nationalID,omitempty"`
	DateOfBirth      string `json:"dateOfBirth,omitempty"`
	Gender           string `json:"gender,omitempty"`
	JobTitle         string `json:"jobTitle"`
	DateOfEmployment string `json:"dateOfEmployment,omitempty"`
	Grade            string `json:"grade,omitempty"`
	Email            string `json:"email,omitempty"`
}

type paymentDTO struct {
	TransactionID    string  `json:"transactionID"`
	ReceiptNumber    string  `json:"receiptNumber,omitempty"`
	Date             string  `json:"date"`
	AmountUSD        float64 `json:"amountUSD"`
	AmountZWL        float64 `json:"amountZWL"`
	MonthsPaid       int     `json:"monthsPaid"`
	Status           string  `json:"status"`
	StatusClass      string  `json:"statusClass,omitempty"`
	PickupDate       string  `json:"pickupDate,omitempty"`
	ScheduleFileLink string  `json:"scheduleFileLink,omitempty"`
}

// Institutions serves the login picker. Passwords never leave the gateway,
// even when the directory document carries them.
func (a *App) Institutions(w http.ResponseWriter, r *http.Request) {
	institutions := a.Dir.Institutions()
	out := make([]institutionDTO, 0, len(institutions))
	for _, inst := range institutions {
		out = append(out, institutionDTO{ID: inst.ID, Name: inst.Name})
	}
	a.json(w, http.StatusOK, map[string]any{"institutions": out})
}

func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.InstitutionID) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "institutionID required")
		return
	}
	session, err := a.State.Authenticate(r.Context(), req.InstitutionID, req.Password)
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		a.error(w, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials.")
		return
	case err != nil:
		a.error(w, http.StatusBadGateway, "record_service_unreachable", "Could not reach the record service.")
		return
	}
	a.json(w, http.StatusOK, sessionDTO{
		InstitutionID:   session.InstitutionID,
		InstitutionName: session.InstitutionName,
		Authenticated:   true,
	})
}

func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	a.State.Logout()
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) CurrentSession(w http.ResponseWriter, r *http.Request) {
	session := a.State.Session()
	a.json(w, http.StatusOK, sessionDTO{
		InstitutionID:   session.InstitutionID,
		InstitutionName: session.InstitutionName,
		Authenticated:   session.Authenticated,
	})
}

// Summary re-fetches the totals and serves the current snapshot. A failed
// refresh falls back to whatever was displayed before.
func (a *App) Summary(w http.ResponseWriter, r *http.Request) {
	if !a.requireSession(w) {
		return
	}
	_ = a.State.RefreshSummary(r.Context())
	s := a.State.Summary()
	a.json(w, http.StatusOK, summaryDTO{
		TotalMembers:      s.TotalMembers,
		TotalUSD:          s.TotalUSD,
		TotalZWL:          s.TotalZWL,
		OutstandingMonths: s.OutstandingMonths,
	})
}

// Members serves the member view; ?q= drives the local filter engine and
// ?refresh=1 forces a re-fetch from the record service first.
func (a *App) Members(w http.ResponseWriter, r *http.Request) {
	if !a.requireSession(w) {
		return
	}
	if r.URL.Query().Get("refresh") == "1" {
		_ = a.State.RefreshMembers(r.Context())
	}
	members := a.State.FilterMembers(r.URL.Query().Get("q"))
	out := make([]memberDTO, 0, len(members))
	for _, m := range members {
		out = append(out, memberDTO{
			MemberID:         m.MemberID,
			Name:             m.Name,
			NationalID:       m.NationalID,
			DateOfBirth:      m.DateOfBirth,
			Gender:           m.Gender,
			JobTitle:         m.JobTitle,
			DateOfEmployment: m.DateOfEmployment,
			Grade:            m.Grade,
			Email:            m.Email,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"members": out})
}

// Payments mirrors Members for the payment-history view.
func (a *App) Payments(w http.ResponseWriter, r *http.Request) {
	if !a.requireSession(w) {
		return
	}
	if r.URL.Query().Get("refresh") == "1" {
		_ = a.State.RefreshPaymentHistory(r.Context())
	}
	payments := a.State.FilterPayments(r.URL.Query().Get("q"))
	out := make([]paymentDTO, 0, len(payments))
	for _, p := range payments {
		out = append(out, paymentDTO{
			TransactionID:    p.TransactionID,
			ReceiptNumber:    p.ReceiptNumber,
			Date:             p.Date,
			AmountUSD:        p.AmountUSD,
			AmountZWL:        p.AmountZWL,
			MonthsPaid:       p.MonthsPaid,
			Status:           string(p.Status),
			StatusClass:      p.Status.DisplayClass(),
			PickupDate:       p.PickupDate,
			ScheduleFileLink: p.ScheduleFileLink,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"payments": out})
}

// ExportPayments streams the full payment snapshot as CSV.
func (a *App) ExportPayments(w http.ResponseWriter, r *http.Request) {
	if !a.requireSession(w) {
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="payment_history.csv"`)
	opts := export.Options{OmitReceiptNumber: a.OmitReceiptColumn}
	if err := export.WriteHistory(w, a.State.PaymentSnapshot(), opts); err != nil {
		a.Logger.Error().Err(err).Msg("web: csv export failed")
	}
}

// SubmitPayment accepts the log-payment form as multipart data with an
// optional schedule file and runs the two-phase submission workflow.
func (a *App) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	if !a.requireSession(w) {
		return
	}
	if err := r.ParseMultipartForm(maxScheduleFileBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid form payload")
		return
	}
	draft := domain.PaymentDraft{
		TransactionID: r.FormValue("transactionID"),
		Date:          r.FormValue("date"),
		AmountUSD:     parseAmount(r.FormValue("amountUSD")),
		AmountZWL:     parseAmount(r.FormValue("amountZWL")),
		MonthsPaid:    int(parseAmount(r.FormValue("monthsPaid"))),
	}
	if file, header, err := r.FormFile("scheduleFile"); err == nil {
		defer file.Close()
		// Read one byte past the cap so an oversized file is rejected
		// outright instead of being truncated and uploaded corrupt.
		data, err := io.ReadAll(io.LimitReader(file, maxScheduleFileBytes+1))
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "could not read schedule file")
			return
		}
		if len(data) > maxScheduleFileBytes {
			a.error(w, http.StatusRequestEntityTooLarge, "file_too_large", "schedule file exceeds the size limit")
			return
		}
		draft.Attachment = &domain.Attachment{Name: header.Filename, Data: data}
	}

	err := a.State.SubmitPayment(r.Context(), draft)
	switch {
	case err == nil:
		a.json(w, http.StatusCreated, map[string]any{"success": true})
	case errors.Is(err, domain.ErrSubmissionInFlight):
		a.error(w, http.StatusConflict, "submission_in_flight", "A submission is already in progress.")
	case errors.Is(err, domain.ErrUploadFailed):
		a.error(w, http.StatusBadGateway, "upload_failed", "Failed to upload schedule file.")
	case errors.Is(err, domain.ErrSubmissionRejected):
		a.error(w, http.StatusUnprocessableEntity, "submission_rejected", "Failed to log payment.")
	case dashboard.IsSubmissionError(err):
		a.error(w, http.StatusBadGateway, "record_service_unreachable", "Could not reach the record service.")
	default:
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	}
}

// Notice exposes the transient inline message so a polling UI can mirror
// the 4-second self-clearing banner.
func (a *App) Notice(w http.ResponseWriter, r *http.Request) {
	if n := a.State.Notice(); n != nil {
		a.json(w, http.StatusOK, n)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Refresh re-triggers the full dashboard load, the user-driven retry path
// after a failed fetch.
func (a *App) Refresh(w http.ResponseWriter, r *http.Request) {
	if !a.requireSession(w) {
		return
	}
	a.State.RefreshAll(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) requireSession(w http.ResponseWriter) bool {
	if a.State.Authenticated() {
		return true
	}
	a.error(w, http.StatusUnauthorized, "unauthorized", "not logged in")
	return false
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]string{"error": errCode, "message": message})
}

func parseAmount(v string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0
	}
	return f
}
