// Package duesapi speaks to the remote record-keeping service. The service
// exposes one HTTP endpoint parameterized by an `action` query value and
// exchanges JSON bodies on every call.
package duesapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Mondli-02/union-dues-system/internal/domain"
	"github.com/Mondli-02/union-dues-system/internal/infra"
)

// ErrMissingBaseURL indicates the client was configured without a service URL.
var ErrMissingBaseURL = errors.New("duesapi: base url is required")

// Options configures the record-service client.
type Options struct {
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls against the record-keeping service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// LoginResult is the outcome of a delegated login call.
type LoginResult struct {
	Success bool
	Session map[string]any
}

type loginRequest struct {
	InstitutionID string `json:"institutionID"`
	Password      string `json:"password"`
}

type loginResponse struct {
	Success bool           `json:"success"`
	Session map[string]any `json:"session"`
}

type institutionsResponse struct {
	Institutions []institutionWire `json:"institutions"`
}

type institutionWire struct {
	ID       string `json:"ID"`
	Name     string `json:"Name"`
	Password string `json:"Password"`
}

type summaryResponse struct {
	TotalMembers      flexInt   `json:"totalMembers"`
	TotalUSD          flexFloat `json:"totalUSD"`
	TotalZWL          flexFloat `json:"totalZWL"`
	OutstandingMonths flexInt   `json:"outstandingMonths"`
}

type membersResponse struct {
	Members []memberWire `json:"members"`
}

type memberWire struct {
	MemberID         string `json:"MemberID"`
	Name             string `json:"Name"`
	NationalID       string `json:"NationalID"`
	DateOfBirth      string `json:"DateOfBirth"`
	Gender           string `json:"Gender"`
	JobTitle         string `json:"JobTitle"`
	DateOfEmployment string `json:"DateOfEmployment"`
	Grade            string `json:"Grade"`
	Email            string `json:"Email"`
}

type paymentsResponse struct {
	Payments []paymentWire `json:"payments"`
}

type paymentWire struct {
	TransactionID    string    `json:"TransactionID"`
	ReceiptNumber    string    `json:"ReceiptNumber"`
	Date             string    `json:"Date"`
	AmountUSD        flexFloat `json:"AmountUSD"`
	AmountZWL        flexFloat `json:"AmountZWL"`
	MonthsPaid       flexInt   `json:"MonthsPaid"`
	Status           string    `json:"Status"`
	PickupDate       string    `json:"PickupDate"`
	ScheduleFileLink string    `json:"ScheduleFileLink"`
}

type uploadRequest struct {
	FileName string `json:"fileName"`
	FileData string `json:"fileData"`
}

type uploadResponse struct {
	FileURL string `json:"fileUrl"`
}

type logPaymentRequest struct {
	InstitutionID    string  `json:"institutionID"`
	TransactionID    string  `json:"transactionID"`
	Date             string  `json:"date"`
	AmountUSD        float64 `json:"amountUSD"`
	AmountZWL        float64 `json:"amountZWL"`
	MonthsPaid       int     `json:"monthsPaid"`
	ScheduleFileLink string  `json:"scheduleFileLink,omitempty"`
	IdempotencyKey   string  `json:"idempotencyKey,omitempty"`
}

type logPaymentResponse struct {
	Success bool `json:"success"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, ErrMissingBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		l := infra.DiscardLogger()
		logger = &l
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// GetInstitutions fetches the institution directory from the record service.
func (c *Client) GetInstitutions(ctx context.Context) ([]domain.Institution, error) {
	var decoded institutionsResponse
	if err := c.get(ctx, "getInstitutions", nil, &decoded); err != nil {
		return nil, err
	}
	institutions := make([]domain.Institution, 0, len(decoded.Institutions))
	for _, w := range decoded.Institutions {
		institutions = append(institutions, domain.Institution{
			ID:       w.ID,
			Name:     w.Name,
			Password: w.Password,
		})
	}
	return institutions, nil
}

// GetSummary fetches the dashboard totals scoped to one institution.
// Missing fields decode to zero totals rather than an error.
func (c *Client) GetSummary(ctx context.Context, institutionID string) (domain.Summary, error) {
	var decoded summaryResponse
	if err := c.get(ctx, "getSummary", scope(institutionID), &decoded); err != nil {
		return domain.Summary{}, err
	}
	return domain.Summary{
		TotalMembers:      int(decoded.TotalMembers),
		TotalUSD:          float64(decoded.TotalUSD),
		TotalZWL:          float64(decoded.TotalZWL),
		OutstandingMonths: int(decoded.OutstandingMonths),
	}, nil
}

// GetMembers fetches the membership snapshot scoped to one institution.
func (c *Client) GetMembers(ctx context.Context, institutionID string) ([]domain.Member, error) {
	var decoded membersResponse
	if err := c.get(ctx, "getMembers", scope(institutionID), &decoded); err != nil {
		return nil, err
	}
	members := make([]domain.Member, 0, len(decoded.Members))
	for _, w := range decoded.Members {
		members = append(members, domain.Member{
			MemberID:         w.MemberID,
			Name:             w.Name,
			NationalID:       w.NationalID,
			DateOfBirth:      w.DateOfBirth,
			Gender:           w.Gender,
			JobTitle:         w.JobTitle,
			DateOfEmployment: w.DateOfEmployment,
			Grade:            w.Grade,
			Email:            w.Email,
		})
	}
	return members, nil
}

// GetPaymentHistory fetches the payment snapshot scoped to one institution.
func (c *Client) GetPaymentHistory(ctx context.Context, institutionID string) ([]domain.Payment, error) {
	var decoded paymentsResponse
	if err := c.get(ctx, "getPaymentHistory", scope(institutionID), &decoded); err != nil {
		return nil, err
	}
	payments := make([]domain.Payment, 0, len(decoded.Payments))
	for _, w := range decoded.Payments {
		payments = append(payments, domain.Payment{
			TransactionID:    w.TransactionID,
			ReceiptNumber:    w.ReceiptNumber,
			Date:             w.Date,
			AmountUSD:        float64(w.AmountUSD),
			AmountZWL:        float64(w.AmountZWL),
			MonthsPaid:       int(w.MonthsPaid),
			Status:           domain.PaymentStatus(w.Status),
			PickupDate:       w.PickupDate,
			ScheduleFileLink: w.ScheduleFileLink,
		})
	}
	return payments, nil
}

// Login delegates credential verification to the record service.
func (c *Client) Login(ctx context.Context, institutionID, password string) (LoginResult, error) {
	var decoded loginResponse
	err := c.post(ctx, "login", loginRequest{InstitutionID: institutionID, Password: password}, &decoded)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Success: decoded.Success, Session: decoded.Session}, nil
}

// UploadFile sends a base64-encoded schedule attachment and returns the
// reference URL the record service stored it under.
func (c *Client) UploadFile(ctx context.Context, name string, data []byte) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.New("duesapi: file name is required")
	}
	payload := uploadRequest{
		FileName: name,
		FileData: base64.StdEncoding.EncodeToString(data),
	}
	var decoded uploadResponse
	if err := c.post(ctx, "uploadFile", payload, &decoded); err != nil {
		return "", err
	}
	fileURL := strings.TrimSpace(decoded.FileURL)
	if fileURL == "" {
		return "", errors.New("duesapi: upload returned empty file url")
	}
	c.logger.Debug().Str("file", name).Str("url", fileURL).Msg("duesapi: uploaded schedule file")
	return fileURL, nil
}

// LogPayment posts one payment record. The returned bool mirrors the
// service's success flag; a false flag is not a transport error.
func (c *Client) LogPayment(ctx context.Context, draft domain.PaymentDraft) (bool, error) {
	payload := logPaymentRequest{
		InstitutionID:    draft.InstitutionID,
		TransactionID:    draft.TransactionID,
		Date:             draft.Date,
		AmountUSD:        draft.AmountUSD,
		AmountZWL:        draft.AmountZWL,
		MonthsPaid:       draft.MonthsPaid,
		ScheduleFileLink: draft.ScheduleFileLink,
		IdempotencyKey:   draft.IdempotencyKey,
	}
	var decoded logPaymentResponse
	if err := c.post(ctx, "logPayment", payload, &decoded); err != nil {
		return false, err
	}
	return decoded.Success, nil
}

func scope(institutionID string) url.Values {
	v := url.Values{}
	v.Set("institutionID", institutionID)
	return v
}

func (c *Client) endpoint(action string, params url.Values) string {
	v := url.Values{}
	v.Set("action", action)
	for key, vals := range params {
		for _, val := range vals {
			v.Add(key, val)
		}
	}
	return c.baseURL + "?" + v.Encode()
}

func (c *Client) get(ctx context.Context, action string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(action, params), nil)
	if err != nil {
		return fmt.Errorf("duesapi: build %s request: %w", action, err)
	}
	return c.do(req, action, out)
}

func (c *Client) post(ctx context.Context, action string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("duesapi: encode %s request: %w", action, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(action, nil), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("duesapi: build %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, action, out)
}

func (c *Client) do(req *http.Request, action string, out any) error {
	if rid := infra.RequestIDFromContext(req.Context()); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("duesapi: %s: %w: %w", action, domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("duesapi: read %s response: %w: %w", action, domain.ErrNetwork, err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("duesapi: %s status %d: %s: %w", action, resp.StatusCode, strings.TrimSpace(string(raw)), domain.ErrNetwork)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("duesapi: decode %s response: %w: %w", action, domain.ErrNetwork, err)
	}
	return nil
}
