package web

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Mondli-02/union-dues-system/internal/auth"
	"github.com/Mondli-02/union-dues-system/internal/dashboard"
	"github.com/Mondli-02/union-dues-system/internal/directory"
	"github.com/Mondli-02/union-dues-system/internal/domain"
	"github.com/Mondli-02/union-dues-system/internal/duesapi"
	"github.com/Mondli-02/union-dues-system/internal/infra"
)

// fakeRecordService stands in for the remote record-keeping backend.
type fakeRecordService struct {
	mu           sync.Mutex
	password     string
	payments     []map[string]any
	logBodies    []map[string]any
	uploadCalls  int
	summaryCalls int
	historyCalls int
	rejectLog    bool
}

func (f *fakeRecordService) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("action") {
		case "login":
			var req map[string]string
			_ = json.NewDecoder(r.Body).Decode(&req)
			ok := req["institutionID"] == "A1" && req["password"] == f.password
			_ = json.NewEncoder(w).Encode(map[string]any{"success": ok, "session": map[string]any{"token": "opaque"}})
		case "getSummary":
			f.summaryCalls++
			_ = json.NewEncoder(w).Encode(map[string]any{"totalMembers": 0, "totalUSD": 0, "totalZWL": 0, "outstandingMonths": 0})
		case "getMembers":
			_ = json.NewEncoder(w).Encode(map[string]any{"members": []any{}})
		case "getPaymentHistory":
			f.historyCalls++
			_ = json.NewEncoder(w).Encode(map[string]any{"payments": f.payments})
		case "uploadFile":
			f.uploadCalls++
			_ = json.NewEncoder(w).Encode(map[string]any{"fileUrl": "https://files.example.com/up.pdf"})
		case "logPayment":
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			f.logBodies = append(f.logBodies, body)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": !f.rejectLog})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func newFacade(t *testing.T, svc *fakeRecordService) (*httptest.Server, *dashboard.AppState) {
	t.Helper()
	backend := httptest.NewServer(svc.handler())
	t.Cleanup(backend.Close)

	client, err := duesapi.NewClient(duesapi.Options{BaseURL: backend.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	dir := directory.FromInstitutions([]domain.Institution{{ID: "A1", Name: "Acme"}})
	logger := infra.DiscardLogger()
	state := dashboard.New(dashboard.Options{
		Authenticator: auth.NewRemote(client, dir, logger),
		API:           client,
		NoticeTTL:     50 * time.Millisecond,
	})
	app := &App{State: state, Dir: dir, Logger: logger}
	cfg := &infra.Config{AllowedOrigins: []string{"*"}, LoginRatePerMin: 100}
	facade := httptest.NewServer(NewRouter(app, cfg))
	t.Cleanup(facade.Close)
	return facade, state
}

func login(t *testing.T, facade *httptest.Server, password string) *http.Response {
	t.Helper()
	body := strings.NewReader(`{"institutionID":"A1","password":"` + password + `"}`)
	resp, err := http.Post(facade.URL+"/api/login", "application/json", body)
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	return resp
}

func TestEndToEndDashboardScenario(t *testing.T) {
	svc := &fakeRecordService{password: "pw"}
	facade, _ := newFacade(t, svc)

	// Login as the only institution in the directory.
	resp := login(t, facade, "pw")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}
	var session map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session["institutionID"] != "A1" || session["institutionName"] != "Acme" {
		t.Fatalf("unexpected session: %#v", session)
	}

	// Empty membership is an empty collection, not an error.
	membersResp, err := http.Get(facade.URL + "/api/members")
	if err != nil {
		t.Fatalf("members request: %v", err)
	}
	defer membersResp.Body.Close()
	var members struct {
		Members []map[string]any `json:"members"`
	}
	if err := json.NewDecoder(membersResp.Body).Decode(&members); err != nil {
		t.Fatalf("decode members: %v", err)
	}
	if members.Members == nil || len(members.Members) != 0 {
		t.Fatalf("expected empty member collection, got %#v", members.Members)
	}

	svc.mu.Lock()
	summaryBefore, historyBefore := svc.summaryCalls, svc.historyCalls
	svc.mu.Unlock()

	// Log a payment without a file.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("transactionID", "T100")
	_ = mw.WriteField("date", "2026-02-01")
	_ = mw.WriteField("amountUSD", "50")
	_ = mw.WriteField("amountZWL", "0")
	_ = mw.WriteField("monthsPaid", "1")
	mw.Close()

	submitResp, err := http.Post(facade.URL+"/api/payments", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("submit request: %v", err)
	}
	defer submitResp.Body.Close()
	if submitResp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(submitResp.Body)
		t.Fatalf("submit status = %d: %s", submitResp.StatusCode, raw)
	}

	svc.mu.Lock()
	logged := append([]map[string]any(nil), svc.logBodies...)
	uploads := svc.uploadCalls
	summaryRefetches := svc.summaryCalls - summaryBefore
	historyRefetches := svc.historyCalls - historyBefore
	svc.mu.Unlock()

	if uploads != 0 {
		t.Fatalf("expected 0 upload calls, got %d", uploads)
	}
	if len(logged) != 1 {
		t.Fatalf("expected exactly 1 logPayment call, got %d", len(logged))
	}
	if _, ok := logged[0]["scheduleFileLink"]; ok {
		t.Fatalf("scheduleFileLink must be absent: %#v", logged[0])
	}
	if logged[0]["transactionID"] != "T100" || logged[0]["amountUSD"] != float64(50) {
		t.Fatalf("unexpected logPayment body: %#v", logged[0])
	}
	if summaryRefetches != 1 || historyRefetches != 1 {
		t.Fatalf("expected one summary and one history re-fetch, got %d/%d", summaryRefetches, historyRefetches)
	}

	// The transient confirmation is visible, then clears itself.
	noticeResp, err := http.Get(facade.URL + "/api/notice")
	if err != nil {
		t.Fatalf("notice request: %v", err)
	}
	defer noticeResp.Body.Close()
	if noticeResp.StatusCode != http.StatusOK {
		t.Fatalf("notice status = %d", noticeResp.StatusCode)
	}
	deadline := time.Now().Add(time.Second)
	for {
		r2, err := http.Get(facade.URL + "/api/notice")
		if err != nil {
			t.Fatalf("notice poll: %v", err)
		}
		r2.Body.Close()
		if r2.StatusCode == http.StatusNoContent {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("notice did not self-clear")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := &fakeRecordService{password: "pw"}
	facade, state := newFacade(t, svc)

	resp := login(t, facade, "wrong")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	if state.Authenticated() {
		t.Fatalf("session must stay unauthenticated")
	}
}

func TestEndpointsRequireSession(t *testing.T) {
	svc := &fakeRecordService{password: "pw"}
	facade, _ := newFacade(t, svc)

	for _, path := range []string{"/api/summary", "/api/members", "/api/payments", "/api/payments/export"} {
		resp, err := http.Get(facade.URL + path)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s status = %d, want 401", path, resp.StatusCode)
		}
	}
}

func TestRejectedSubmissionLeavesHistoryUnchanged(t *testing.T) {
	svc := &fakeRecordService{password: "pw", rejectLog: true, payments: []map[string]any{{"TransactionID": "T1"}}}
	facade, state := newFacade(t, svc)

	resp := login(t, facade, "pw")
	resp.Body.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("transactionID", "T200")
	_ = mw.WriteField("date", "2026-02-01")
	_ = mw.WriteField("amountUSD", "10")
	_ = mw.WriteField("monthsPaid", "1")
	mw.Close()

	submitResp, err := http.Post(facade.URL+"/api/payments", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("submit request: %v", err)
	}
	defer submitResp.Body.Close()
	if submitResp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("submit status = %d, want 422", submitResp.StatusCode)
	}

	if got := state.Payments(); len(got) != 1 || got[0].TransactionID != "T1" {
		t.Fatalf("prior history must be unchanged, got %+v", got)
	}
	if n := state.Notice(); n == nil || n.Kind != dashboard.NoticeError {
		t.Fatalf("expected a failure notice, got %+v", n)
	}
}

func TestSubmissionWithFileUploadsFirst(t *testing.T) {
	svc := &fakeRecordService{password: "pw"}
	facade, _ := newFacade(t, svc)

	resp := login(t, facade, "pw")
	resp.Body.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("transactionID", "T300")
	_ = mw.WriteField("date", "2026-03-01")
	_ = mw.WriteField("amountUSD", "80")
	_ = mw.WriteField("monthsPaid", "2")
	fw, _ := mw.CreateFormFile("scheduleFile", "schedule.pdf")
	fw.Write([]byte("%PDF-1.4 fake"))
	mw.Close()

	submitResp, err := http.Post(facade.URL+"/api/payments", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("submit request: %v", err)
	}
	defer submitResp.Body.Close()
	if submitResp.StatusCode != http.StatusCreated {
		t.Fatalf("submit status = %d, want 201", submitResp.StatusCode)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.uploadCalls != 1 {
		t.Fatalf("expected 1 upload call, got %d", svc.uploadCalls)
	}
	if len(svc.logBodies) != 1 {
		t.Fatalf("expected 1 logPayment call, got %d", len(svc.logBodies))
	}
	if svc.logBodies[0]["scheduleFileLink"] != "https://files.example.com/up.pdf" {
		t.Fatalf("file link missing from record: %#v", svc.logBodies[0])
	}
}

func TestOversizedScheduleFileRejectedNotTruncated(t *testing.T) {
	svc := &fakeRecordService{password: "pw"}
	facade, _ := newFacade(t, svc)

	resp := login(t, facade, "pw")
	resp.Body.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("transactionID", "T400")
	_ = mw.WriteField("date", "2026-04-01")
	_ = mw.WriteField("amountUSD", "80")
	_ = mw.WriteField("monthsPaid", "2")
	fw, _ := mw.CreateFormFile("scheduleFile", "schedule.pdf")
	fw.Write(bytes.Repeat([]byte("x"), 10<<20+4096))
	mw.Close()

	submitResp, err := http.Post(facade.URL+"/api/payments", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("submit request: %v", err)
	}
	defer submitResp.Body.Close()
	if submitResp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("submit status = %d, want 413", submitResp.StatusCode)
	}

	// Nothing may reach the record service: a truncated file uploaded as if
	// complete would corrupt the attached schedule.
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.uploadCalls != 0 {
		t.Fatalf("expected 0 upload calls, got %d", svc.uploadCalls)
	}
	if len(svc.logBodies) != 0 {
		t.Fatalf("expected 0 logPayment calls, got %d", len(svc.logBodies))
	}
}

func TestExportServesCSV(t *testing.T) {
	svc := &fakeRecordService{password: "pw", payments: []map[string]any{{
		"TransactionID": "T1", "Date": "2026-01-01", "AmountUSD": 50, "MonthsPaid": 1, "Status": "Picked Up",
	}}}
	facade, _ := newFacade(t, svc)

	resp := login(t, facade, "pw")
	resp.Body.Close()

	csvResp, err := http.Get(facade.URL + "/api/payments/export")
	if err != nil {
		t.Fatalf("export request: %v", err)
	}
	defer csvResp.Body.Close()
	if ct := csvResp.Header.Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("content type = %q", ct)
	}
	raw, _ := io.ReadAll(csvResp.Body)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "TransactionID,ReceiptNumber,") {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "Picked Up") {
		t.Fatalf("unexpected row: %q", lines[1])
	}
}
