package duesapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// captureTransport stubs the record service per action, recording the last
// request URL and body so tests can assert on the wire format.
type captureTransport struct {
	responses  map[string]responseStub
	lastURL    *url.URL
	lastBody   []byte
	lastHeader http.Header
}

type responseStub struct {
	status int
	body   []byte
}

func newCaptureTransport() *captureTransport {
	return &captureTransport{responses: map[string]responseStub{}}
}

func (c *captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.lastURL = req.URL
	c.lastHeader = req.Header.Clone()
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		req.Body.Close()
		c.lastBody = body
	}
	if stub, ok := c.responses[req.URL.Query().Get("action")]; ok {
		return stub.toResponse(), nil
	}
	return &http.Response{
		StatusCode: http.StatusNotFound,
		Body:       io.NopCloser(strings.NewReader("not found")),
	}, nil
}

func (c *captureTransport) setJSONResponse(action string, payload any) {
	body, _ := json.Marshal(payload)
	c.responses[action] = responseStub{status: http.StatusOK, body: body}
}

func (c *captureTransport) setRawResponse(action string, body []byte) {
	c.responses[action] = responseStub{status: http.StatusOK, body: body}
}

func (c *captureTransport) setErrorResponse(action string, status int, message string) {
	c.responses[action] = responseStub{status: status, body: []byte(message)}
}

func (s responseStub) toResponse() *http.Response {
	return &http.Response{
		StatusCode: s.status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(s.body)),
	}
}
