// package testing contains shared testing utilities
package testing

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"sync"
)

// MockRoundTripper allows custom HTTP responses for testing. Responses are
// consumed in order; the last one repeats once the script runs out.
type MockRoundTripper struct {
	mu        sync.Mutex
	responses []*http.Response
	err       error
	Requests  []*http.Request
}

func NewMockRoundTripper(responses ...*http.Response) *MockRoundTripper {
	return &MockRoundTripper{responses: responses}
}

// NewFailingRoundTripper returns a transport that always errors.
func NewFailingRoundTripper(err error) *MockRoundTripper {
	if err == nil {
		err = errors.New("transport failed")
	}
	return &MockRoundTripper{err: err}
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return nil, errors.New("mock transport: no scripted response")
	}
	resp := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return resp, nil
}

// JSONResponse builds an *http.Response carrying a JSON body.
func JSONResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

// EmptyResponse builds a bodiless *http.Response with optional headers.
func EmptyResponse(status int, header http.Header) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader(nil)),
	}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}
