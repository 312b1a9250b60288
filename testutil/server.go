package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// RecordedRequest is a request received by a FakeServer.
type RecordedRequest struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
}

// Query parses the recorded query string.
func (r RecordedRequest) Query() url.Values {
	q, _ := url.ParseQuery(r.RawQuery)
	return q
}

// FakeServer is an in-process Jira stand-in. Routes are registered with
// chi patterns (e.g. "/rest/api/2/component/{id}") and every request is
// recorded. Unrouted requests get chi's plain-text 404.
type FakeServer struct {
	*httptest.Server

	router   chi.Router
	mu       sync.Mutex
	requests []RecordedRequest
}

// NewFakeServer starts a FakeServer that is closed when the test ends.
func NewFakeServer(t *testing.T) *FakeServer {
	t.Helper()

	s := &FakeServer{router: chi.NewRouter()}
	s.router.Use(s.record)
	s.Server = httptest.NewServer(s.router)
	t.Cleanup(s.Close)
	return s
}

func (s *FakeServer) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:   r.Method,
			Path:     r.URL.EscapedPath(),
			RawQuery: r.URL.RawQuery,
			Header:   r.Header.Clone(),
			Body:     body,
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

// Handle answers method+pattern with a fixed status and JSON body.
// An empty body sends no content.
func (s *FakeServer) Handle(method, pattern string, status int, body string) {
	s.HandleFunc(method, pattern, func(w http.ResponseWriter, _ *http.Request) {
		if body != "" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

// HandleFunc routes method+pattern to h.
func (s *FakeServer) HandleFunc(method, pattern string, h http.HandlerFunc) {
	s.router.MethodFunc(method, pattern, h)
}

// Requests returns every request received so far.
func (s *FakeServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// RequestCount returns the number of requests received.
func (s *FakeServer) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// LastRequest returns the most recent request.
func (s *FakeServer) LastRequest(t *testing.T) RecordedRequest {
	t.Helper()

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		t.Fatal("fake server received no requests")
	}
	return s.requests[len(s.requests)-1]
}

// URI resolves path against the server URL.
func (s *FakeServer) URI(t *testing.T, path string) *url.URL {
	t.Helper()

	u, err := url.Parse(s.URL + path)
	if err != nil {
		t.Fatalf("parse %q: %v", path, err)
	}
	return u
}

// Param returns a chi URL parameter of r.
func Param(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
