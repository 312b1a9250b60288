package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

func TestStatusSentinel(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{400, ErrBadRequest},
		{401, ErrUnauthorized},
		{403, ErrForbidden},
		{404, ErrNotFound},
		{429, ErrRateLimited},
		{500, ErrServerError},
		{503, ErrServerError},
		{409, nil},
		{200, nil},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			if got := StatusSentinel(tt.status); got != tt.want {
				t.Errorf("StatusSentinel(%d) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestTransportError(t *testing.T) {
	inner := errors.New("connection refused")
	err := &TransportError{Service: "jira", Method: "GET", URL: "http://x/rest", Err: inner}

	want := "jira GET http://x/rest: connection refused"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, inner) {
		t.Error("TransportError should unwrap to the underlying error")
	}
	if !IsTransportError(err) {
		t.Error("IsTransportError() = false, want true")
	}
	if IsNotFound(err) {
		t.Error("transport failure must not look like a 404")
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name    string
		err     *ValidationError
		wantMsg string
	}{
		{
			name: "with field",
			err: &ValidationError{
				Service: "jira",
				Field:   "name",
				Message: "is required",
			},
			wantMsg: "jira validation error on name: is required",
		},
		{
			name: "without field",
			err: &ValidationError{
				Service: "jira",
				Message: "Request body is invalid",
			},
			wantMsg: "jira validation error: Request body is invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, ErrBadRequest) {
				t.Error("ValidationError should unwrap to ErrBadRequest")
			}
			if !IsValidationError(tt.err) {
				t.Error("IsValidationError() = false, want true")
			}
		})
	}
}

func TestPageIterator(t *testing.T) {
	t.Run("iterates through pages", func(t *testing.T) {
		data := []int{1, 2, 3, 4, 5, 6, 7}
		var starts []int

		fetch := func(_ context.Context, startAt int) ([]int, int, error) {
			starts = append(starts, startAt)
			end := min(startAt+3, len(data))
			return data[startAt:end], len(data), nil
		}

		iter := NewPageIterator(fetch)
		got, err := iter.All(context.Background())
		if err != nil {
			t.Fatalf("All() error = %v", err)
		}

		if len(got) != len(data) {
			t.Fatalf("got %d items, want %d", len(got), len(data))
		}
		for i, v := range got {
			if v != data[i] {
				t.Errorf("item %d = %d, want %d", i, v, data[i])
			}
		}
		wantStarts := []int{0, 3, 6}
		if len(starts) != len(wantStarts) {
			t.Fatalf("fetched %d pages, want %d", len(starts), len(wantStarts))
		}
		for i := range wantStarts {
			if starts[i] != wantStarts[i] {
				t.Errorf("page %d startAt = %d, want %d", i, starts[i], wantStarts[i])
			}
		}
		if iter.Total() != 7 || iter.Fetched() != 7 {
			t.Errorf("Total() = %d, Fetched() = %d, want 7, 7", iter.Total(), iter.Fetched())
		}
	})

	t.Run("stops on empty page", func(t *testing.T) {
		calls := 0
		fetch := func(_ context.Context, _ int) ([]string, int, error) {
			calls++
			return nil, 100, nil
		}

		got, err := NewPageIterator(fetch).All(context.Background())
		if err != nil {
			t.Fatalf("All() error = %v", err)
		}
		if len(got) != 0 || calls != 1 {
			t.Errorf("got %d items in %d calls, want 0 in 1", len(got), calls)
		}
	})

	t.Run("propagates error", func(t *testing.T) {
		wantErr := errors.New("fetch failed")
		fetch := func(_ context.Context, _ int) ([]int, int, error) {
			return nil, 0, wantErr
		}

		iter := NewPageIterator(fetch)
		_, err := iter.All(context.Background())
		if !errors.Is(err, wantErr) {
			t.Errorf("got error %v, want %v", err, wantErr)
		}
		if !errors.Is(iter.Err(), wantErr) {
			t.Errorf("Err() = %v, want %v", iter.Err(), wantErr)
		}
	})

	t.Run("Take limits results", func(t *testing.T) {
		fetch := func(_ context.Context, startAt int) ([]int, int, error) {
			return []int{startAt + 1, startAt + 2, startAt + 3, startAt + 4, startAt + 5}, 50, nil
		}

		got, err := NewPageIterator(fetch).Take(context.Background(), 3)
		if err != nil {
			t.Fatalf("Take() error = %v", err)
		}
		if len(got) != 3 {
			t.Errorf("got %d items, want 3", len(got))
		}
	})

	t.Run("ForEach processes all items", func(t *testing.T) {
		fetch := func(_ context.Context, _ int) ([]int, int, error) {
			return []int{1, 2, 3}, 3, nil
		}

		var sum int
		err := NewPageIterator(fetch).ForEach(context.Background(), func(i int) error {
			sum += i
			return nil
		})
		if err != nil {
			t.Fatalf("ForEach() error = %v", err)
		}
		if sum != 6 {
			t.Errorf("sum = %d, want 6", sum)
		}
	})
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}

func TestClient(t *testing.T) {
	t.Run("successful GET", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Accept") != "application/json" {
				t.Errorf("Accept = %q", r.Header.Get("Accept"))
			}
			if r.Header.Get("User-Agent") != DefaultUserAgent {
				t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
			}
			_, _ = io.WriteString(w, `{"name":"test"}`)
		}))
		defer server.Close()

		client := NewClient(ClientConfig{ServiceName: "test"})
		resp, err := client.Get(context.Background(), mustURL(t, server.URL+"/test")).Wait()
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if !resp.IsSuccess() || string(resp.Body) != `{"name":"test"}` {
			t.Errorf("got %d %q", resp.StatusCode, resp.Body)
		}
	})

	t.Run("POST sends body and content type", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("got method %s, want POST", r.Method)
			}
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			body, _ := io.ReadAll(r.Body)
			if string(body) != `{"key":"value"}` {
				t.Errorf("body = %s", body)
			}
			w.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client := NewClient(ClientConfig{ServiceName: "test"})
		resp, err := client.Post(context.Background(), mustURL(t, server.URL), []byte(`{"key":"value"}`)).Wait()
		if err != nil {
			t.Fatalf("Post() error = %v", err)
		}
		if resp.StatusCode != http.StatusCreated {
			t.Errorf("status = %d, want 201", resp.StatusCode)
		}
	})

	t.Run("error status resolves with the response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"errorMessages":["gone"]}`)
		}))
		defer server.Close()

		client := NewClient(ClientConfig{ServiceName: "test"})
		resp, err := client.Get(context.Background(), mustURL(t, server.URL)).Wait()
		if err != nil {
			t.Fatalf("Get() error = %v, want nil for 404", err)
		}
		if resp.IsSuccess() || resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want 404", resp.StatusCode)
		}
	})

	t.Run("applies beforeRequest hook", func(t *testing.T) {
		var gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
		}))
		defer server.Close()

		client := NewClient(ClientConfig{
			ServiceName: "test",
			BeforeRequest: func(req *http.Request) error {
				req.Header.Set("Authorization", "Bearer token123")
				return nil
			},
		})

		_, _ = client.Get(context.Background(), mustURL(t, server.URL)).Wait()
		if gotAuth != "Bearer token123" {
			t.Errorf("got Authorization = %q, want %q", gotAuth, "Bearer token123")
		}
	})

	t.Run("hook failure is an authenticate error", func(t *testing.T) {
		var served atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			served.Add(1)
		}))
		defer server.Close()

		hookErr := errors.New("oauth2: cannot fetch token: 401 Unauthorized")
		client := NewClient(ClientConfig{
			ServiceName:   "test",
			BeforeRequest: func(*http.Request) error { return hookErr },
		})
		_, err := client.Get(context.Background(), mustURL(t, server.URL)).Wait()
		if !errors.Is(err, hookErr) || !IsAuthenticateError(err) {
			t.Errorf("error = %v, want authenticate error wrapping hook error", err)
		}
		if IsTransportError(err) {
			t.Errorf("IsTransportError(%v) = true, want false", err)
		}
		if n := served.Load(); n != 0 {
			t.Errorf("server saw %d requests, want 0", n)
		}
	})

	t.Run("does not retry on 5xx", func(t *testing.T) {
		var attempts atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			attempts.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := NewClient(ClientConfig{ServiceName: "test"})
		resp, err := client.Get(context.Background(), mustURL(t, server.URL)).Wait()
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", resp.StatusCode)
		}
		if n := attempts.Load(); n != 1 {
			t.Errorf("got %d attempts, want 1", n)
		}
	})

	t.Run("connection failure is a transport error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		addr := server.URL
		server.Close()

		client := NewClient(ClientConfig{ServiceName: "test"})
		_, err := client.Delete(context.Background(), mustURL(t, addr)).Wait()
		var te *TransportError
		if !errors.As(err, &te) {
			t.Fatalf("error = %v, want *TransportError", err)
		}
		if te.Method != http.MethodDelete {
			t.Errorf("Method = %q, want DELETE", te.Method)
		}
	})

	t.Run("timeout is a transport error", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			<-release
		}))
		defer server.Close()
		defer close(release)

		client := NewClient(ClientConfig{
			ServiceName: "test",
			Client:      &http.Client{Timeout: 20 * time.Millisecond},
		})
		_, err := client.Get(context.Background(), mustURL(t, server.URL)).Wait()
		if !IsTransportError(err) {
			t.Errorf("error = %v, want transport error", err)
		}
	})

	t.Run("nil uri rejects", func(t *testing.T) {
		client := NewClient(ClientConfig{})
		if _, err := client.Get(context.Background(), nil).Wait(); !IsTransportError(err) {
			t.Errorf("error = %v, want transport error", err)
		}
	})
}

func TestSanitizeHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Basic abc")
	h.Set("Cookie", "JSESSIONID=1")
	h.Set("Accept", "application/json")

	clean := SanitizeHeaders(h)
	if clean.Get("Authorization") != "<redacted>" || clean.Get("Cookie") != "<redacted>" {
		t.Errorf("credentials not redacted: %v", clean)
	}
	if clean.Get("Accept") != "application/json" {
		t.Errorf("Accept = %q", clean.Get("Accept"))
	}
	if h.Get("Authorization") != "Basic abc" {
		t.Error("SanitizeHeaders must not mutate its input")
	}
}
