package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	devhttp "github.com/randalmurphal/jirarest/http"
	"github.com/randalmurphal/jirarest/promise"
)

// Helpers shared by the resource clients. Each builds one request, sends it
// through the shared transport, and attaches the parser or error translator
// as a continuation.

func getAndParse[T any](ctx context.Context, t *devhttp.Client, uri *url.URL, p Parser[T]) *promise.Promise[T] {
	return promise.Then(t.Get(ctx, uri), parseResponse(p))
}

func postAndParse[I, T any](ctx context.Context, t *devhttp.Client, uri *url.URL, in I, gen Generator[I], p Parser[T]) *promise.Promise[T] {
	body, err := encode(in, gen)
	if err != nil {
		return promise.Reject[T](err)
	}
	return promise.Then(t.Post(ctx, uri, body), parseResponse(p))
}

func putAndParse[I, T any](ctx context.Context, t *devhttp.Client, uri *url.URL, in I, gen Generator[I], p Parser[T]) *promise.Promise[T] {
	body, err := encode(in, gen)
	if err != nil {
		return promise.Reject[T](err)
	}
	return promise.Then(t.Put(ctx, uri, body), parseResponse(p))
}

func post[I any](ctx context.Context, t *devhttp.Client, uri *url.URL, in I, gen Generator[I]) *promise.Promise[struct{}] {
	body, err := encode(in, gen)
	if err != nil {
		return promise.Reject[struct{}](err)
	}
	return promise.Then(t.Post(ctx, uri, body), checkResponse)
}

func put[I any](ctx context.Context, t *devhttp.Client, uri *url.URL, in I, gen Generator[I]) *promise.Promise[struct{}] {
	body, err := encode(in, gen)
	if err != nil {
		return promise.Reject[struct{}](err)
	}
	return promise.Then(t.Put(ctx, uri, body), checkResponse)
}

// postEmpty sends a POST carrying raw (possibly nil) JSON.
func postEmpty(ctx context.Context, t *devhttp.Client, uri *url.URL, raw []byte) *promise.Promise[struct{}] {
	return promise.Then(t.Post(ctx, uri, raw), checkResponse)
}

func del(ctx context.Context, t *devhttp.Client, uri *url.URL) *promise.Promise[struct{}] {
	return promise.Then(t.Delete(ctx, uri), checkResponse)
}

func parseResponse[T any](p Parser[T]) func(*devhttp.Response) (T, error) {
	return func(resp *devhttp.Response) (T, error) {
		if !resp.IsSuccess() {
			var zero T
			return zero, translateError(resp)
		}
		return p(resp.Body)
	}
}

func checkResponse(resp *devhttp.Response) (struct{}, error) {
	if !resp.IsSuccess() {
		return struct{}{}, translateError(resp)
	}
	return struct{}{}, nil
}

func encode[I any](in I, gen Generator[I]) ([]byte, error) {
	body, err := gen(in)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return data, nil
}

// resource joins escaped path segments onto base.
func resource(base *url.URL, segments ...string) *url.URL {
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	return base.JoinPath(escaped...)
}

// withQuery returns a copy of u with q merged into its query string.
func withQuery(u *url.URL, q url.Values) *url.URL {
	out := *u
	merged := u.Query()
	for k, vals := range q {
		for _, v := range vals {
			merged.Add(k, v)
		}
	}
	out.RawQuery = merged.Encode()
	return &out
}

func checkURI(uri *url.URL) error {
	if uri == nil {
		return ErrURIRequired
	}
	return nil
}

func checkKey(key string) error {
	if !ValidateIssueIDOrKey(key) {
		return fmt.Errorf("%w: %q", ErrIssueKeyInvalid, key)
	}
	return nil
}

func unsupported[T any](op string) *promise.Promise[T] {
	return promise.Reject[T](fmt.Errorf("%s: %w", op, ErrUnsupportedOperation))
}
