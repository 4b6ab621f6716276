package offline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Mode distinguishes top-level page loads from subresource requests.
type Mode string

const (
	ModeDefault  Mode = ""
	ModeNavigate Mode = "navigate"
)

// Request is the worker's view of an intercepted request.
type Request struct {
	Method string
	URL    string
	Mode   Mode
	Header http.Header
}

// IsNavigation reports whether the request is a top-level page load.
func (r Request) IsNavigation() bool {
	return r.Mode == ModeNavigate
}

func (r Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(r.Method)
}

// NetworkError wraps a transport failure: the request never produced a
// response.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("offline: network request for %s failed: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsNetworkError reports whether err is a transport failure.
func IsNetworkError(err error) bool {
	var nerr *NetworkError
	return errors.As(err, &nerr)
}

// Fetcher performs a request against the network.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (*Response, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, req Request) (*Response, error)

func (fn FetcherFunc) Fetch(ctx context.Context, req Request) (*Response, error) {
	return fn(ctx, req)
}

// HTTPFetcher is a Fetcher backed by an *http.Client. Transport errors are
// returned as *NetworkError; HTTP error statuses are ordinary responses.
type HTTPFetcher struct {
	Client *http.Client
	// MaxBodyBytes caps how much of a body is read; zero means unlimited.
	MaxBodyBytes int64
}

var _ Fetcher = (*HTTPFetcher)(nil)

func (f *HTTPFetcher) Fetch(ctx context.Context, req Request) (*Response, error) {
	client := http.DefaultClient
	if f != nil && f.Client != nil {
		client = f.Client
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method(), req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("offline: build request for %s: %w", req.URL, err)
	}
	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{URL: req.URL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	var body io.Reader = resp.Body
	if f != nil && f.MaxBodyBytes > 0 {
		body = io.LimitReader(resp.Body, f.MaxBodyBytes)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &NetworkError{URL: req.URL, Err: err}
	}

	return &Response{
		URL:    req.URL,
		Status: resp.StatusCode,
		Header: resp.Header.Clone(),
		Body:   data,
	}, nil
}
