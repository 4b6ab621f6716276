package offline

import (
	"context"
	"net/http"
)

// Response is a stored or fetched HTTP response.
type Response struct {
	URL    string      `json:"url"`
	Status int         `json:"status"`
	Header http.Header `json:"header,omitempty"`
	Body   []byte      `json:"-"`
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r != nil && r.Status >= 200 && r.Status < 300
}

// Clone returns a deep copy.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	out := &Response{URL: r.URL, Status: r.Status, Header: r.Header.Clone()}
	if r.Body != nil {
		out.Body = append([]byte(nil), r.Body...)
	}
	return out
}

// Container is one named bucket of cached responses keyed by absolute URL.
type Container interface {
	Name() string
	Put(ctx context.Context, key string, resp *Response) error
	Match(ctx context.Context, key string) (*Response, bool, error)
	Keys(ctx context.Context) ([]string, error)
}

// CacheStorage holds every container known to the worker host.
type CacheStorage interface {
	// Open returns the container called name, creating it when missing.
	Open(ctx context.Context, name string) (Container, error)
	Has(ctx context.Context, name string) (bool, error)
	// Delete removes the container and its entries, reporting whether it
	// existed.
	Delete(ctx context.Context, name string) (bool, error)
	// Keys lists container names in creation order.
	Keys(ctx context.Context) ([]string, error)
}
