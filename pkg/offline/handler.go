package offline

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

var forwardedHeaders = []string{"Accept", "Accept-Language", "User-Agent", "Sec-Fetch-Mode"}

var hopByHopHeaders = map[string]struct{}{
	"Connection":          {},
	"Keep-Alive":          {},
	"Proxy-Authenticate":  {},
	"Proxy-Authorization": {},
	"Te":                  {},
	"Trailer":             {},
	"Transfer-Encoding":   {},
	"Upgrade":             {},
	"Content-Length":      {},
}

// HandlerOption configures the proxy handler.
type HandlerOption func(*handler)

// WithHandlerLogger attaches a logger to the handler.
func WithHandlerLogger(logger *zap.Logger) HandlerOption {
	return func(h *handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

type handler struct {
	worker *Worker
	logger *zap.Logger
}

// Handler exposes worker as a caching proxy. Origin-form requests map onto
// the worker origin; absolute-form requests (forward proxy) are used as is.
func Handler(worker *Worker, opts ...HandlerOption) http.Handler {
	h := &handler{worker: worker, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(h)
	}
	return h
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.worker == nil {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}

	req := Request{
		Method: r.Method,
		URL:    h.targetURL(r),
		Mode:   RequestMode(r),
		Header: make(http.Header),
	}
	for _, name := range forwardedHeaders {
		if value := r.Header.Get(name); value != "" {
			req.Header.Set(name, value)
		}
	}

	resp, err := h.worker.Fetch(r.Context(), req)
	if err != nil {
		h.logger.Warn("proxy fetch failed", zap.String("url", req.URL), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}

	for key, values := range resp.Header {
		if _, skip := hopByHopHeaders[http.CanonicalHeaderKey(key)]; skip {
			continue
		}
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(resp.Body)))
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(resp.Body); err != nil {
		h.logger.Debug("write proxy response", zap.String("url", req.URL), zap.Error(err))
	}
}

func (h *handler) targetURL(r *http.Request) string {
	if r.URL.IsAbs() {
		return CacheKey(r.URL)
	}
	origin := h.worker.Origin()
	target := url.URL{
		Scheme:   origin.Scheme,
		Host:     origin.Host,
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
	}
	return CacheKey(&target)
}

// RequestMode classifies r the way a browser marks top-level page loads.
func RequestMode(r *http.Request) Mode {
	if r == nil {
		return ModeDefault
	}
	if mode := strings.TrimSpace(r.Header.Get("Sec-Fetch-Mode")); mode != "" {
		if strings.EqualFold(mode, string(ModeNavigate)) {
			return ModeNavigate
		}
		return ModeDefault
	}
	if r.Method == http.MethodGet && strings.Contains(r.Header.Get("Accept"), "text/html") {
		return ModeNavigate
	}
	return ModeDefault
}
