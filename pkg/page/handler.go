package page

import (
	"context"
	"io/fs"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-vanreport/pkg/report"
	"github.com/goliatone/go-vanreport/pkg/templates"
)

// TemplateLister supplies the saved templates shown in the shell.
type TemplateLister interface {
	List(ctx context.Context) []templates.Template
}

// StateFunc supplies the report state the shell is rendered with.
type StateFunc func(ctx context.Context) report.State

// HandlerOption configures Handler.
type HandlerOption func(*handler)

// WithStateFunc overrides the initial state, by default an empty report for
// today with a single blank row.
func WithStateFunc(fn StateFunc) HandlerOption {
	return func(h *handler) {
		if fn != nil {
			h.state = fn
		}
	}
}

// WithHandlerLogger sets the logger used for render failures.
func WithHandlerLogger(logger *zap.Logger) HandlerOption {
	return func(h *handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

type handler struct {
	renderer *Renderer
	saved    TemplateLister
	state    StateFunc
	logger   *zap.Logger
}

// Handler serves the shell at "/" and "/index.html", the embedded assets
// under "/assets/", and the install manifest. saved may be nil.
func Handler(renderer *Renderer, saved TemplateLister, opts ...HandlerOption) http.Handler {
	h := &handler{
		renderer: renderer,
		saved:    saved,
		state:    TodayState,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(h)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.serveShell)
	mux.HandleFunc("GET /index.html", h.serveShell)
	mux.HandleFunc("GET /"+WebManifestPath, serveWebManifest)
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServerFS(Assets())))
	return mux
}

// TodayState is an empty report dated today with one blank row.
func TodayState(context.Context) report.State {
	state := report.NewState(time.Now().Format(time.DateOnly), nil)
	next, err := state.Apply(report.AddRow{})
	if err != nil {
		return state
	}
	return next
}

func (h *handler) serveShell(w http.ResponseWriter, r *http.Request) {
	var saved []templates.Template
	if h.saved != nil {
		saved = h.saved.List(r.Context())
	}
	html, err := h.renderer.RenderShell(h.state(r.Context()), saved)
	if err != nil {
		h.logger.Error("render shell", zap.Error(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

func serveWebManifest(w http.ResponseWriter, _ *http.Request) {
	data, err := fs.ReadFile(Assets(), WebManifestPath)
	if err != nil {
		http.Error(w, "manifest unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/manifest+json")
	_, _ = w.Write(data)
}
