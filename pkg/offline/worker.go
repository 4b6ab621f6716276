package offline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidTransition is returned when a lifecycle phase is requested out of
// order, e.g. Activate before Install.
var ErrInvalidTransition = errors.New("offline: invalid lifecycle transition")

// State is a lifecycle phase of a Worker.
type State string

const (
	StateParsed     State = "parsed"
	StateInstalling State = "installing"
	StateInstalled  State = "installed"
	StateActivating State = "activating"
	StateActivated  State = "activated"
	StateRedundant  State = "redundant"
)

const defaultInstallConcurrency = 4

// Clients is the set of already-open pages a freshly activated worker takes
// control of.
type Clients interface {
	Claim(ctx context.Context) error
}

// ClaimFunc adapts a function to Clients.
type ClaimFunc func(ctx context.Context) error

func (fn ClaimFunc) Claim(ctx context.Context) error { return fn(ctx) }

// Option configures a Worker.
type Option func(*Worker)

// WithStorage sets the cache storage. Defaults to a MemoryStorage.
func WithStorage(storage CacheStorage) Option {
	return func(w *Worker) {
		if storage != nil {
			w.storage = storage
		}
	}
}

// WithFetcher sets the network fetcher. Defaults to an HTTPFetcher using
// http.DefaultClient.
func WithFetcher(fetcher Fetcher) Option {
	return func(w *Worker) {
		if fetcher != nil {
			w.fetcher = fetcher
		}
	}
}

// WithClients sets the hook invoked at the end of activation.
func WithClients(clients Clients) Option {
	return func(w *Worker) {
		if clients != nil {
			w.clients = clients
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithInstallConcurrency bounds how many manifest entries download at once.
func WithInstallConcurrency(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.concurrency = n
		}
	}
}

// AssetFailure records a manifest entry that could not be cached.
type AssetFailure struct {
	URL string
	Err error
}

// InstallReport summarises a best-effort install.
type InstallReport struct {
	Version string
	Cached  []string
	Failed  []AssetFailure
}

// Partial reports whether at least one asset failed to cache.
func (r InstallReport) Partial() bool {
	return len(r.Failed) > 0
}

// ActivateReport lists the containers removed during activation.
type ActivateReport struct {
	Version string
	Deleted []string
}

// Worker runs the install/activate/fetch lifecycle for one cache version.
// Lifecycle transitions are serialized; Fetch calls are independent of each
// other and only read the cache.
type Worker struct {
	version     string
	origin      *url.URL
	assets      []string
	indexKey    string
	rootKey     string
	storage     CacheStorage
	fetcher     Fetcher
	clients     Clients
	logger      *zap.Logger
	concurrency int

	lifecycle sync.Mutex
	mu        sync.RWMutex
	state     State
	container Container
}

// New constructs a Worker for version. origin is the scope the app shell lives
// under; manifest paths resolve against it.
func New(version string, origin *url.URL, manifest Manifest, opts ...Option) (*Worker, error) {
	version = strings.TrimSpace(version)
	if version == "" {
		return nil, errors.New("offline: cache version is required")
	}
	if origin == nil || !origin.IsAbs() {
		return nil, errors.New("offline: absolute origin url is required")
	}
	scope := *origin
	if !strings.HasSuffix(scope.Path, "/") {
		scope.Path += "/"
	}

	assets, err := manifest.Resolve(&scope)
	if err != nil {
		return nil, err
	}

	w := &Worker{
		version:     version,
		origin:      &scope,
		assets:      assets,
		indexKey:    CacheKey(scope.ResolveReference(&url.URL{Path: "index.html"})),
		rootKey:     CacheKey(&scope),
		storage:     NewMemoryStorage(),
		fetcher:     &HTTPFetcher{},
		clients:     ClaimFunc(func(context.Context) error { return nil }),
		logger:      zap.NewNop(),
		concurrency: defaultInstallConcurrency,
		state:       StateParsed,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(w)
	}
	return w, nil
}

// Version returns the cache container name this worker owns.
func (w *Worker) Version() string { return w.version }

// Origin returns the scope URL.
func (w *Worker) Origin() *url.URL {
	clone := *w.origin
	return &clone
}

// Assets returns the resolved manifest.
func (w *Worker) Assets() []string { return append([]string(nil), w.assets...) }

// State returns the current lifecycle phase.
func (w *Worker) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

// Controls reports whether fetches are intercepted.
func (w *Worker) Controls() bool {
	return w.State() == StateActivated
}

func (w *Worker) setState(state State) {
	w.mu.Lock()
	w.state = state
	w.mu.Unlock()
}

// Install downloads every manifest entry into the versioned container. Only
// a failure to open the container (or a cancelled context) fails the install
// and marks the worker redundant.
func (w *Worker) Install(ctx context.Context) (InstallReport, error) {
	w.lifecycle.Lock()
	defer w.lifecycle.Unlock()

	if current := w.State(); current != StateParsed {
		return InstallReport{}, fmt.Errorf("%w: install from %s", ErrInvalidTransition, current)
	}
	w.setState(StateInstalling)

	container, err := w.storage.Open(ctx, w.version)
	if err != nil {
		w.setState(StateRedundant)
		return InstallReport{}, fmt.Errorf("offline: open cache %q: %w", w.version, err)
	}
	w.mu.Lock()
	w.container = container
	w.mu.Unlock()

	results := make([]error, len(w.assets))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(w.concurrency)
	for i, asset := range w.assets {
		group.Go(func() error {
			results[i] = w.cacheAsset(groupCtx, container, asset)
			return nil
		})
	}
	_ = group.Wait()

	if err := ctx.Err(); err != nil {
		w.setState(StateRedundant)
		return InstallReport{}, err
	}

	report := InstallReport{Version: w.version}
	for i, asset := range w.assets {
		if results[i] != nil {
			report.Failed = append(report.Failed, AssetFailure{URL: asset, Err: results[i]})
			w.logger.Warn("asset not cached",
				zap.String("version", w.version),
				zap.String("url", asset),
				zap.Error(results[i]),
			)
			continue
		}
		report.Cached = append(report.Cached, asset)
	}
	w.logger.Info("cache installed",
		zap.String("version", w.version),
		zap.Int("cached", len(report.Cached)),
		zap.Int("failed", len(report.Failed)),
	)

	w.setState(StateInstalled)
	return report, nil
}

func (w *Worker) cacheAsset(ctx context.Context, container Container, asset string) error {
	resp, err := w.fetcher.Fetch(ctx, Request{Method: http.MethodGet, URL: asset})
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("offline: unexpected status %d for %s", resp.Status, asset)
	}
	return container.Put(ctx, asset, resp)
}

// Activate removes every container except the current version, then claims
// open clients. A failed cleanup leaves the worker installed so activation can
// be retried.
func (w *Worker) Activate(ctx context.Context) (ActivateReport, error) {
	w.lifecycle.Lock()
	defer w.lifecycle.Unlock()

	if current := w.State(); current != StateInstalled {
		return ActivateReport{}, fmt.Errorf("%w: activate from %s", ErrInvalidTransition, current)
	}
	w.setState(StateActivating)

	deleted, err := w.prune(ctx)
	if err != nil {
		w.setState(StateInstalled)
		return ActivateReport{}, err
	}

	w.setState(StateActivated)
	if err := w.clients.Claim(ctx); err != nil {
		w.logger.Warn("claim clients failed", zap.String("version", w.version), zap.Error(err))
	}
	w.logger.Info("cache activated", zap.String("version", w.version), zap.Strings("deleted", deleted))
	return ActivateReport{Version: w.version, Deleted: deleted}, nil
}

func (w *Worker) prune(ctx context.Context) ([]string, error) {
	names, err := w.storage.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("offline: list caches: %w", err)
	}
	var deleted []string
	for _, name := range names {
		if name == w.version {
			continue
		}
		removed, err := w.storage.Delete(ctx, name)
		if err != nil {
			return deleted, fmt.Errorf("offline: delete cache %q: %w", name, err)
		}
		if removed {
			deleted = append(deleted, name)
		}
	}
	return deleted, nil
}

// Run installs and then activates the worker.
func (w *Worker) Run(ctx context.Context) (InstallReport, error) {
	report, err := w.Install(ctx)
	if err != nil {
		return report, err
	}
	if _, err := w.Activate(ctx); err != nil {
		return report, err
	}
	return report, nil
}

// Fetch answers an intercepted request. Until the worker is activated every
// request goes straight to the network.
func (w *Worker) Fetch(ctx context.Context, req Request) (*Response, error) {
	if !w.Controls() || req.method() != http.MethodGet {
		return w.fetcher.Fetch(ctx, req)
	}
	if req.IsNavigation() {
		return w.networkFirst(ctx, req)
	}
	return w.cacheFirst(ctx, req)
}

func (w *Worker) networkFirst(ctx context.Context, req Request) (*Response, error) {
	resp, netErr := w.fetcher.Fetch(ctx, req)
	if netErr == nil {
		return resp, nil
	}
	for _, key := range []string{w.indexKey, w.rootKey} {
		if cached, ok := w.match(ctx, key); ok {
			w.logger.Debug("serving cached shell",
				zap.String("url", req.URL),
				zap.String("shell", key),
				zap.Error(netErr),
			)
			return cached, nil
		}
	}
	return nil, netErr
}

func (w *Worker) cacheFirst(ctx context.Context, req Request) (*Response, error) {
	key, err := ParseCacheKey(req.URL)
	if err == nil {
		if cached, ok := w.match(ctx, key); ok {
			return cached, nil
		}
	}
	return w.fetcher.Fetch(ctx, req)
}

func (w *Worker) match(ctx context.Context, key string) (*Response, bool) {
	w.mu.RLock()
	container := w.container
	w.mu.RUnlock()
	if container == nil {
		return nil, false
	}
	resp, ok, err := container.Match(ctx, key)
	if err != nil {
		w.logger.Warn("cache lookup failed", zap.String("url", key), zap.Error(err))
		return nil, false
	}
	return resp, ok
}
