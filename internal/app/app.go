// Package app wires configuration into the storage, template store, page
// renderer, offline worker and exporter used by the vanreport commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-vanreport/components/templatesapi"
	"github.com/goliatone/go-vanreport/internal/config"
	"github.com/goliatone/go-vanreport/pkg/export"
	"github.com/goliatone/go-vanreport/pkg/kv"
	"github.com/goliatone/go-vanreport/pkg/offline"
	"github.com/goliatone/go-vanreport/pkg/page"
	"github.com/goliatone/go-vanreport/pkg/report"
	"github.com/goliatone/go-vanreport/pkg/templates"
)

// App holds the long-lived collaborators built from a Config.
type App struct {
	Config    config.Config
	Logger    *zap.Logger
	Storage   kv.Storage
	Templates *templates.Store
	Page      *page.Renderer

	closers []func() error
}

// Open builds the storage backend, template store and page renderer.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg, Logger: logger}

	storage, err := a.openStorage(ctx)
	if err != nil {
		return nil, err
	}
	a.Storage = storage

	store, err := templates.Open(ctx, storage,
		templates.WithStorageKey(cfg.TemplatesKey),
		templates.WithLogger(logger.Named("templates")),
	)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Templates = store

	renderer, err := page.New(
		page.WithVariant(cfg.ThemeVariant),
		page.WithTemplatesAPI(strings.TrimPrefix(templatesapi.MountPath("")+"/templates", "/")),
		page.WithLogger(logger.Named("page")),
	)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Page = renderer
	return a, nil
}

func (a *App) openStorage(ctx context.Context) (kv.Storage, error) {
	switch a.Config.Storage {
	case config.StorageMemory:
		return kv.NewMemory(), nil
	case config.StorageSQLite:
		if err := os.MkdirAll(filepath.Dir(a.Config.KVPath()), 0o755); err != nil {
			return nil, fmt.Errorf("app: create data dir: %w", err)
		}
		db, err := kv.OpenSQLite(ctx, a.Config.KVPath())
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		return db, nil
	default:
		return kv.NewFile(a.Config.DataDir, kv.WithFileLogger(a.Logger.Named("kv")))
	}
}

// Close releases every resource opened through the App, newest first.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Handler serves the shell at "/" and the templates API under /api.
func (a *App) Handler() (http.Handler, error) {
	mux := http.NewServeMux()
	if _, err := templatesapi.RegisterRoutes(mux, "",
		templatesapi.WithStore(a.Templates),
		templatesapi.WithLogger(a.Logger.Named("api")),
	); err != nil {
		return nil, err
	}
	mux.Handle("/", page.Handler(a.Page, a.Templates, page.WithHandlerLogger(a.Logger.Named("page"))))
	return mux, nil
}

// WatchTemplates reloads the template store whenever its blob changes on
// disk. It is a no-op for storage backends other than files.
func (a *App) WatchTemplates(ctx context.Context) (stop func() error, err error) {
	file, ok := a.Storage.(*kv.File)
	if !ok {
		return func() error { return nil }, nil
	}
	return file.Watch(ctx, a.Templates.Key(), func() {
		if err := a.Templates.Reload(ctx); err != nil {
			a.Logger.Warn("reload templates", zap.Error(err))
			return
		}
		a.Logger.Debug("templates reloaded", zap.Int("count", len(a.Templates.List(ctx))))
	})
}

// OfflineManifest returns the configured manifest file, or the shell manifest
// when none is set.
func (a *App) OfflineManifest() (offline.Manifest, error) {
	path := strings.TrimSpace(a.Config.Cache.Manifest)
	if path == "" {
		return page.DefaultManifest(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return offline.Manifest{}, fmt.Errorf("app: read manifest %s: %w", path, err)
	}
	var manifest offline.Manifest
	if err := yaml.Unmarshal(raw, &manifest); err != nil {
		return offline.Manifest{}, fmt.Errorf("app: parse manifest %s: %w", path, err)
	}
	return manifest, nil
}

// OpenCache opens the sqlite offline cache. It is closed with the App.
func (a *App) OpenCache(ctx context.Context) (*offline.SQLiteStorage, error) {
	path := a.Config.CacheDBPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("app: create cache dir: %w", err)
	}
	cache, err := offline.OpenSQLiteStorage(ctx, path)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, cache.Close)
	return cache, nil
}

// Worker builds the offline worker over cache. fetcher may be nil to use the
// default HTTP fetcher.
func (a *App) Worker(cache offline.CacheStorage, fetcher offline.Fetcher, opts ...offline.Option) (*offline.Worker, error) {
	origin, err := a.Config.OriginURL()
	if err != nil {
		return nil, err
	}
	manifest, err := a.OfflineManifest()
	if err != nil {
		return nil, err
	}
	base := []offline.Option{
		offline.WithStorage(cache),
		offline.WithFetcher(fetcher),
		offline.WithLogger(a.Logger.Named("offline")),
		offline.WithInstallConcurrency(a.Config.Cache.Concurrency),
	}
	return offline.New(a.Config.Cache.Version, origin, manifest, append(base, opts...)...)
}

// Exporter builds an exporter around the configured renderer command.
func (a *App) Exporter(opts ...export.Option) (*export.Exporter, error) {
	capturer := export.CommandCapturer{Path: a.Config.Export.Command, Args: a.Config.Export.Args}
	base := []export.Option{
		export.WithDownloadDir(a.Config.Export.Dir),
		export.WithScale(a.Config.Export.Scale),
		export.WithLogger(a.Logger.Named("export")),
	}
	return export.New(capturer, append(base, opts...)...)
}

// ExportState renders state as the report document and exports it. A state
// without a parseable date is exported under today's date.
func (a *App) ExportState(ctx context.Context, exporter *export.Exporter, state report.State) (export.Result, error) {
	html, err := a.Page.RenderReport(state)
	if err != nil {
		return export.Result{}, err
	}
	date, err := time.Parse(time.DateOnly, state.Date)
	if err != nil {
		date = time.Now()
	}
	return exporter.Export(ctx, []byte(html), date)
}
