// Package vanreport is the top-level entry point for building daily van
// reports: named van templates, the working report state, the app shell with
// its offline cache, and PNG export.
//
// Most callers only need the constructors re-exported here; the pkg/*
// packages expose the full surface.
package vanreport

import (
	"context"
	"io/fs"
	"net/url"

	"github.com/goliatone/go-vanreport/pkg/kv"
	"github.com/goliatone/go-vanreport/pkg/offline"
	"github.com/goliatone/go-vanreport/pkg/page"
	"github.com/goliatone/go-vanreport/pkg/report"
	"github.com/goliatone/go-vanreport/pkg/templates"
)

// Template is a named, ordered list of van identifiers.
type Template = templates.Template

// Row is one line of the report table.
type Row = report.Row

// State is the working report.
type State = report.State

// OpenTemplates loads the template store persisted in storage.
func OpenTemplates(ctx context.Context, storage kv.Storage, options ...templates.Option) (*templates.Store, error) {
	return templates.Open(ctx, storage, options...)
}

// NewSession starts a report session over a template store.
func NewSession(store report.TemplateStore, options ...report.SessionOption) (*report.Session, error) {
	return report.NewSession(store, options...)
}

// NewPage builds the shell and report renderer.
func NewPage(options ...page.Option) (*page.Renderer, error) {
	return page.New(options...)
}

// NewOfflineWorker builds an offline worker for the shell served at origin,
// using the built-in shell manifest.
func NewOfflineWorker(version string, origin *url.URL, options ...offline.Option) (*offline.Worker, error) {
	return offline.New(version, origin, page.DefaultManifest(), options...)
}

// AssetsFS exposes the embedded shell assets (script, stylesheet, icon and
// install manifest) so callers can serve them on their own mux.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(vanreport.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return page.Assets()
}

// TemplatesFS exposes the embedded pongo2 page templates.
func TemplatesFS() fs.FS {
	return page.Templates()
}
