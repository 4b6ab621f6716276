package page

import (
	"fmt"
	"io"
	"strings"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-vanreport/pkg/render/template"
	"github.com/goliatone/go-vanreport/pkg/render/template/pongo"
	"github.com/goliatone/go-vanreport/pkg/report"
	"github.com/goliatone/go-vanreport/pkg/templates"
)

const (
	// DefaultTitle heads both the shell and the exported report.
	DefaultTitle = "Daily Van Report"
	// DefaultTemplatesAPI is the path the shell uses for template requests.
	DefaultTemplatesAPI = "api/templates"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithTitle overrides the page title.
func WithTitle(title string) Option {
	return func(r *Renderer) {
		if title = strings.TrimSpace(title); title != "" {
			r.title = title
		}
	}
}

// WithTheme replaces the built-in theme manifest.
func WithTheme(manifest *theme.Manifest) Option {
	return func(r *Renderer) {
		if manifest != nil {
			r.manifest = manifest
		}
	}
}

// WithVariant selects a theme variant.
func WithVariant(variant string) Option {
	return func(r *Renderer) {
		r.variant = strings.TrimSpace(variant)
	}
}

// WithTemplatesAPI sets the template endpoint path embedded in the shell.
func WithTemplatesAPI(path string) Option {
	return func(r *Renderer) {
		if path = strings.TrimSpace(path); path != "" {
			r.templatesAPI = path
		}
	}
}

// WithExternalScripts overrides the CDN scripts referenced by the shell.
func WithExternalScripts(urls ...string) Option {
	return func(r *Renderer) {
		r.scripts = append([]string(nil), urls...)
	}
}

// WithEngine replaces the embedded pongo2 engine.
func WithEngine(engine template.TemplateRenderer) Option {
	return func(r *Renderer) {
		if engine != nil {
			r.engine = engine
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Renderer produces the shell document and the export document.
type Renderer struct {
	engine       template.TemplateRenderer
	manifest     *theme.Manifest
	variant      string
	theme        *theme.RendererConfig
	title        string
	templatesAPI string
	scripts      []string
	logger       *zap.Logger
}

// New constructs a Renderer over the embedded templates.
func New(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		manifest:     DefaultTheme(),
		title:        DefaultTitle,
		templatesAPI: DefaultTemplatesAPI,
		scripts:      ExternalScripts(),
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(r)
	}

	cfg, err := ResolveTheme(r.manifest, r.variant)
	if err != nil {
		return nil, err
	}
	r.theme = cfg

	if r.engine == nil {
		engine, err := pongo.New(pongo.WithFS(Templates()), pongo.WithSetName("vanreport-page"))
		if err != nil {
			return nil, fmt.Errorf("page: create engine: %w", err)
		}
		r.engine = engine
	}
	return r, nil
}

// Theme returns the resolved theme config.
func (r *Renderer) Theme() *theme.RendererConfig {
	return r.theme
}

// RenderShell renders the interactive shell for state with the saved
// templates listed.
func (r *Renderer) RenderShell(state report.State, saved []templates.Template, out ...io.Writer) (string, error) {
	if saved == nil {
		saved = []templates.Template{}
	}
	data := r.baseContext(state)
	data["templates"] = saved
	data["manifestURL"] = WebManifestPath
	data["templatesAPI"] = r.templatesAPI
	data["externalScripts"] = r.scripts
	data["assets"] = map[string]any{
		"stylesheet": r.theme.AssetURL(assetStylesheet),
		"script":     r.theme.AssetURL(assetScript),
		"icon":       r.theme.AssetURL(assetIcon),
	}
	return r.render(templateIndex, data, out)
}

// RenderReport renders the static export document for state.
func (r *Renderer) RenderReport(state report.State, out ...io.Writer) (string, error) {
	return r.render(templateReport, r.baseContext(state), out)
}

func (r *Renderer) baseContext(state report.State) map[string]any {
	return map[string]any{
		"title": r.title,
		"state": state,
		"theme": map[string]any{
			"name":         r.theme.Theme,
			"variant":      r.theme.Variant,
			"cssVarsStyle": cssVarsStyle(r.theme.CSSVars),
		},
	}
}

func (r *Renderer) render(key string, data map[string]any, out []io.Writer) (string, error) {
	name, ok := r.theme.Partials[key]
	if !ok || name == "" {
		return "", fmt.Errorf("page: theme %q has no template for %q", r.theme.Theme, key)
	}
	html, err := r.engine.RenderTemplate(name, data, out...)
	if err != nil {
		r.logger.Error("page render failed", zap.String("template", name), zap.Error(err))
		return "", fmt.Errorf("page: render %s: %w", key, err)
	}
	return html, nil
}
