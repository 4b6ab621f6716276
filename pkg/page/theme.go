package page

import (
	"fmt"
	"path"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

const (
	// DefaultThemeName names the built-in theme manifest.
	DefaultThemeName = "vanreport"
	// DarkVariant is the built-in dark variant.
	DarkVariant = "dark"

	templateIndex  = "page.index"
	templateReport = "page.report"

	assetStylesheet = "page.stylesheet"
	assetScript     = "page.script"
	assetIcon       = "page.icon"
)

// DefaultTheme returns the built-in theme manifest.
func DefaultTheme() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand":   "#1f6feb",
			"surface": "#ffffff",
			"text":    "#1c2128",
			"muted":   "#6e7781",
			"border":  "#d0d7de",
		},
		Templates: map[string]string{
			templateIndex:  "index.tpl",
			templateReport: "report.tpl",
		},
		Assets: theme.Assets{
			Prefix: "assets",
			Files: map[string]string{
				assetStylesheet: "style.css",
				assetScript:     "app.js",
				assetIcon:       "icon.svg",
			},
		},
		Variants: map[string]theme.Variant{
			DarkVariant: {
				Tokens: map[string]string{
					"surface": "#0d1117",
					"text":    "#e6edf3",
					"muted":   "#8b949e",
					"border":  "#30363d",
				},
			},
		},
	}
}

// ResolveTheme registers manifest and flattens it, with variant overrides
// applied, into a renderer config. An empty variant selects the base theme.
func ResolveTheme(manifest *theme.Manifest, variant string) (*theme.RendererConfig, error) {
	if manifest == nil {
		return nil, fmt.Errorf("page: theme manifest is nil")
	}
	registry := theme.NewRegistry()
	if err := registry.Register(manifest); err != nil {
		return nil, fmt.Errorf("page: register theme %q: %w", manifest.Name, err)
	}

	variant = strings.TrimSpace(variant)
	tokens := copyStringMap(manifest.Tokens)
	partials := copyStringMap(manifest.Templates)
	prefix := manifest.Assets.Prefix
	files := copyStringMap(manifest.Assets.Files)

	if variant != "" {
		override, ok := manifest.Variants[variant]
		if !ok {
			return nil, fmt.Errorf("page: theme %q has no variant %q", manifest.Name, variant)
		}
		tokens = mergeStringMap(tokens, override.Tokens)
		partials = mergeStringMap(partials, override.Templates)
		files = mergeStringMap(files, override.Assets.Files)
		if override.Assets.Prefix != "" {
			prefix = override.Assets.Prefix
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+key] = value
	}

	return &theme.RendererConfig{
		Theme:    manifest.Name,
		Variant:  variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok {
				return ""
			}
			if prefix == "" {
				return file
			}
			return path.Join(prefix, file)
		},
	}, nil
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}

func copyStringMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func mergeStringMap(base, override map[string]string) map[string]string {
	for key, value := range override {
		base[key] = value
	}
	return base
}
