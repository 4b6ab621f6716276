package pongo

import (
	"fmt"
	"strings"
	"testing"
	"testing/fstest"
)

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	files := fstest.MapFS{
		"hello.tpl":      {Data: []byte("Hello {{ name }}!")},
		"rows.tpl":       {Data: []byte("{% for row in rows %}[{{ row.van }}]{% endfor %}")},
		"use-global.tpl": {Data: []byte("env={{ settings.env }}")},
		"use-filter.tpl": {Data: []byte("{{ name|pongo_test_shout }}")},
		"escape.tpl":     {Data: []byte("{{ value }}")},
	}
	engine, err := New(append([]Option{WithFS(files)}, opts...)...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestEngine_RenderTemplateWritesToOutputs(t *testing.T) {
	engine := newEngine(t)
	var buf strings.Builder

	got, err := engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hello Ada!" {
		t.Fatalf("unexpected output %q", got)
	}
	if buf.String() != got {
		t.Fatalf("expected writer to receive output, got %q", buf.String())
	}
}

func TestEngine_StructDataUsesJSONNames(t *testing.T) {
	type row struct {
		Van string `json:"van"`
	}
	engine := newEngine(t)
	got, err := engine.Render("rows.tpl", struct {
		Rows []row `json:"rows"`
	}{Rows: []row{{Van: "A"}, {Van: "B"}}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "[A][B]" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngine_GlobalContext(t *testing.T) {
	engine := newEngine(t, WithGlobalData(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}))
	got, err := engine.RenderTemplate("use-global", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "env=staging" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("pongo_test_shout", func(input any, _ any) (any, error) {
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}
	got, err := engine.RenderTemplate("use-filter", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "ADA!" {
		t.Fatalf("unexpected output %q", got)
	}
	if err := engine.RegisterFilter("pongo_test_shout", func(input any, _ any) (any, error) { return input, nil }); err == nil {
		t.Fatalf("expected duplicate filter registration to fail")
	}
}

func TestEngine_RenderStringAndEscaping(t *testing.T) {
	engine := newEngine(t)
	got, err := engine.Render("{{ a }}-{{ b|trim }}", map[string]any{"a": 1, "b": "  x  "})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if got != "1-x" {
		t.Fatalf("unexpected output %q", got)
	}

	escaped, err := engine.RenderTemplate("escape", map[string]any{"value": "<b>VAN</b>"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if escaped != "&lt;b&gt;VAN&lt;/b&gt;" {
		t.Fatalf("expected autoescaped output, got %q", escaped)
	}
}

func TestNew_RequiresSource(t *testing.T) {
	if _, err := New(); err == nil {
		t.Fatalf("expected error without templates")
	}
}
