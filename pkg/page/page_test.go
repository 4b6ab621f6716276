package page

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-vanreport/pkg/report"
	"github.com/goliatone/go-vanreport/pkg/templates"
)

func sampleState(t *testing.T) report.State {
	t.Helper()
	n := 0
	state := report.NewState("2024-05-01", func() string {
		n++
		return fmt.Sprintf("row-%d", n)
	})
	state, err := state.Apply(report.ReplaceVans{Vans: []string{"VAN-1", "VAN-2"}})
	if err != nil {
		t.Fatalf("replace vans: %v", err)
	}
	state, err = state.Apply(report.SetField{ID: "row-1", Field: report.FieldVanOut, Value: "7:5"})
	if err != nil {
		t.Fatalf("set field: %v", err)
	}
	return state
}

func TestRenderReport(t *testing.T) {
	renderer, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	html, err := renderer.RenderReport(sampleState(t))
	if err != nil {
		t.Fatalf("render report: %v", err)
	}

	for _, want := range []string{
		"<h1>Daily Van Report</h1>",
		`<p class="report-date">2024-05-01</p>`,
		`<tr data-row-id="row-1"><td>1</td><td>VAN-1</td><td>7:5</td>`,
		`<tr data-row-id="row-2"><td>2</td><td>VAN-2</td>`,
		"--brand: #1f6feb;",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected report to contain %q, got:\n%s", want, html)
		}
	}
}

func TestRenderShellListsTemplatesAndAssets(t *testing.T) {
	renderer, err := New(WithTitle("Depot 4"), WithTemplatesAPI("/api/templates"))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	html, err := renderer.RenderShell(sampleState(t), []templates.Template{
		{Name: "Morning", Vans: []string{"VAN-1", "VAN-2", "VAN-3"}},
	})
	if err != nil {
		t.Fatalf("render shell: %v", err)
	}

	for _, want := range []string{
		"<title>Depot 4</title>",
		`href="assets/style.css"`,
		`src="assets/app.js"`,
		`src="` + StylingEngineURL + `"`,
		`src="` + ImageRendererURL + `"`,
		`data-templates-api="/api/templates"`,
		`<li data-template="Morning">`,
		"<small>3 vans</small>",
		`name="van" value="VAN-2"`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected shell to contain %q", want)
		}
	}
}

func TestRenderShellWithoutTemplates(t *testing.T) {
	renderer, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	html, err := renderer.RenderShell(report.NewState("2024-05-01", nil), nil)
	if err != nil {
		t.Fatalf("render shell: %v", err)
	}
	if !strings.Contains(html, "No saved templates") {
		t.Fatalf("expected empty template list placeholder")
	}
}

func TestRenderEscapesUserInput(t *testing.T) {
	renderer, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	html, err := renderer.RenderShell(report.NewState("2024-05-01", nil), []templates.Template{
		{Name: `"><script>x</script>`, Vans: []string{"VAN-1"}},
	})
	if err != nil {
		t.Fatalf("render shell: %v", err)
	}
	if strings.Contains(html, "<script>x</script>") {
		t.Fatalf("expected template name to be escaped")
	}
}

func TestResolveThemeDarkVariant(t *testing.T) {
	cfg, err := ResolveTheme(DefaultTheme(), DarkVariant)
	if err != nil {
		t.Fatalf("resolve theme: %v", err)
	}
	if cfg.Variant != DarkVariant {
		t.Fatalf("expected variant %q, got %q", DarkVariant, cfg.Variant)
	}
	if cfg.CSSVars["--surface"] != "#0d1117" {
		t.Fatalf("expected dark surface token, got %q", cfg.CSSVars["--surface"])
	}
	if cfg.CSSVars["--brand"] != "#1f6feb" {
		t.Fatalf("expected base brand token kept, got %q", cfg.CSSVars["--brand"])
	}
	if got := cfg.AssetURL(assetScript); got != "assets/app.js" {
		t.Fatalf("unexpected script url %q", got)
	}
	if got := cfg.AssetURL("missing"); got != "" {
		t.Fatalf("expected empty url for unknown asset, got %q", got)
	}
}

func TestResolveThemeUnknownVariant(t *testing.T) {
	if _, err := ResolveTheme(DefaultTheme(), "sepia"); err == nil {
		t.Fatalf("expected unknown variant error")
	}
	if _, err := ResolveTheme(nil, ""); err == nil {
		t.Fatalf("expected nil manifest error")
	}
}

func TestDefaultManifestResolvesEveryShellPath(t *testing.T) {
	origin, _ := url.Parse("https://reports.example.test/depot/")
	urls, err := DefaultManifest().Resolve(origin)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := []string{
		"https://reports.example.test/depot/",
		"https://reports.example.test/depot/index.html",
		"https://reports.example.test/depot/assets/app.js",
		"https://reports.example.test/depot/assets/style.css",
		"https://reports.example.test/depot/assets/icon.svg",
		"https://reports.example.test/depot/manifest.webmanifest",
		StylingEngineURL,
		ImageRendererURL,
	}
	if diff := cmp.Diff(want, urls); diff != "" {
		t.Fatalf("manifest urls mismatch (-want +got):\n%s", diff)
	}
}

type staticLister []templates.Template

func (l staticLister) List(context.Context) []templates.Template { return l }

func TestHandlerServesShellAndAssets(t *testing.T) {
	renderer, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	srv := httptest.NewServer(Handler(renderer, staticLister{{Name: "Evening", Vans: []string{"VAN-7"}}}))
	defer srv.Close()

	cases := []struct {
		path        string
		contentType string
		contains    string
	}{
		{path: "/", contentType: "text/html", contains: `data-template="Evening"`},
		{path: "/index.html", contentType: "text/html", contains: "Daily Van Report"},
		{path: "/assets/app.js", contentType: "javascript", contains: "normalizeTime"},
		{path: "/assets/style.css", contentType: "text/css", contains: "--border"},
		{path: "/" + WebManifestPath, contentType: "application/manifest+json", contains: `"start_url": "./"`},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			res, err := http.Get(srv.URL + tc.path)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			defer res.Body.Close()
			body, _ := io.ReadAll(res.Body)
			if res.StatusCode != http.StatusOK {
				t.Fatalf("expected 200, got %d", res.StatusCode)
			}
			if got := res.Header.Get("Content-Type"); !strings.Contains(got, tc.contentType) {
				t.Fatalf("expected content type %q, got %q", tc.contentType, got)
			}
			if !strings.Contains(string(body), tc.contains) {
				t.Fatalf("expected body to contain %q", tc.contains)
			}
		})
	}
}

func TestHandlerUnknownPath(t *testing.T) {
	renderer, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	rec := httptest.NewRecorder()
	Handler(renderer, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestTodayStateHasOneBlankRow(t *testing.T) {
	state := TodayState(context.Background())
	if len(state.Rows) != 1 {
		t.Fatalf("expected one row, got %d", len(state.Rows))
	}
	if state.HasContent() {
		t.Fatalf("expected blank row")
	}
	if state.Date == "" {
		t.Fatalf("expected date set")
	}
}
