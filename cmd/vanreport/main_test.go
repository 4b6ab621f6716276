package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-vanreport/pkg/templates"
)

func runCLI(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	base := []string{"--data-dir", dataDir, "--log-level", "error"}
	err := run(context.Background(), append(base, args...), &out)
	return out.String(), err
}

func TestTemplatesLifecycle(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "templates", "save", "Morning", "VAN-1", " ", "VAN-2")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if want := "saved \"Morning\" with 2 vans\n"; out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
	if _, err := runCLI(t, dir, "templates", "save", "Evening", "VAN-7"); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err = runCLI(t, dir, "templates", "list", "--json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var listed []templates.Template
	if err := json.Unmarshal([]byte(out), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	want := []templates.Template{
		{Name: "Morning", Vans: []string{"VAN-1", "VAN-2"}},
		{Name: "Evening", Vans: []string{"VAN-7"}},
	}
	if diff := cmp.Diff(want, listed); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}

	out, err = runCLI(t, dir, "templates", "show", "Morning")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if out != "VAN-1\nVAN-2\n" {
		t.Fatalf("unexpected show output %q", out)
	}

	if _, err := runCLI(t, dir, "templates", "delete", "Morning"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := runCLI(t, dir, "templates", "show", "Morning"); err == nil {
		t.Fatalf("expected missing template error")
	}
}

func TestTemplatesSaveValidation(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "templates", "save", "Morning", " ")
	if err == nil || !strings.Contains(err.Error(), templates.ErrNoVans.Message) {
		t.Fatalf("expected no vans error, got %v", err)
	}
}

func TestExportHTMLFromTemplate(t *testing.T) {
	dir := t.TempDir()
	if _, err := runCLI(t, dir, "templates", "save", "Morning", "VAN-1"); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := runCLI(t, dir, "export", "--html", "--template", "Morning", "--van", "VAN-9", "--date", "2026-10-14")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	for _, want := range []string{"<td>VAN-1</td>", "<td>VAN-9</td>", "2026-10-14"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected report to contain %q", want)
		}
	}
}

func TestExportRequiresRendererCommand(t *testing.T) {
	t.Setenv("VANREPORT_EXPORT_COMMAND", "")
	if _, err := runCLI(t, t.TempDir(), "export", "--van", "VAN-1"); err == nil {
		t.Fatalf("expected missing renderer error")
	}
}

func TestExportRejectsBadDate(t *testing.T) {
	if _, err := runCLI(t, t.TempDir(), "export", "--html", "--date", "14/10/2026"); err == nil {
		t.Fatalf("expected date error")
	}
}

func TestCacheListEmpty(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "cache", "list")
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	if strings.TrimSpace(out) != "VERSION  ENTRIES  CURRENT" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRejectsUnknownStorage(t *testing.T) {
	if _, err := runCLI(t, t.TempDir(), "--storage", "redis", "templates", "list"); err == nil {
		t.Fatalf("expected storage validation error")
	}
}
