package templatesapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-vanreport/pkg/kv"
	"github.com/goliatone/go-vanreport/pkg/templates"
)

func TestMountPath_JoinsBasePath(t *testing.T) {
	if got := MountPath("/depot"); got != "/depot/api" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := MountPath("depot"); got != "/depot/api" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := MountPath("/depot/", WithRoutePath("v1")); got != "/depot/v1" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := MountPath("/depot", WithRoutePath("/")); got != "/depot" {
		t.Fatalf("unexpected mount path: %q", got)
	}
}

func TestRegisterRoutes_RequiresMux(t *testing.T) {
	if _, err := RegisterRoutes(nil, "/depot"); err == nil {
		t.Fatalf("expected missing mux error")
	}
}

func TestComponent_RegisterRoutesUnderBasePath(t *testing.T) {
	store, err := templates.Open(context.Background(), kv.NewMemory())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	component := New(WithStore(store))

	mux := http.NewServeMux()
	root, err := component.RegisterRoutes(mux, "/depot")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if root != "/depot/api" {
		t.Fatalf("unexpected root: %q", root)
	}

	for _, target := range []string{"/depot/api/templates", "/depot/api/openapi.json"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected status 200, got %d", target, rec.Code)
		}
	}
}
