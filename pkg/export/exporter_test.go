package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type stubSharer struct {
	accept bool
	err    error
	shared []File
}

func (s *stubSharer) CanShare(File) bool { return s.accept }

func (s *stubSharer) Share(_ context.Context, file File) error {
	if s.err != nil {
		return s.err
	}
	s.shared = append(s.shared, file)
	return nil
}

var reportDate = time.Date(2026, time.October, 14, 0, 0, 0, 0, time.UTC)

func pngCapturer(gotScale *int) Capturer {
	return CaptureFunc(func(_ context.Context, document []byte, scale int) ([]byte, error) {
		if gotScale != nil {
			*gotScale = scale
		}
		return append([]byte("PNG:"), document...), nil
	})
}

func TestExport_DownloadsWhenNoSharer(t *testing.T) {
	dir := t.TempDir()
	var scale int
	exporter, err := New(pngCapturer(&scale), WithDownloadDir(dir))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	result, err := exporter.Export(context.Background(), []byte("<table/>"), reportDate)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if scale != DefaultScale {
		t.Fatalf("expected scale %d, got %d", DefaultScale, scale)
	}
	wantPath := filepath.Join(dir, "daily-report-2026-10-14.png")
	if result.Shared || result.Path != wantPath {
		t.Fatalf("unexpected result %+v", result)
	}
	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(data) != "PNG:<table/>" {
		t.Fatalf("unexpected file contents %q", data)
	}
}

func TestExport_PrefersSharer(t *testing.T) {
	dir := t.TempDir()
	sharer := &stubSharer{accept: true}
	exporter, _ := New(pngCapturer(nil), WithDownloadDir(dir), WithSharer(sharer), WithScale(3))

	result, err := exporter.Export(context.Background(), []byte("x"), reportDate)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !result.Shared || result.Path != "" {
		t.Fatalf("expected shared result, got %+v", result)
	}
	if len(sharer.shared) != 1 || sharer.shared[0].ContentType != ContentType {
		t.Fatalf("unexpected shared files %+v", sharer.shared)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Fatalf("expected nothing downloaded, got %d files", len(entries))
	}
}

func TestExport_FallsBackWhenShareFails(t *testing.T) {
	dir := t.TempDir()
	sharer := &stubSharer{accept: true, err: errors.New("share sheet unavailable")}
	exporter, _ := New(pngCapturer(nil), WithDownloadDir(dir), WithSharer(sharer))

	result, err := exporter.Export(context.Background(), []byte("x"), reportDate)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if result.Shared || result.Path == "" {
		t.Fatalf("expected download fallback, got %+v", result)
	}
}

func TestExport_CaptureFailure(t *testing.T) {
	exporter, _ := New(CaptureFunc(func(context.Context, []byte, int) ([]byte, error) {
		return nil, errors.New("renderer unreachable")
	}), WithDownloadDir(t.TempDir()))

	if _, err := exporter.Export(context.Background(), []byte("x"), reportDate); !errors.Is(err, ErrCapture) {
		t.Fatalf("expected ErrCapture, got %v", err)
	}

	empty, _ := New(CaptureFunc(func(context.Context, []byte, int) ([]byte, error) {
		return nil, nil
	}))
	if _, err := empty.Export(context.Background(), []byte("x"), reportDate); !errors.Is(err, ErrCapture) {
		t.Fatalf("expected ErrCapture for empty image, got %v", err)
	}
}

func TestCommandCapturer_RequiresPath(t *testing.T) {
	if _, err := (CommandCapturer{}).Capture(context.Background(), nil, 2); err == nil {
		t.Fatalf("expected error for missing command")
	}
}
