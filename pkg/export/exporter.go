package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultScale is the pixel-density multiplier used for captures.
	DefaultScale = 2
	// ContentType of every exported artifact.
	ContentType = "image/png"
)

// ErrCapture wraps every failure of the external renderer.
var ErrCapture = errors.New("export: capture failed")

// File is an exported artifact.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Capturer renders an HTML document into a PNG at the given scale.
type Capturer interface {
	Capture(ctx context.Context, document []byte, scale int) ([]byte, error)
}

// CaptureFunc adapts a function to Capturer.
type CaptureFunc func(ctx context.Context, document []byte, scale int) ([]byte, error)

func (fn CaptureFunc) Capture(ctx context.Context, document []byte, scale int) ([]byte, error) {
	return fn(ctx, document, scale)
}

// Sharer is a native share surface.
type Sharer interface {
	CanShare(file File) bool
	Share(ctx context.Context, file File) error
}

// Result describes where an export went.
type Result struct {
	File   File
	Shared bool
	// Path is set when the file was written to disk.
	Path string
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithSharer sets the share surface tried before downloading.
func WithSharer(sharer Sharer) Option {
	return func(e *Exporter) { e.sharer = sharer }
}

// WithDownloadDir sets where files are written when sharing is unavailable.
func WithDownloadDir(dir string) Option {
	return func(e *Exporter) {
		if dir = strings.TrimSpace(dir); dir != "" {
			e.downloadDir = dir
		}
	}
}

// WithScale overrides DefaultScale.
func WithScale(scale int) Option {
	return func(e *Exporter) {
		if scale > 0 {
			e.scale = scale
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Exporter captures a report document and delivers the image.
type Exporter struct {
	capturer    Capturer
	sharer      Sharer
	downloadDir string
	scale       int
	logger      *zap.Logger
}

// New constructs an Exporter around capturer.
func New(capturer Capturer, opts ...Option) (*Exporter, error) {
	if capturer == nil {
		return nil, errors.New("export: capturer is required")
	}
	e := &Exporter{
		capturer:    capturer,
		downloadDir: ".",
		scale:       DefaultScale,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e, nil
}

// FileName returns the artifact name for a report dated date.
func FileName(date time.Time) string {
	return fmt.Sprintf("daily-report-%s.png", date.Format("2006-01-02"))
}

// Export captures document and shares or downloads the image.
func (e *Exporter) Export(ctx context.Context, document []byte, date time.Time) (Result, error) {
	data, err := e.capturer.Capture(ctx, document, e.scale)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrCapture, err)
	}
	if len(data) == 0 {
		return Result{}, fmt.Errorf("%w: renderer returned no image", ErrCapture)
	}

	file := File{Name: FileName(date), ContentType: ContentType, Data: data}

	if e.sharer != nil && e.sharer.CanShare(file) {
		err := e.sharer.Share(ctx, file)
		if err == nil {
			return Result{File: file, Shared: true}, nil
		}
		if errors.Is(err, context.Canceled) {
			return Result{}, err
		}
		e.logger.Warn("share failed, downloading instead", zap.String("file", file.Name), zap.Error(err))
	}

	if err := os.MkdirAll(e.downloadDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("export: create download dir: %w", err)
	}
	path := filepath.Join(e.downloadDir, file.Name)
	if err := os.WriteFile(path, file.Data, 0o644); err != nil {
		return Result{}, fmt.Errorf("export: write %s: %w", path, err)
	}
	e.logger.Info("report exported", zap.String("path", path), zap.Int("bytes", len(file.Data)))
	return Result{File: file, Path: path}, nil
}
