package kv

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// File stores each key as a JSON file under a directory. Writes go through a
// temporary file and a rename so readers never observe a partial blob.
type File struct {
	dir    string
	logger *zap.Logger
	mu     sync.Mutex
}

var _ Storage = (*File)(nil)

// FileOption customises a File store.
type FileOption func(*File)

// WithFileLogger attaches a logger used for watcher diagnostics.
func WithFileLogger(logger *zap.Logger) FileOption {
	return func(f *File) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFile prepares dir (creating it when missing) and returns a File store.
func NewFile(dir string, opts ...FileOption) (*File, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("kv: file store directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("kv: create directory %q: %w", dir, err)
	}
	f := &File{dir: dir, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(f)
	}
	return f, nil
}

// Path returns the file backing key.
func (f *File) Path(key string) string {
	return filepath.Join(f.dir, fileName(key))
}

func (f *File) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	key, err := normalizeKey(key)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(f.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("kv: read %q: %w", key, err)
	}
	return data, true, nil
}

func (f *File) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, ".kv-*")
	if err != nil {
		return fmt.Errorf("kv: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("kv: write %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("kv: close %q: %w", key, err)
	}
	if err := os.Rename(tmpName, f.Path(key)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("kv: replace %q: %w", key, err)
	}
	return nil
}

func (f *File) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.Path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("kv: delete %q: %w", key, err)
	}
	return nil
}

// Watch invokes fn every time the file backing key is created, written,
// renamed or removed. The watcher runs until ctx is done or stop is called.
func (f *File) Watch(ctx context.Context, key string, fn func()) (stop func() error, err error) {
	key, err = normalizeKey(key)
	if err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, errors.New("kv: watch callback is required")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("kv: create watcher: %w", err)
	}
	// Watch the directory: the rename in Set replaces the inode.
	if err := watcher.Add(f.dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("kv: watch %q: %w", f.dir, err)
	}

	target := filepath.Clean(f.Path(key))
	done := make(chan struct{})
	var once sync.Once
	stop = func() error {
		var closeErr error
		once.Do(func() {
			closeErr = watcher.Close()
			<-done
		})
		return closeErr
	}

	go func() {
		defer close(done)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				fn()
			case werr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				f.logger.Warn("kv watcher error", zap.String("key", key), zap.Error(werr))
			}
		}
	}()

	go func() {
		select {
		case <-ctx.Done():
			_ = stop()
		case <-done:
		}
	}()

	return stop, nil
}

// fileName escapes every byte outside [A-Za-z0-9._-] as %XX, so distinct keys
// never share a file.
func fileName(key string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_', c == '.':
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0F])
		}
	}
	return b.String() + ".json"
}
