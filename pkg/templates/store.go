package templates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-vanreport/pkg/kv"
)

// Option configures a Store.
type Option func(*Store)

// WithStorageKey overrides DefaultStorageKey.
func WithStorageKey(key string) Option {
	return func(s *Store) {
		if key = strings.TrimSpace(key); key != "" {
			s.key = key
		}
	}
}

// WithLogger attaches a logger used to report corrupt or unreadable blobs.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store mirrors the persisted collection in memory. Every mutation rewrites
// the whole blob.
type Store struct {
	storage kv.Storage
	key     string
	logger  *zap.Logger

	mu        sync.RWMutex
	templates []Template
}

// Open constructs a Store and loads the current collection from storage.
func Open(ctx context.Context, storage kv.Storage, opts ...Option) (*Store, error) {
	if storage == nil {
		return nil, errors.New("templates: storage is required")
	}
	s := &Store{
		storage: storage,
		key:     DefaultStorageKey,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Key reports the storage key the collection lives under.
func (s *Store) Key() string {
	return s.key
}

// Reload replaces the in-memory collection with the persisted one. Absent or
// corrupt data yields an empty collection; only a cancelled context is an
// error. The lock is held across the read so a concurrent Save cannot be
// overwritten by an older blob.
func (s *Store) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates = s.read(ctx)
	return nil
}

func (s *Store) read(ctx context.Context) []Template {
	raw, ok, err := s.storage.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("templates unreadable, starting empty", zap.String("key", s.key), zap.Error(err))
		return nil
	}
	if !ok || len(raw) == 0 {
		return nil
	}
	var decoded []Template
	if err := json.Unmarshal(raw, &decoded); err != nil {
		s.logger.Warn("templates corrupt, starting empty", zap.String("key", s.key), zap.Error(err))
		return nil
	}
	return decoded
}

// Save validates and upserts a template by name: an existing template with
// the same name is removed and the new one appended. Nothing is written when
// validation fails.
func (s *Store) Save(ctx context.Context, name string, vans []string) (Template, error) {
	tpl, err := Normalize(name, vans)
	if err != nil {
		return Template{}, err
	}
	if err := ctx.Err(); err != nil {
		return Template{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Template, 0, len(s.templates)+1)
	for _, existing := range s.templates {
		if existing.Name == tpl.Name {
			continue
		}
		next = append(next, existing)
	}
	next = append(next, tpl)

	if err := s.write(ctx, next); err != nil {
		return Template{}, err
	}
	s.templates = next
	s.logger.Debug("template saved", zap.String("name", tpl.Name), zap.Int("vans", len(tpl.Vans)))
	return tpl.Clone(), nil
}

// Load returns the vans stored under name.
func (s *Store) Load(ctx context.Context, name string) ([]string, bool) {
	tpl, ok := s.Get(ctx, name)
	if !ok {
		return nil, false
	}
	return tpl.Vans, true
}

// Get returns the template stored under name.
func (s *Store) Get(_ context.Context, name string) (Template, bool) {
	name = strings.TrimSpace(name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tpl := range s.templates {
		if tpl.Name == name {
			return tpl.Clone(), true
		}
	}
	return Template{}, false
}

// List returns every template in storage order.
func (s *Store) List(_ context.Context) []Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Template, 0, len(s.templates))
	for _, tpl := range s.templates {
		out = append(out, tpl.Clone())
	}
	return out
}

// Delete removes the template stored under name, reporting whether one was
// found.
func (s *Store) Delete(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Template, 0, len(s.templates))
	found := false
	for _, existing := range s.templates {
		if existing.Name == name {
			found = true
			continue
		}
		next = append(next, existing)
	}
	if !found {
		return false, nil
	}
	if err := s.write(ctx, next); err != nil {
		return false, err
	}
	s.templates = next
	return true, nil
}

func (s *Store) write(ctx context.Context, collection []Template) error {
	if collection == nil {
		collection = []Template{}
	}
	payload, err := json.Marshal(collection)
	if err != nil {
		return fmt.Errorf("templates: encode collection: %w", err)
	}
	if err := s.storage.Set(ctx, s.key, payload); err != nil {
		return fmt.Errorf("templates: persist collection: %w", err)
	}
	return nil
}
