package templates

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-vanreport/pkg/kv"
)

func openStore(t *testing.T, storage kv.Storage, opts ...Option) *Store {
	t.Helper()
	store, err := Open(context.Background(), storage, opts...)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return store
}

func TestSave_RejectsBlankName(t *testing.T) {
	ctx := context.Background()
	storage := kv.NewMemory()
	store := openStore(t, storage)

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := store.Save(ctx, name, []string{"VAN-1"})
		if !errors.Is(err, ErrEmptyName) {
			t.Fatalf("name %q: expected ErrEmptyName, got %v", name, err)
		}
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("name %q: expected validation error kind, got %v", name, err)
		}
	}

	if _, ok, _ := storage.Get(ctx, DefaultStorageKey); ok {
		t.Fatalf("expected nothing persisted after rejected saves")
	}
	if got := store.List(ctx); len(got) != 0 {
		t.Fatalf("expected empty collection, got %#v", got)
	}
}

func TestSave_RejectsOnlyBlankVans(t *testing.T) {
	ctx := context.Background()
	storage := kv.NewMemory()
	store := openStore(t, storage)

	_, err := store.Save(ctx, "Morning", []string{"", "  ", "\t"})
	if !errors.Is(err, ErrNoVans) {
		t.Fatalf("expected ErrNoVans, got %v", err)
	}
	if _, err := store.Save(ctx, "Morning", nil); !errors.Is(err, ErrNoVans) {
		t.Fatalf("expected ErrNoVans for nil vans, got %v", err)
	}
	if _, ok, _ := storage.Get(ctx, DefaultStorageKey); ok {
		t.Fatalf("expected nothing persisted")
	}
}

func TestSave_TrimsAndFiltersVans(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, kv.NewMemory())

	got, err := store.Save(ctx, "  Morning  ", []string{" VAN-1 ", "", "VAN-2", "   "})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	want := Template{Name: "Morning", Vans: []string{"VAN-1", "VAN-2"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("saved template mismatch (-want +got):\n%s", diff)
	}
}

func TestSave_UpsertMovesTemplateToEnd(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, kv.NewMemory())

	mustSave(t, store, "A", "1")
	mustSave(t, store, "B", "2")
	mustSave(t, store, "C", "3")
	mustSave(t, store, "A", "9", "10")

	want := []Template{
		{Name: "B", Vans: []string{"2"}},
		{Name: "C", Vans: []string{"3"}},
		{Name: "A", Vans: []string{"9", "10"}},
	}
	if diff := cmp.Diff(want, store.List(ctx)); diff != "" {
		t.Fatalf("collection mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_RoundTripThroughStorage(t *testing.T) {
	ctx := context.Background()
	storage := kv.NewMemory()
	first := openStore(t, storage, WithStorageKey("custom.key"))
	mustSave(t, first, "Evening", "VAN-7", "VAN-8")

	second := openStore(t, storage, WithStorageKey("custom.key"))
	want := []Template{{Name: "Evening", Vans: []string{"VAN-7", "VAN-8"}}}
	if diff := cmp.Diff(want, second.List(ctx)); diff != "" {
		t.Fatalf("reloaded collection mismatch (-want +got):\n%s", diff)
	}

	raw, ok, err := storage.Get(ctx, "custom.key")
	if err != nil || !ok {
		t.Fatalf("expected blob under custom key: ok=%v err=%v", ok, err)
	}
	if string(raw) != `[{"name":"Evening","vans":["VAN-7","VAN-8"]}]` {
		t.Fatalf("unexpected persisted layout: %s", raw)
	}
}

func TestOpen_CorruptBlobIsEmpty(t *testing.T) {
	ctx := context.Background()
	storage := kv.NewMemory()
	if err := storage.Set(ctx, DefaultStorageKey, []byte("{not json")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	store := openStore(t, storage)
	if got := store.List(ctx); len(got) != 0 {
		t.Fatalf("expected empty collection, got %#v", got)
	}

	mustSave(t, store, "Fresh", "VAN-1")
	if got := store.List(ctx); len(got) != 1 {
		t.Fatalf("expected store usable after corruption, got %#v", got)
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, kv.NewMemory())
	mustSave(t, store, "Morning", "VAN-1", "VAN-2")

	vans, ok := store.Load(ctx, "Morning")
	if !ok {
		t.Fatalf("expected template found")
	}
	if diff := cmp.Diff([]string{"VAN-1", "VAN-2"}, vans); diff != "" {
		t.Fatalf("vans mismatch (-want +got):\n%s", diff)
	}

	vans[0] = "mutated"
	again, _ := store.Load(ctx, "Morning")
	if again[0] != "VAN-1" {
		t.Fatalf("expected Load to return a copy, got %v", again)
	}

	if _, ok := store.Load(ctx, "missing"); ok {
		t.Fatalf("expected missing template not found")
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	storage := kv.NewMemory()
	store := openStore(t, storage)
	mustSave(t, store, "A", "1")
	mustSave(t, store, "B", "2")

	removed, err := store.Delete(ctx, "A")
	if err != nil || !removed {
		t.Fatalf("expected delete to succeed: removed=%v err=%v", removed, err)
	}
	removed, err = store.Delete(ctx, "A")
	if err != nil || removed {
		t.Fatalf("expected second delete to report not found: removed=%v err=%v", removed, err)
	}

	reloaded := openStore(t, storage)
	want := []Template{{Name: "B", Vans: []string{"2"}}}
	if diff := cmp.Diff(want, reloaded.List(ctx)); diff != "" {
		t.Fatalf("collection mismatch (-want +got):\n%s", diff)
	}
}

func TestReload_PicksUpExternalWrites(t *testing.T) {
	ctx := context.Background()
	storage := kv.NewMemory()
	store := openStore(t, storage)

	if err := storage.Set(ctx, DefaultStorageKey, []byte(`[{"name":"External","vans":["X"]}]`)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.Reload(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if _, ok := store.Get(ctx, "External"); !ok {
		t.Fatalf("expected externally written template after reload")
	}
}

// gatedStorage pauses Get after reading once armed, so a reload can be held
// with a stale blob in hand.
type gatedStorage struct {
	kv.Storage
	armed   bool
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, ok, err := g.Storage.Get(ctx, key)
	if g.armed {
		g.armed = false
		close(g.entered)
		<-g.release
	}
	return raw, ok, err
}

func TestReload_DoesNotClobberConcurrentSave(t *testing.T) {
	ctx := context.Background()
	storage := &gatedStorage{
		Storage: kv.NewMemory(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	store := openStore(t, storage)
	mustSave(t, store, "A", "VAN-1")

	storage.armed = true
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := store.Reload(ctx); err != nil {
			t.Errorf("reload: %v", err)
		}
	}()
	<-storage.entered
	go func() {
		defer wg.Done()
		if _, err := store.Save(ctx, "B", []string{"VAN-2"}); err != nil {
			t.Errorf("save: %v", err)
		}
	}()
	time.Sleep(20 * time.Millisecond)
	close(storage.release)
	wg.Wait()

	want := []Template{
		{Name: "A", Vans: []string{"VAN-1"}},
		{Name: "B", Vans: []string{"VAN-2"}},
	}
	if diff := cmp.Diff(want, store.List(ctx)); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
}

func mustSave(t *testing.T, store *Store, name string, vans ...string) {
	t.Helper()
	if _, err := store.Save(context.Background(), name, vans); err != nil {
		t.Fatalf("save %q: %v", name, err)
	}
}
