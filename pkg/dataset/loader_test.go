package dataset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/crimescope/pkg/errors"
)

func TestLoaderMemoizes(t *testing.T) {
	ctx := context.Background()
	src := NewMemorySourceStrings(map[string]string{"a.json": `[1]`})
	l := NewLoader(src)

	for i := 0; i < 3; i++ {
		data, err := l.Fetch(ctx, "a.json")
		if err != nil || string(data) != "[1]" {
			t.Fatalf("Fetch = %q, %v", data, err)
		}
	}
	if n := src.Calls("a.json"); n != 1 {
		t.Errorf("source calls = %d, want 1", n)
	}
}

func TestLoaderConcurrentFetchShared(t *testing.T) {
	ctx := context.Background()
	src := NewMemorySourceStrings(map[string]string{"a.json": `[1]`})
	l := NewLoader(src)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Fetch(ctx, "a.json"); err != nil {
				t.Errorf("Fetch: %v", err)
			}
		}()
	}
	wg.Wait()
	if n := src.Calls("a.json"); n < 1 || n > 16 {
		t.Errorf("source calls = %d", n)
	}
}

func TestLoaderInvalidate(t *testing.T) {
	ctx := context.Background()
	src := NewMemorySourceStrings(map[string]string{"a.json": `1`, "b.json": `2`})
	l := NewLoader(src)

	_, _ = l.Fetch(ctx, "a.json")
	_, _ = l.Fetch(ctx, "b.json")

	src.Put("a.json", []byte(`10`))
	l.Invalidate(ctx, "a.json")

	data, _ := l.Fetch(ctx, "a.json")
	if string(data) != "10" {
		t.Errorf("Fetch after Invalidate = %q, want 10", data)
	}
	_, _ = l.Fetch(ctx, "b.json")
	if n := src.Calls("b.json"); n != 1 {
		t.Errorf("b.json calls = %d, want 1", n)
	}

	gen := l.Generation()
	l.Invalidate(ctx)
	if l.Generation() != gen+1 {
		t.Errorf("Generation() = %d, want %d", l.Generation(), gen+1)
	}
	_, _ = l.Fetch(ctx, "b.json")
	if n := src.Calls("b.json"); n != 2 {
		t.Errorf("b.json calls after full invalidate = %d, want 2", n)
	}
}

// gatedSource blocks its first Fetch until release is closed.
type gatedSource struct {
	*MemorySource
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func newGatedSource(src *MemorySource) *gatedSource {
	return &gatedSource{
		MemorySource: src,
		started:      make(chan struct{}),
		release:      make(chan struct{}),
	}
}

func (s *gatedSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	first := false
	s.once.Do(func() { first = true })
	if first {
		data, err := s.MemorySource.Fetch(ctx, name)
		close(s.started)
		<-s.release
		return data, err
	}
	return s.MemorySource.Fetch(ctx, name)
}

func TestLoaderInvalidateDuringFetch(t *testing.T) {
	ctx := context.Background()
	src := newGatedSource(NewMemorySourceStrings(map[string]string{"a.json": `old`}))
	l := NewLoader(src)

	done := make(chan string)
	go func() {
		data, _ := l.Fetch(ctx, "a.json")
		done <- string(data)
	}()
	<-src.started

	src.Put("a.json", []byte(`new`))
	l.Invalidate(ctx, "a.json")

	// Callers after the invalidation start a fresh source call.
	data, err := l.Fetch(ctx, "a.json")
	if err != nil || string(data) != "new" {
		t.Fatalf("Fetch during stale call = %q, %v, want new", data, err)
	}

	close(src.release)
	if got := <-done; got != "old" {
		t.Errorf("in-flight Fetch = %q, want old", got)
	}

	for i := 0; i < 2; i++ {
		data, err := l.Fetch(ctx, "a.json")
		if err != nil || string(data) != "new" {
			t.Errorf("Fetch after invalidation = %q, %v, want new", data, err)
		}
	}
	if n := src.Calls("a.json"); n != 2 {
		t.Errorf("source calls = %d, want 2", n)
	}
}

func TestLoaderFetchAll(t *testing.T) {
	ctx := context.Background()
	src := NewMemorySourceStrings(map[string]string{"a.json": `1`, "b.json": `2`})
	l := NewLoader(src)

	got, err := l.FetchAll(ctx, []string{"a.json", "b.json"})
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if string(got["a.json"]) != "1" || string(got["b.json"]) != "2" {
		t.Errorf("FetchAll = %v", got)
	}

	_, err = l.FetchAll(ctx, []string{"a.json", "missing.json"})
	if !errors.Is(err, errors.ErrCodeDatasetNotFound) {
		t.Errorf("FetchAll error = %v, want DATASET_NOT_FOUND", err)
	}
}

func TestLoaderRejectsUnsafeNames(t *testing.T) {
	l := NewLoader(NewMemorySource(nil))
	_, err := l.Fetch(context.Background(), "../etc/passwd")
	if !errors.Is(err, errors.ErrCodeInvalidResource) {
		t.Errorf("Fetch error = %v, want INVALID_RESOURCE", err)
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "q.json"), []byte(`[]`), 0o644); err != nil {
		t.Fatal(err)
	}
	src := NewFileSource(dir)

	data, err := src.Fetch(context.Background(), "q.json")
	if err != nil || string(data) != "[]" {
		t.Errorf("Fetch = %q, %v", data, err)
	}
	_, err = src.Fetch(context.Background(), "nope.json")
	if !errors.Is(err, errors.ErrCodeDatasetNotFound) {
		t.Errorf("Fetch(nope) error = %v", err)
	}
}

func TestHTTPSource(t *testing.T) {
	var failures atomic.Int32
	failures.Store(1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/q.json":
			w.Write([]byte(`{"ok":true}`))
		case "/data/flaky.json":
			if failures.Add(-1) >= 0 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte(`[]`))
		case "/data/forbidden.json":
			w.WriteHeader(http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src, err := NewHTTPSource(srv.URL + "/data/")
	if err != nil {
		t.Fatalf("NewHTTPSource: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tests := []struct {
		name     string
		resource string
		want     string
		code     errors.Code
	}{
		{"ok", "q.json", `{"ok":true}`, ""},
		{"retried 503", "flaky.json", `[]`, ""},
		{"not found", "missing.json", "", errors.ErrCodeDatasetNotFound},
		{"forbidden", "forbidden.json", "", errors.ErrCodeNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := src.Fetch(ctx, tt.resource)
			if tt.code != "" {
				if !errors.Is(err, tt.code) {
					t.Errorf("Fetch(%s) error = %v, want %s", tt.resource, err, tt.code)
				}
				return
			}
			if err != nil || string(data) != tt.want {
				t.Errorf("Fetch(%s) = %q, %v, want %q", tt.resource, data, err, tt.want)
			}
		})
	}
}

func TestNewHTTPSourceRejectsScheme(t *testing.T) {
	if _, err := NewHTTPSource("file:///data"); err == nil {
		t.Error("NewHTTPSource(file://) should fail")
	}
}
