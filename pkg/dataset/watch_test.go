package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherInvalidatesChangedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "q.json")
	if err := os.WriteFile(path, []byte(`1`), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(NewFileSource(dir))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if data, _ := l.Fetch(ctx, "q.json"); string(data) != "1" {
		t.Fatalf("initial Fetch = %q", data)
	}

	w, err := NewWatcher(dir, l, nil)
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	defer w.Close()
	go w.Run(ctx)

	if err := os.WriteFile(path, []byte(`2`), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if data, _ := l.Fetch(ctx, "q.json"); string(data) == "2" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("loader still serves stale data after file change")
}
