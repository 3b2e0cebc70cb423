package dataset

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/crimescope/pkg/errors"
)

// Source fetches raw resources by name.
type Source interface {
	// Name identifies the source kind in cache keys and logs.
	Name() string
	// Fetch returns the raw bytes of the named resource.
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// FileSource reads resources from a local directory.
type FileSource struct {
	Dir string
}

// NewFileSource returns a FileSource rooted at dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{Dir: dir}
}

func (s *FileSource) Name() string { return "file" }

func (s *FileSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := errors.ValidateResourceName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.Dir, name))
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeDatasetNotFound, "dataset %s not found in %s", name, s.Dir)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", name)
	}
	return data, nil
}

// MemorySource serves fixed resources from memory.
type MemorySource struct {
	mu    sync.RWMutex
	data  map[string][]byte
	calls map[string]int
}

// NewMemorySource returns a MemorySource holding a copy of resources.
func NewMemorySource(resources map[string][]byte) *MemorySource {
	s := &MemorySource{
		data:  make(map[string][]byte, len(resources)),
		calls: make(map[string]int),
	}
	for k, v := range resources {
		s.data[k] = v
	}
	return s
}

// NewMemorySourceStrings is NewMemorySource for string payloads.
func NewMemorySourceStrings(resources map[string]string) *MemorySource {
	m := make(map[string][]byte, len(resources))
	for k, v := range resources {
		m[k] = []byte(v)
	}
	return NewMemorySource(m)
}

func (s *MemorySource) Name() string { return "memory" }

func (s *MemorySource) Fetch(ctx context.Context, name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[name]++
	data, ok := s.data[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeDatasetNotFound, "dataset %s not found", name)
	}
	return data, nil
}

// Put replaces a resource.
func (s *MemorySource) Put(name string, data []byte) {
	s.mu.Lock()
	s.data[name] = data
	s.mu.Unlock()
}

// Calls returns how many times name was fetched.
func (s *MemorySource) Calls(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[name]
}
