package testkit

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"transportcore/adapters/rng"
	"transportcore/adapters/xsstore"
	"transportcore/domain/core"
	"transportcore/ports"
)

// TestKit provides testing utilities and fixtures
type TestKit struct {
	rngPort ports.RNGPort
	store   *InMemoryLibraryStore
}

// NewTestKit creates a test kit with a fresh in-memory store
func NewTestKit() *TestKit {
	return &TestKit{rngPort: rng.NewAdapter(), store: NewInMemoryLibraryStore()}
}

// RNGAdapter returns the production RNG port
func (t *TestKit) RNGAdapter() ports.RNGPort {
	return t.rngPort
}

// LibraryStore returns the shared in-memory library store
func (t *TestKit) LibraryStore() *InMemoryLibraryStore {
	return t.store
}

// FixedStream replays a fixed list of uniforms, then fails the test
// through a panic if drained
type FixedStream struct {
	Values []float64
	next   int
}

// NewFixedStream creates a stream replaying values
func NewFixedStream(values ...float64) *FixedStream {
	return &FixedStream{Values: values}
}

func (s *FixedStream) Float64() float64 {
	if s.next >= len(s.Values) {
		panic(fmt.Sprintf("fixed stream drained after %d draws", s.next))
	}
	v := s.Values[s.next]
	s.next++
	return v
}

func (s *FixedStream) Uint64() uint64 {
	return uint64(s.Float64() * (1 << 53)) << 11
}

// Draws returns how many values were consumed
func (s *FixedStream) Draws() int {
	return s.next
}

// InMemoryLibraryStore implements ports.XSLibraryStore on group trees held
// in memory
type InMemoryLibraryStore struct {
	mu    sync.RWMutex
	trees map[string]map[string]ports.XSGroup // library -> root path -> tree
}

var _ ports.XSLibraryStore = (*InMemoryLibraryStore)(nil)

// NewInMemoryLibraryStore creates an empty store
func NewInMemoryLibraryStore() *InMemoryLibraryStore {
	return &InMemoryLibraryStore{trees: make(map[string]map[string]ports.XSGroup)}
}

func (s *InMemoryLibraryStore) SaveGroup(ctx context.Context, library string, grp ports.XSGroup) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.trees[library] == nil {
		s.trees[library] = make(map[string]ports.XSGroup)
	}
	s.trees[library][grp.Path()] = grp
	return nil
}

func (s *InMemoryLibraryStore) LoadGroup(ctx context.Context, library, path string) (ports.XSGroup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tree := range s.trees[library] {
		var found ports.XSGroup
		_ = xsstore.Walk(tree, func(g ports.XSGroup) error {
			if found == nil && g.Path() == path {
				found = g
			}
			return nil
		})
		if found != nil {
			return found, nil
		}
	}
	return nil, fmt.Errorf("%w: group %s in library %s", core.ErrMissingDataset, path, library)
}

func (s *InMemoryLibraryStore) ListGroups(ctx context.Context, library string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var paths []string
	for _, tree := range s.trees[library] {
		if err := xsstore.Walk(tree, func(g ports.XSGroup) error {
			paths = append(paths, g.Path())
			return nil
		}); err != nil {
			return nil, err
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Close compares two float slices within tol, for fixtures that check
// generated data
func Close(a, b []float64, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}
