package artifact

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// DefaultMemoryNamespace is the namespace of an InMemoryStore created without one.
const DefaultMemoryNamespace = "mem://artifacts"

// InMemoryStore is a trivial in-process ArtifactStore useful for tests,
// examples and single-process prototypes. Artifacts live in a map keyed by
// canonical location and guarded by an RWMutex. Data is copied on put and get
// so callers cannot mutate stored buffers.
//
// It does not enforce retention limits or size quotas. For production prefer
// the S3 implementation in the s3 sub-package.
type InMemoryStore struct {
	mu        sync.RWMutex
	namespace string
	artifacts map[string][]byte // canonical location -> data
}

// NewInMemoryStore returns an empty store. An empty namespace selects
// DefaultMemoryNamespace.
func NewInMemoryStore(namespace string) *InMemoryStore {
	if namespace == "" {
		namespace = DefaultMemoryNamespace
	}
	return &InMemoryStore{namespace: namespace, artifacts: make(map[string][]byte)}
}

// Namespace returns the location prefix of stored artifacts.
func (a *InMemoryStore) Namespace() string { return a.namespace }

// Put stores (or overwrites) data at location and returns the canonical location.
func (a *InMemoryStore) Put(ctx context.Context, location string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(location) == "" {
		return "", fmt.Errorf("artifact location must not be empty")
	}
	loc := a.canonical(location)

	cp := make([]byte, len(data))
	copy(cp, data)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.artifacts[loc] = cp
	return loc, nil
}

// Get returns a copy of the stored bytes or ErrNotFound.
func (a *InMemoryStore) Get(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	data, ok := a.artifacts[a.canonical(location)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, location)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// List returns the stored locations. The slice is a snapshot.
func (a *InMemoryStore) List() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	locs := make([]string, 0, len(a.artifacts))
	for loc := range a.artifacts {
		locs = append(locs, loc)
	}
	return locs
}

// Len returns the number of stored artifacts.
func (a *InMemoryStore) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.artifacts)
}

func (a *InMemoryStore) canonical(location string) string {
	if strings.Contains(location, "://") {
		return location
	}
	return Join(a.namespace, location)
}
