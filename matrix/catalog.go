package matrix

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	// ErrSnapshotNotFound is returned when a catalog has no entry for
	// the requested snapshot.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrVersionConflict is returned when a concurrent publish claimed
	// the same version first.
	ErrVersionConflict = errors.New("snapshot version conflict")
)

// Entry describes one published snapshot version.
type Entry struct {
	// Name is the logical snapshot name, shared by all its versions.
	Name string `json:"name"`

	// Version is assigned by the catalog, monotonically increasing
	// per name starting at 1.
	Version uint64 `json:"version"`

	// Key is the blobstore key the snapshot blob was written under.
	Key string `json:"key"`

	// Formula the matrix was computed with.
	Formula string `json:"formula"`

	// Count is the number of points in the matrix.
	Count int `json:"count"`

	CreatedAt time.Time `json:"created_at"`
}

// Catalog is a versioned registry of published snapshots. Publish
// assigns the next version atomically; concurrent publishers race and
// the loser gets ErrVersionConflict.
type Catalog interface {
	// Publish registers the entry under the next free version for
	// entry.Name and returns the assigned version.
	Publish(ctx context.Context, entry Entry) (uint64, error)

	// Latest returns the highest published version for name.
	Latest(ctx context.Context, name string) (Entry, error)

	// Versions lists all published versions for name, ascending.
	Versions(ctx context.Context, name string) ([]Entry, error)
}

// MemoryCatalog is an in-memory Catalog for tests and single-process
// use.
type MemoryCatalog struct {
	mu      sync.Mutex
	entries map[string][]Entry
}

// NewMemoryCatalog creates an empty in-memory catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		entries: make(map[string][]Entry),
	}
}

// Publish implements Catalog.
func (c *MemoryCatalog) Publish(_ context.Context, entry Entry) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	versions := c.entries[entry.Name]

	entry.Version = 1
	if len(versions) > 0 {
		entry.Version = versions[len(versions)-1].Version + 1
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	c.entries[entry.Name] = append(versions, entry)

	return entry.Version, nil
}

// Latest implements Catalog.
func (c *MemoryCatalog) Latest(_ context.Context, name string) (Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	versions := c.entries[name]
	if len(versions) == 0 {
		return Entry{}, ErrSnapshotNotFound
	}

	return versions[len(versions)-1], nil
}

// Versions implements Catalog.
func (c *MemoryCatalog) Versions(_ context.Context, name string) ([]Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	versions := c.entries[name]
	if len(versions) == 0 {
		return nil, ErrSnapshotNotFound
	}

	out := make([]Entry, len(versions))
	copy(out, versions)

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })

	return out, nil
}
