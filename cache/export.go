package cache

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// SnapshotVersion is the format version written by Exporter.
const SnapshotVersion = 2

// Snapshot is the on-disk form of a cache dump. It is used to warm the
// shared tier of a fresh deployment from a running instance.
type Snapshot struct {
	Version   int               `json:"version"`
	CreatedAt time.Time         `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Entries   []SnapshotEntry   `json:"entries"`
}

// SnapshotEntry is one key/value pair of a snapshot.
type SnapshotEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Exporter dumps the live entries of a cache.
type Exporter struct {
	cache  ExportableCache
	prefix string
}

// NewExporter creates an exporter over every entry of cache.
func NewExporter(cache ExportableCache) *Exporter {
	return &Exporter{cache: cache}
}

// WithPrefix restricts the dump to keys starting with prefix.
func (e *Exporter) WithPrefix(prefix string) *Exporter {
	e.prefix = prefix
	return e
}

// Snapshot collects the matching entries, sorted by key.
func (e *Exporter) Snapshot(metadata map[string]string) Snapshot {
	entries := make([]SnapshotEntry, 0)
	for key, value := range e.cache.Entries() {
		if !strings.HasPrefix(key, e.prefix) {
			continue
		}
		entries = append(entries, SnapshotEntry{Key: key, Value: value})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	return Snapshot{
		Version:   SnapshotVersion,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Metadata:  metadata,
		Entries:   entries,
	}
}

// Export writes an indented snapshot to w.
func (e *Exporter) Export(w io.Writer, metadata map[string]string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(e.Snapshot(metadata)); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// ImportResult counts what an import did.
type ImportResult struct {
	Version  int
	Metadata map[string]string
	Imported int
	Skipped  int // Blank keys or values
	Failed   int // Rejected by the cache
}

// Importer loads snapshots into a shared tier.
type Importer struct {
	cache SharedCache
	ttl   time.Duration
}

// NewImporter creates an importer writing entries with the given TTL.
func NewImporter(cache SharedCache, ttl time.Duration) *Importer {
	return &Importer{cache: cache, ttl: ttl}
}

// Import decodes a snapshot from r and stores its entries. It stops early
// only when ctx is done.
func (i *Importer) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version > SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d is newer than %d", snap.Version, SnapshotVersion)
	}

	result := &ImportResult{Version: snap.Version, Metadata: snap.Metadata}
	for _, entry := range snap.Entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if entry.Key == "" || entry.Value == "" {
			result.Skipped++
			continue
		}
		if err := i.cache.Set(ctx, entry.Key, entry.Value, i.ttl); err != nil {
			result.Failed++
			continue
		}
		result.Imported++
	}

	return result, nil
}

// ImportFile imports the snapshot stored at path.
func (i *Importer) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - operator supplied path
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	return i.Import(ctx, f)
}
