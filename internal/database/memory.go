package database

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"

	"github.com/davinci-dev/davinci/internal/model"
)

// MemoryDB is an in-memory implementation of the Database interface
type MemoryDB struct {
	snapshots map[string]*model.Snapshot
	mu        sync.RWMutex
}

// NewMemoryDB creates a new instance of the in-memory database
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		snapshots: make(map[string]*model.Snapshot),
	}
}

// List retrieves snapshots with optional filtering and pagination
func (db *MemoryDB) List(ctx context.Context, filter *SnapshotFilter, cursor string, limit int) ([]*model.Snapshot, string, error) {
	if ctx.Err() != nil {
		return nil, "", ctx.Err()
	}

	if limit <= 0 {
		limit = 10 // Default limit
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	var filtered []*model.Snapshot
	for _, s := range db.snapshots {
		if matches(filter, s) {
			filtered = append(filtered, copySnapshot(s))
		}
	}

	// Sort by ID for consistent pagination
	slices.SortFunc(filtered, func(a, b *model.Snapshot) int {
		return strings.Compare(a.ID, b.ID)
	})

	startIdx := 0
	if cursor != "" {
		startIdx = len(filtered)
		for i, s := range filtered {
			if s.ID > cursor {
				startIdx = i
				break
			}
		}
	}

	endIdx := min(startIdx+limit, len(filtered))
	result := []*model.Snapshot{}
	if startIdx < len(filtered) {
		result = filtered[startIdx:endIdx]
	}

	nextCursor := ""
	if endIdx < len(filtered) {
		nextCursor = filtered[endIdx-1].ID
	}

	return result, nextCursor, nil
}

// GetByID retrieves a single snapshot by its ID
func (db *MemoryDB) GetByID(ctx context.Context, id string) (*model.Snapshot, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	if s, exists := db.snapshots[id]; exists {
		return copySnapshot(s), nil
	}
	return nil, ErrNotFound
}

// GetLatest retrieves the latest snapshot
func (db *MemoryDB) GetLatest(ctx context.Context) (*model.Snapshot, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, s := range db.snapshots {
		if s.IsLatest {
			return copySnapshot(s), nil
		}
	}
	return nil, ErrNotFound
}

// Publish stores a new latest snapshot
func (db *MemoryDB) Publish(ctx context.Context, snapshot *model.Snapshot) (*model.Snapshot, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err := validateSnapshot(snapshot); err != nil {
		return nil, err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.snapshots[snapshot.ID]; exists {
		return nil, ErrAlreadyExists
	}
	for _, s := range db.snapshots {
		if s.Version == snapshot.Version {
			return nil, ErrInvalidVersion
		}
	}

	for _, s := range db.snapshots {
		s.IsLatest = false
	}
	stored := copySnapshot(snapshot)
	stored.IsLatest = true
	db.snapshots[stored.ID] = stored

	return copySnapshot(stored), nil
}

// ImportSeed imports initial data from a seed file
func (db *MemoryDB) ImportSeed(ctx context.Context, seedFilePath string) error {
	snapshots, err := ReadSeedFile(ctx, seedFilePath)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	log.Printf("Importing %d snapshots into memory", len(snapshots))

	all := make([]*model.Snapshot, 0, len(db.snapshots)+len(snapshots))
	for _, s := range db.snapshots {
		all = append(all, s)
	}
	for _, s := range markLatest(append(all, snapshots...)) {
		db.snapshots[s.ID] = copySnapshot(s)
	}
	return nil
}

// Close closes the database connection
// For an in-memory database, this is a no-op
func (db *MemoryDB) Close() error {
	return nil
}

// Connection returns information about the database connection
func (db *MemoryDB) Connection() *ConnectionInfo {
	return &ConnectionInfo{
		Type:        ConnectionTypeMemory,
		IsConnected: true, // Memory DB is always connected
		Raw:         db.snapshots,
	}
}

func copySnapshot(s *model.Snapshot) *model.Snapshot {
	c := *s
	if s.Document != nil {
		c.Document = append([]byte(nil), s.Document...)
	}
	return &c
}
