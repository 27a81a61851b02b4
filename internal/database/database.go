package database

import (
	"context"
	"errors"
	"time"

	"github.com/davinci-dev/davinci/internal/model"
)

// Common database errors
var (
	ErrNotFound       = errors.New("record not found")
	ErrAlreadyExists  = errors.New("record already exists")
	ErrInvalidInput   = errors.New("invalid input")
	ErrDatabase       = errors.New("database error")
	ErrInvalidVersion = errors.New("invalid version: cannot publish duplicate version")
)

// SnapshotFilter narrows a List call. Nil fields are ignored.
type SnapshotFilter struct {
	Version        *string
	IsLatest       *bool
	PublishedSince *time.Time
}

// Database defines the interface for snapshot persistence
type Database interface {
	// List retrieves snapshots ordered by ID, starting after cursor
	List(ctx context.Context, filter *SnapshotFilter, cursor string, limit int) ([]*model.Snapshot, string, error)
	// GetByID retrieves a single snapshot by its ID
	GetByID(ctx context.Context, id string) (*model.Snapshot, error)
	// GetLatest retrieves the snapshot flagged as latest
	GetLatest(ctx context.Context) (*model.Snapshot, error)
	// Publish stores snapshot as the new latest one, clearing the flag on the previous latest
	Publish(ctx context.Context, snapshot *model.Snapshot) (*model.Snapshot, error)
	// ImportSeed imports initial data from a seed file
	ImportSeed(ctx context.Context, seedFilePath string) error
	// Close closes the database connection
	Close() error
	// Connection returns information about the database connection
	Connection() *ConnectionInfo
}

// ConnectionType represents the type of database connection
type ConnectionType string

const (
	// ConnectionTypeMemory represents an in-memory database connection
	ConnectionTypeMemory ConnectionType = "memory"
	// ConnectionTypePostgreSQL represents a PostgreSQL database connection
	ConnectionTypePostgreSQL ConnectionType = "postgresql"
	// ConnectionTypeMongoDB represents a MongoDB database connection
	ConnectionTypeMongoDB ConnectionType = "mongodb"
)

// ConnectionInfo provides information about the database connection
type ConnectionInfo struct {
	// Type indicates the type of database connection
	Type ConnectionType
	// IsConnected indicates whether the database is currently connected
	IsConnected bool
	// Raw provides access to the underlying connection object, which will vary by implementation
	// For PostgreSQL, this will be *pgx.Conn
	// For MongoDB, this will be *mongo.Client
	// For MemoryDB, this will be map[string]*model.Snapshot
	Raw any
}

func validateSnapshot(s *model.Snapshot) error {
	if s == nil || s.ID == "" || s.Version == "" {
		return ErrInvalidInput
	}
	return nil
}

func matches(filter *SnapshotFilter, s *model.Snapshot) bool {
	if filter == nil {
		return true
	}
	if filter.Version != nil && s.Version != *filter.Version {
		return false
	}
	if filter.IsLatest != nil && s.IsLatest != *filter.IsLatest {
		return false
	}
	if filter.PublishedSince != nil && !s.PublishedAt.After(*filter.PublishedSince) {
		return false
	}
	return true
}
