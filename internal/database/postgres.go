package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/davinci-dev/davinci/internal/model"
)

const pgUniqueViolation = "23505"

// PostgreSQL is an implementation of the Database interface using PostgreSQL
type PostgreSQL struct {
	conn *pgx.Conn
}

// NewPostgreSQL creates a new instance of the PostgreSQL database
func NewPostgreSQL(ctx context.Context, connectionURI string) (*PostgreSQL, error) {
	conn, err := pgx.Connect(ctx, connectionURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// Test the connection
	if err = conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	if err := NewMigrator(conn).Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	return &PostgreSQL{
		conn: conn,
	}, nil
}

const snapshotColumns = "id::text, version, published_at, is_latest, document"

func scanSnapshot(row pgx.Row) (*model.Snapshot, error) {
	var s model.Snapshot
	var document []byte
	if err := row.Scan(&s.ID, &s.Version, &s.PublishedAt, &s.IsLatest, &document); err != nil {
		return nil, err
	}
	s.Document = document
	return &s, nil
}

// List retrieves snapshots with optional filtering and pagination
func (db *PostgreSQL) List(ctx context.Context, filter *SnapshotFilter, cursor string, limit int) ([]*model.Snapshot, string, error) {
	if limit <= 0 {
		limit = 10
	}

	if ctx.Err() != nil {
		return nil, "", ctx.Err()
	}

	var whereConditions []string
	args := []any{}
	argIndex := 1

	if filter != nil {
		if filter.Version != nil {
			whereConditions = append(whereConditions, fmt.Sprintf("version = $%d", argIndex))
			args = append(args, *filter.Version)
			argIndex++
		}
		if filter.IsLatest != nil {
			whereConditions = append(whereConditions, fmt.Sprintf("is_latest = $%d", argIndex))
			args = append(args, *filter.IsLatest)
			argIndex++
		}
		if filter.PublishedSince != nil {
			whereConditions = append(whereConditions, fmt.Sprintf("published_at > $%d", argIndex))
			args = append(args, *filter.PublishedSince)
			argIndex++
		}
	}

	if cursor != "" {
		if _, err := uuid.Parse(cursor); err != nil {
			return nil, "", fmt.Errorf("invalid cursor format: %w", err)
		}
		whereConditions = append(whereConditions, fmt.Sprintf("id > $%d", argIndex))
		args = append(args, cursor)
		argIndex++
	}

	whereClause := ""
	if len(whereConditions) > 0 {
		whereClause = "WHERE " + strings.Join(whereConditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM snapshots
		%s
		ORDER BY id
		LIMIT $%d
	`, snapshotColumns, whereClause, argIndex)
	args = append(args, limit)

	rows, err := db.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	results := []*model.Snapshot{}
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, "", fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		results = append(results, s)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("error iterating rows: %w", err)
	}

	nextCursor := ""
	if len(results) >= limit {
		nextCursor = results[len(results)-1].ID
	}

	return results, nextCursor, nil
}

// GetByID retrieves a single snapshot by its ID
func (db *PostgreSQL) GetByID(ctx context.Context, id string) (*model.Snapshot, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	query := "SELECT " + snapshotColumns + " FROM snapshots WHERE id = $1"
	s, err := scanSnapshot(db.conn.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get snapshot by ID: %w", err)
	}
	return s, nil
}

// GetLatest retrieves the latest snapshot
func (db *PostgreSQL) GetLatest(ctx context.Context) (*model.Snapshot, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	query := "SELECT " + snapshotColumns + " FROM snapshots WHERE is_latest"
	s, err := scanSnapshot(db.conn.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}
	return s, nil
}

// Publish stores a new latest snapshot in a single transaction
func (db *PostgreSQL) Publish(ctx context.Context, snapshot *model.Snapshot) (*model.Snapshot, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err := validateSnapshot(snapshot); err != nil {
		return nil, err
	}

	stored := *snapshot
	stored.IsLatest = true

	err := pgx.BeginFunc(ctx, db.conn, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "UPDATE snapshots SET is_latest = FALSE WHERE is_latest"); err != nil {
			return fmt.Errorf("failed to clear latest flag: %w", err)
		}
		_, err := tx.Exec(ctx,
			"INSERT INTO snapshots (id, version, published_at, is_latest, document) VALUES ($1, $2, $3, $4, $5)",
			stored.ID, stored.Version, stored.PublishedAt, stored.IsLatest, []byte(stored.Document))
		return err
	})
	if err != nil {
		return nil, translatePgError(err)
	}
	return &stored, nil
}

// ImportSeed imports initial data from a seed file
func (db *PostgreSQL) ImportSeed(ctx context.Context, seedFilePath string) error {
	snapshots, err := ReadSeedFile(ctx, seedFilePath)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	existing, err := db.allSnapshots(ctx)
	if err != nil {
		return err
	}

	log.Printf("Importing %d snapshots into PostgreSQL", len(snapshots))

	return pgx.BeginFunc(ctx, db.conn, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "UPDATE snapshots SET is_latest = FALSE WHERE is_latest"); err != nil {
			return fmt.Errorf("failed to clear latest flag: %w", err)
		}
		for _, s := range markLatest(append(existing, snapshots...)) {
			_, err := tx.Exec(ctx, `
				INSERT INTO snapshots (id, version, published_at, is_latest, document)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (id) DO UPDATE
				SET version = EXCLUDED.version, published_at = EXCLUDED.published_at,
					is_latest = EXCLUDED.is_latest, document = EXCLUDED.document
			`, s.ID, s.Version, s.PublishedAt, s.IsLatest, []byte(s.Document))
			if err != nil {
				return fmt.Errorf("failed to import snapshot %s: %w", s.ID, translatePgError(err))
			}
		}
		return nil
	})
}

func (db *PostgreSQL) allSnapshots(ctx context.Context) ([]*model.Snapshot, error) {
	rows, err := db.conn.Query(ctx, "SELECT "+snapshotColumns+" FROM snapshots")
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var all []*model.Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		all = append(all, s)
	}
	return all, rows.Err()
}

func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		if pgErr.ConstraintName == "snapshots_version_key" {
			return ErrInvalidVersion
		}
		return ErrAlreadyExists
	}
	return fmt.Errorf("%w: %w", ErrDatabase, err)
}

// Close closes the database connection
func (db *PostgreSQL) Close() error {
	return db.conn.Close(context.Background())
}

// Connection returns information about the database connection
func (db *PostgreSQL) Connection() *ConnectionInfo {
	return &ConnectionInfo{
		Type:        ConnectionTypePostgreSQL,
		IsConnected: db.conn != nil && !db.conn.IsClosed(),
		Raw:         db.conn,
	}
}
