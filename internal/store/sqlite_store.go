package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	storeerrors "github.com/abgdnv/storefront/internal/errors"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/sqlite/schema.sql
var sqliteSchema string

var _ RecordStore = (*SQLiteStore)(nil)

// SQLiteStore keeps records in a single-file SQLite database.
type SQLiteStore struct {
	db *sql.DB
	sb squirrel.StatementBuilderType
}

// OpenSQLite creates or opens the database file at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = FULL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question).RunWith(db),
	}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := selectRecord(s.sb, key).QueryRowContext(ctx).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storeerrors.ErrRecordNotFound
		}
		return nil, fmt.Errorf("%w %s: %v", storeerrors.ErrReadRecord, key, err)
	}
	return payload, nil
}

func (s *SQLiteStore) Put(ctx context.Context, key string, value []byte) error {
	if _, err := upsertRecord(s.sb, key, value, time.Now()).ExecContext(ctx); err != nil {
		return fmt.Errorf("%w %s: %v", storeerrors.ErrPersistRecord, key, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
