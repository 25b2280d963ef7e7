package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	storeerrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/postgres/*.sql
var pgMigrations embed.FS

var _ RecordStore = (*PgStore)(nil)

// PgStore keeps records in a PostgreSQL table.
type PgStore struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewPgStore creates a new PgStore on top of an existing pool.
// The pool is closed by Close.
func NewPgStore(db *pgxpool.Pool) *PgStore {
	return &PgStore{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Migrate applies the embedded schema migrations to the database at url.
func Migrate(url string) error {
	src, err := iofs.New(pgMigrations, "migrations/postgres")
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func (s *PgStore) Get(ctx context.Context, key string) ([]byte, error) {
	query, args, err := selectRecord(s.sb, key).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", storeerrors.ErrReadRecord, key, err)
	}
	var payload []byte
	if err := s.db.QueryRow(ctx, query, args...).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storeerrors.ErrRecordNotFound
		}
		return nil, fmt.Errorf("%w %s: %v", storeerrors.ErrReadRecord, key, err)
	}
	return payload, nil
}

func (s *PgStore) Put(ctx context.Context, key string, value []byte) error {
	query, args, err := upsertRecord(s.sb, key, value, time.Now()).ToSql()
	if err != nil {
		return fmt.Errorf("%w %s: %v", storeerrors.ErrPersistRecord, key, err)
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%w %s: %v", storeerrors.ErrPersistRecord, key, err)
	}
	return nil
}

func (s *PgStore) Close() error {
	s.db.Close()
	return nil
}
