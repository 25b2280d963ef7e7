package store

import (
	"time"

	"github.com/Masterminds/squirrel"
)

const recordsTable = "records"

// selectRecord builds the lookup of a single payload by key.
func selectRecord(sb squirrel.StatementBuilderType, key string) squirrel.SelectBuilder {
	return sb.Select("payload").
		From(recordsTable).
		Where(squirrel.Eq{"record_key": key})
}

// upsertRecord builds an insert that overwrites an existing payload for the same key.
// The ON CONFLICT clause is understood by both SQLite (3.24+) and PostgreSQL.
func upsertRecord(sb squirrel.StatementBuilderType, key string, payload []byte, now time.Time) squirrel.InsertBuilder {
	return sb.Insert(recordsTable).
		Columns("record_key", "payload", "updated_at").
		Values(key, payload, now.UTC()).
		Suffix("ON CONFLICT (record_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at")
}
