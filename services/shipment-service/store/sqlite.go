package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteStore is the single-file store used by matchctl and local runs.
type SQLiteStore struct {
	*sqlStore
}

var sqliteDialect = dialect{
	schema: []string{
		`CREATE TABLE IF NOT EXISTS shipments (
            seq        INTEGER PRIMARY KEY AUTOINCREMENT,
            id         TEXT NOT NULL UNIQUE,
            company_id TEXT NOT NULL DEFAULT '',
            status     TEXT NOT NULL DEFAULT '',
            doc        TEXT NOT NULL,
            created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE INDEX IF NOT EXISTS shipments_shipment_id_idx ON shipments (json_extract(doc, '$.shipmentID'))`,
		`CREATE INDEX IF NOT EXISTS shipments_tracking_number_idx ON shipments (json_extract(doc, '$.trackingNumber'))`,
		`CREATE INDEX IF NOT EXISTS shipments_company_idx ON shipments (company_id, seq)`,
	},
	insert: `INSERT INTO shipments (id, company_id, status, doc) VALUES (?, ?, ?, ?)`,
	get:    `SELECT id, doc FROM shipments WHERE id = ?`,
	list: `
        SELECT id, doc
        FROM shipments
        WHERE (?1 = '' OR company_id = ?1)
          AND (?2 = '' OR status = ?2)
        ORDER BY seq ASC
        LIMIT ?3 OFFSET ?4`,
	update: `UPDATE shipments SET company_id = ?2, status = ?3, doc = ?4 WHERE id = ?1`,
	find: map[Field]string{
		FieldShipmentID:     `SELECT id, doc FROM shipments WHERE json_extract(doc, '$.shipmentID') = ? ORDER BY seq ASC LIMIT ?`,
		FieldTrackingNumber: `SELECT id, doc FROM shipments WHERE json_extract(doc, '$.trackingNumber') = ? ORDER BY seq ASC LIMIT ?`,
	},
	noLimit: -1,
	isDuplicate: func(err error) bool {
		var sqlErr *sqlite.Error
		if !errors.As(err, &sqlErr) {
			return false
		}
		code := sqlErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	},
}

// NewSQLiteStore opens the database file at path, creating it if needed, and
// migrates the schema. ":memory:" gives a throwaway store.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db %s: %w", path, err)
	}
	// one writer; also keeps ":memory:" on a single connection
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{sqlStore: &sqlStore{db: db, d: sqliteDialect}}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}
