package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/solushipx/logisynapse/shared/contracts"
)

// dialect holds the statements that differ between Postgres and SQLite.
// Documents are stored whole as JSON; company_id and status are copied into
// columns for listing.
type dialect struct {
	schema      []string
	insert      string
	get         string
	list        string
	update      string
	find        map[Field]string
	noLimit     int32
	isDuplicate func(error) bool
}

// sqlStore implements ShipmentStore on database/sql for any dialect.
type sqlStore struct {
	db *sql.DB
	d  dialect
}

// Migrate creates the shipments table and lookup indexes if missing.
func (s *sqlStore) Migrate(ctx context.Context) error {
	for _, stmt := range s.d.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate shipments schema: %w", err)
		}
	}
	return nil
}

// Close closes the database connection
func (s *sqlStore) Close() error {
	return s.db.Close()
}

func (s *sqlStore) CreateShipment(ctx context.Context, doc contracts.ShipmentDocument) (contracts.ShipmentDocument, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return contracts.ShipmentDocument{}, fmt.Errorf("failed to encode shipment %s: %w", doc.ID, err)
	}
	if _, err := s.db.ExecContext(ctx, s.d.insert, doc.ID, doc.CompanyID, doc.Status, string(raw)); err != nil {
		if s.d.isDuplicate(err) {
			return contracts.ShipmentDocument{}, ErrShipmentExists
		}
		return contracts.ShipmentDocument{}, fmt.Errorf("failed to insert shipment: %w", err)
	}
	return doc, nil
}

func (s *sqlStore) GetShipment(ctx context.Context, id string) (contracts.ShipmentDocument, error) {
	row := s.db.QueryRowContext(ctx, s.d.get, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return contracts.ShipmentDocument{}, ErrShipmentNotFound
	}
	if err != nil {
		return contracts.ShipmentDocument{}, fmt.Errorf("failed to get shipment %s: %w", id, err)
	}
	return doc, nil
}

func (s *sqlStore) GetShipments(ctx context.Context, filter ListFilter) ([]contracts.ShipmentDocument, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = s.d.noLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx, s.d.list, filter.CompanyID, filter.Status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list shipments: %w", err)
	}
	return collectDocuments(rows)
}

func (s *sqlStore) UpdateShipment(ctx context.Context, doc contracts.ShipmentDocument) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode shipment %s: %w", doc.ID, err)
	}
	res, err := s.db.ExecContext(ctx, s.d.update, doc.ID, doc.CompanyID, doc.Status, string(raw))
	if err != nil {
		return fmt.Errorf("failed to update shipment %s: %w", doc.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrShipmentNotFound
	}
	return nil
}

func (s *sqlStore) FindShipments(ctx context.Context, field Field, value string, limit int) ([]contracts.ShipmentDocument, error) {
	query, ok := s.d.find[field]
	if !ok {
		return nil, ErrUnknownField
	}
	if limit <= 0 {
		limit = int(s.d.noLimit)
	}
	rows, err := s.db.QueryContext(ctx, query, value, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find shipments by %s: %w", field, err)
	}
	return collectDocuments(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (contracts.ShipmentDocument, error) {
	var (
		id  string
		raw []byte
	)
	if err := row.Scan(&id, &raw); err != nil {
		return contracts.ShipmentDocument{}, err
	}
	var doc contracts.ShipmentDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return contracts.ShipmentDocument{}, fmt.Errorf("corrupt document %s: %w", id, err)
	}
	// the column is authoritative for identity
	doc.ID = id
	return doc, nil
}

func collectDocuments(rows *sql.Rows) ([]contracts.ShipmentDocument, error) {
	defer rows.Close()
	var docs []contracts.ShipmentDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}
