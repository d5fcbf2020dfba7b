// store/store.go
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/solushipx/logisynapse/shared/config"
	"github.com/solushipx/logisynapse/shared/contracts"
)

var (
	// ErrShipmentNotFound is returned by GetShipment/UpdateShipment for unknown IDs.
	ErrShipmentNotFound = errors.New("shipment not found")

	// ErrShipmentExists is returned when creating a document whose ID is taken.
	ErrShipmentExists = errors.New("shipment already exists")

	// ErrUnknownField is returned by FindShipments for fields that have no lookup path.
	ErrUnknownField = errors.New("unknown lookup field")
)

// Field names a document field that supports equality lookup.
type Field string

const (
	FieldShipmentID     Field = "shipmentID"
	FieldTrackingNumber Field = "trackingNumber"
)

// Valid reports whether f has a lookup path in every store.
func (f Field) Valid() bool {
	return f == FieldShipmentID || f == FieldTrackingNumber
}

func (f Field) value(doc contracts.ShipmentDocument) string {
	switch f {
	case FieldShipmentID:
		return doc.ShipmentID
	case FieldTrackingNumber:
		return doc.TrackingNumber
	}
	return ""
}

// ListFilter narrows GetShipments. Empty fields mean no filter.
type ListFilter struct {
	CompanyID string
	Status    string
	Limit     int32
	Offset    int32
}

// ShipmentStore defines the interface for the storage layer.
type ShipmentStore interface {
	// CreateShipment adds a new document. doc.ID must be set by the caller.
	CreateShipment(ctx context.Context, doc contracts.ShipmentDocument) (contracts.ShipmentDocument, error)

	GetShipment(ctx context.Context, id string) (contracts.ShipmentDocument, error)

	// GetShipments lists documents, oldest first.
	GetShipments(ctx context.Context, filter ListFilter) ([]contracts.ShipmentDocument, error)

	// UpdateShipment replaces the stored document with the same ID.
	UpdateShipment(ctx context.Context, doc contracts.ShipmentDocument) error

	// FindShipments returns at most limit documents whose field equals value exactly.
	FindShipments(ctx context.Context, field Field, value string, limit int) ([]contracts.ShipmentDocument, error)

	Close() error
}

// Open builds the store selected by cfg.STORE_DRIVER.
func Open(ctx context.Context, cfg *config.CommonConfig) (ShipmentStore, error) {
	switch cfg.STORE_DRIVER {
	case "postgres", "":
		s, err := NewPostgresStore(ctx, cfg.GetDBURL())
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	case "sqlite":
		s, err := NewSQLiteStore(ctx, cfg.SQLITE_PATH)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.STORE_DRIVER)
	}
}
