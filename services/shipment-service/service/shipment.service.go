// service/shipment.service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/solushipx/logisynapse/services/shipment-service/store"
	"github.com/solushipx/logisynapse/shared/contracts"
	"github.com/solushipx/logisynapse/shared/kafka"
)

var (
	// ErrInvalidShipment wraps every validation failure.
	ErrInvalidShipment = errors.New("invalid shipment")

	// ErrNotEditable is returned when updating a shipment that has left draft/pending.
	ErrNotEditable = errors.New("can only update draft or pending shipments")
)

// ShipmentService handles business logic for shipment documents, using a
// ShipmentStore for data access.
type ShipmentService struct {
	store    store.ShipmentStore
	producer kafka.Publisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewShipmentService creates a new service with the given store. producer may be nil.
func NewShipmentService(s store.ShipmentStore, producer kafka.Publisher, logger *zap.Logger) *ShipmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShipmentService{
		store:    s,
		producer: producer,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateShipment validates and stores a new document. The ID and createdAt
// are assigned here; status defaults to draft.
func (s *ShipmentService) CreateShipment(ctx context.Context, doc contracts.ShipmentDocument) (contracts.ShipmentDocument, error) {
	if err := validate(doc); err != nil {
		return contracts.ShipmentDocument{}, err
	}
	doc.ID = uuid.NewString()
	now := s.now().UTC()
	doc.CreatedAt = &now
	if doc.Status == "" {
		doc.Status = contracts.StatusDraft
	}

	created, err := s.store.CreateShipment(ctx, doc)
	if err != nil {
		return contracts.ShipmentDocument{}, fmt.Errorf("failed to store shipment: %w", err)
	}
	s.publish(ctx, "shipment.created", created)
	return created, nil
}

// UpdateShipment merges the non-empty fields of patch into the stored document.
func (s *ShipmentService) UpdateShipment(ctx context.Context, patch contracts.ShipmentDocument) (contracts.ShipmentDocument, error) {
	if patch.ID == "" {
		return contracts.ShipmentDocument{}, fmt.Errorf("%w: missing shipment id", ErrInvalidShipment)
	}
	current, err := s.store.GetShipment(ctx, patch.ID)
	if err != nil {
		return contracts.ShipmentDocument{}, err
	}
	if current.Status != contracts.StatusDraft && current.Status != contracts.StatusPending {
		return contracts.ShipmentDocument{}, ErrNotEditable
	}

	updated := current
	updated.ShipmentID = ifEmpty(patch.ShipmentID, current.ShipmentID)
	updated.TrackingNumber = ifEmpty(patch.TrackingNumber, current.TrackingNumber)
	updated.Status = ifEmpty(patch.Status, current.Status)
	updated.Carrier = ifEmpty(patch.Carrier, current.Carrier)
	updated.SelectedCarrier = ifNil(patch.SelectedCarrier, current.SelectedCarrier)
	updated.SelectedRate = ifNil(patch.SelectedRate, current.SelectedRate)
	updated.Pricing = ifNil(patch.Pricing, current.Pricing)
	updated.TotalCharges = ifNil(patch.TotalCharges, current.TotalCharges)
	updated.BookedAt = ifNil(patch.BookedAt, current.BookedAt)
	updated.ShipFrom = ifNil(patch.ShipFrom, current.ShipFrom)
	updated.ShipTo = ifNil(patch.ShipTo, current.ShipTo)
	updated.ShipmentInfo = ifNil(patch.ShipmentInfo, current.ShipmentInfo)

	if err := s.store.UpdateShipment(ctx, updated); err != nil {
		return contracts.ShipmentDocument{}, err
	}
	s.publish(ctx, "shipment.updated", updated)
	return updated, nil
}

func (s *ShipmentService) GetShipment(ctx context.Context, id string) (contracts.ShipmentDocument, error) {
	return s.store.GetShipment(ctx, id)
}

func (s *ShipmentService) GetShipments(ctx context.Context, filter store.ListFilter) ([]contracts.ShipmentDocument, error) {
	return s.store.GetShipments(ctx, filter)
}

// ImportResult counts the outcome of an ImportShipments call.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// ImportShipments backfills documents exported from another system. Documents
// keep their own ID when they have one. A failing document is recorded and
// skipped; only context cancellation stops the import.
func (s *ShipmentService) ImportShipments(ctx context.Context, docs []contracts.ShipmentDocument) (ImportResult, error) {
	var res ImportResult
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := validate(doc); err != nil {
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Sprintf("document %d: %v", i, err))
			continue
		}
		if doc.ID == "" {
			doc.ID = uuid.NewString()
		}
		if doc.Status == "" {
			doc.Status = contracts.StatusDraft
		}
		if _, err := s.store.CreateShipment(ctx, doc); err != nil {
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Sprintf("document %d (%s): %v", i, doc.ID, err))
			continue
		}
		res.Imported++
	}
	s.logger.Info("shipment import finished",
		zap.Int("imported", res.Imported),
		zap.Int("skipped", res.Skipped))
	return res, nil
}

func (s *ShipmentService) publish(ctx context.Context, event string, doc contracts.ShipmentDocument) {
	if s.producer == nil {
		return
	}
	if err := s.producer.Publish(ctx, doc.ID, kafka.Event{Event: event, Payload: doc}); err != nil {
		s.logger.Warn("failed to publish shipment event",
			zap.String("event", event),
			zap.String("id", doc.ID),
			zap.Error(err))
	}
}

func validate(doc contracts.ShipmentDocument) error {
	var missing []string
	if strings.TrimSpace(doc.ShipmentID) == "" {
		missing = append(missing, "shipmentID")
	}
	if doc.Origin() == nil {
		missing = append(missing, "shipFrom")
	}
	if doc.Destination() == nil {
		missing = append(missing, "shipTo")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidShipment, strings.Join(missing, ", "))
	}
	return nil
}

func ifEmpty(newValue, oldValue string) string {
	if newValue != "" {
		return newValue
	}
	return oldValue
}

func ifNil[T any](newValue, oldValue *T) *T {
	if newValue != nil {
		return newValue
	}
	return oldValue
}
