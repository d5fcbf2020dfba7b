package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solushipx/logisynapse/services/shipment-service/store"
	"github.com/solushipx/logisynapse/shared/contracts"
	"github.com/solushipx/logisynapse/shared/kafka"
)

// MockPublisher records published events.
type MockPublisher struct {
	Keys   []string
	Events []kafka.Event
	Err    error
}

func (m *MockPublisher) Publish(ctx context.Context, key string, value interface{}) error {
	if m.Err != nil {
		return m.Err
	}
	m.Keys = append(m.Keys, key)
	m.Events = append(m.Events, value.(kafka.Event))
	return nil
}

func (m *MockPublisher) Close() error { return nil }

func validDoc() contracts.ShipmentDocument {
	return contracts.ShipmentDocument{
		ShipmentID: "SHP-100",
		CompanyID:  "acme",
		ShipFrom:   &contracts.Address{City: "Dhaka"},
		ShipTo:     &contracts.Address{City: "Berlin"},
	}
}

func newTestService(pub kafka.Publisher) (*ShipmentService, *store.MemoryStore) {
	st := store.NewMemoryStore()
	svc := NewShipmentService(st, pub, nil)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc, st
}

func TestCreateShipment(t *testing.T) {
	pub := &MockPublisher{}
	svc, st := newTestService(pub)

	created, err := svc.CreateShipment(context.Background(), validDoc())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, contracts.StatusDraft, created.Status)
	require.NotNil(t, created.CreatedAt)
	assert.Equal(t, 2025, created.CreatedAt.Year())

	stored, err := st.GetShipment(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "SHP-100", stored.ShipmentID)

	require.Len(t, pub.Events, 1)
	assert.Equal(t, "shipment.created", pub.Events[0].Event)
	assert.Equal(t, created.ID, pub.Keys[0])
}

func TestCreateShipment_Validation(t *testing.T) {
	nested := validDoc()
	nested.ShipFrom, nested.ShipTo = nil, nil
	nested.ShipmentInfo = &contracts.ShipmentInfo{
		ShipFrom: &contracts.Address{City: "Dhaka"},
		ShipTo:   &contracts.Address{City: "Berlin"},
	}

	tests := []struct {
		name    string
		mutate  func(*contracts.ShipmentDocument)
		wantErr bool
	}{
		{"valid", func(d *contracts.ShipmentDocument) {}, false},
		{"nested addresses", func(d *contracts.ShipmentDocument) { *d = nested }, false},
		{"missing shipmentID", func(d *contracts.ShipmentDocument) { d.ShipmentID = "  " }, true},
		{"missing origin", func(d *contracts.ShipmentDocument) { d.ShipFrom = nil }, true},
		{"empty destination", func(d *contracts.ShipmentDocument) { d.ShipTo = &contracts.Address{} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(nil)
			d := validDoc()
			tt.mutate(&d)
			_, err := svc.CreateShipment(context.Background(), d)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidShipment)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateShipment_PublishFailureIsIgnored(t *testing.T) {
	svc, _ := newTestService(&MockPublisher{Err: errors.New("broker down")})
	_, err := svc.CreateShipment(context.Background(), validDoc())
	assert.NoError(t, err)
}

func TestUpdateShipment(t *testing.T) {
	pub := &MockPublisher{}
	svc, _ := newTestService(pub)
	ctx := context.Background()

	created, err := svc.CreateShipment(ctx, validDoc())
	require.NoError(t, err)

	total := 42.0
	updated, err := svc.UpdateShipment(ctx, contracts.ShipmentDocument{
		ID:             created.ID,
		TrackingNumber: "1Z999",
		TotalCharges:   &total,
	})
	require.NoError(t, err)
	assert.Equal(t, "1Z999", updated.TrackingNumber)
	assert.Equal(t, "SHP-100", updated.ShipmentID)
	assert.Equal(t, "Dhaka", updated.ShipFrom.City)
	require.NotNil(t, updated.TotalCharges)
	assert.Equal(t, 42.0, *updated.TotalCharges)

	require.Len(t, pub.Events, 2)
	assert.Equal(t, "shipment.updated", pub.Events[1].Event)
}

func TestUpdateShipment_Errors(t *testing.T) {
	svc, st := newTestService(nil)
	ctx := context.Background()

	_, err := svc.UpdateShipment(ctx, contracts.ShipmentDocument{})
	assert.ErrorIs(t, err, ErrInvalidShipment)

	_, err = svc.UpdateShipment(ctx, contracts.ShipmentDocument{ID: "missing"})
	assert.ErrorIs(t, err, store.ErrShipmentNotFound)

	booked := validDoc()
	booked.ID = "b1"
	booked.Status = contracts.StatusBooked
	_, err = st.CreateShipment(ctx, booked)
	require.NoError(t, err)

	_, err = svc.UpdateShipment(ctx, contracts.ShipmentDocument{ID: "b1", TrackingNumber: "X"})
	assert.ErrorIs(t, err, ErrNotEditable)
}

func TestImportShipments(t *testing.T) {
	svc, st := newTestService(nil)
	ctx := context.Background()

	keep := validDoc()
	keep.ID = "legacy-1"
	dup := validDoc()
	dup.ID = "legacy-1"
	bad := validDoc()
	bad.ShipmentID = ""

	res, err := svc.ImportShipments(ctx, []contracts.ShipmentDocument{keep, validDoc(), dup, bad})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 2, res.Skipped)
	assert.Len(t, res.Errors, 2)

	got, err := st.GetShipment(ctx, "legacy-1")
	require.NoError(t, err)
	assert.Equal(t, contracts.StatusDraft, got.Status)
}

func TestImportShipments_Cancelled(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.ImportShipments(ctx, []contracts.ShipmentDocument{validDoc()})
	assert.ErrorIs(t, err, context.Canceled)
}
