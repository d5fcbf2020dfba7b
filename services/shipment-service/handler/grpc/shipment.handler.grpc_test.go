package grpcServer

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/solushipx/logisynapse/services/shipment-service/service"
	"github.com/solushipx/logisynapse/services/shipment-service/store"
	"github.com/solushipx/logisynapse/shared/contracts"
	"github.com/solushipx/logisynapse/shared/identity"
)

func callerCtx(company string) context.Context {
	return identity.WithIdentity(context.Background(), &identity.Identity{
		UserID:    uuid.New(),
		CompanyID: company,
		Role:      identity.RoleMember,
	})
}

func newTestServer() *ShipmentServer {
	return NewShipmentServer(service.NewShipmentService(store.NewMemoryStore(), nil, nil), nil)
}

func TestShipmentServer_CreateAndGet(t *testing.T) {
	srv := newTestServer()
	ctx := callerCtx("acme")

	created, err := srv.CreateShipment(ctx, &CreateShipmentRequest{Shipment: contracts.ShipmentDocument{
		ShipmentID: "SHP-1",
		CompanyID:  "someone-else",
		ShipFrom:   &contracts.Address{City: "Dhaka"},
		ShipTo:     &contracts.Address{City: "Berlin"},
	}})
	require.NoError(t, err)
	assert.Equal(t, "acme", created.Shipment.CompanyID)

	got, err := srv.GetShipment(ctx, &GetShipmentRequest{ID: created.Shipment.ID})
	require.NoError(t, err)
	assert.Equal(t, "SHP-1", got.Shipment.ShipmentID)

	_, err = srv.GetShipment(callerCtx("globex"), &GetShipmentRequest{ID: created.Shipment.ID})
	assert.Equal(t, codes.NotFound, status.Code(err))

	list, err := srv.GetShipments(ctx, &GetShipmentsRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Shipments, 1)

	list, err = srv.GetShipments(callerCtx("globex"), &GetShipmentsRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Shipments)
}

func TestShipmentServer_ErrorCodes(t *testing.T) {
	srv := newTestServer()

	_, err := srv.GetShipments(context.Background(), &GetShipmentsRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = srv.CreateShipment(callerCtx("acme"), &CreateShipmentRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = srv.GetShipment(callerCtx("acme"), &GetShipmentRequest{ID: "missing"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	for _, req := range []*GetShipmentsRequest{{Offset: -1}, {Limit: -1}} {
		_, err = srv.GetShipments(callerCtx("acme"), req)
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	}
}
