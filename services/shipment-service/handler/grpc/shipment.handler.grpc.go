package grpcServer

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/solushipx/logisynapse/services/shipment-service/service"
	"github.com/solushipx/logisynapse/services/shipment-service/store"
	"github.com/solushipx/logisynapse/shared/identity"
)

// ShipmentServer implements ShipmentServiceServer on top of the business logic.
// Every call is scoped to the caller's company.
type ShipmentServer struct {
	service *service.ShipmentService
	logger  *zap.Logger
}

func NewShipmentServer(svc *service.ShipmentService, logger *zap.Logger) *ShipmentServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShipmentServer{service: svc, logger: logger}
}

func (s *ShipmentServer) CreateShipment(ctx context.Context, req *CreateShipmentRequest) (*CreateShipmentResponse, error) {
	caller := identity.FromContext(ctx)
	if caller == nil {
		return nil, identity.MapError(identity.ErrUnauthenticated)
	}
	doc := req.Shipment
	doc.CompanyID = caller.CompanyID

	created, err := s.service.CreateShipment(ctx, doc)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &CreateShipmentResponse{Shipment: created}, nil
}

func (s *ShipmentServer) GetShipment(ctx context.Context, req *GetShipmentRequest) (*GetShipmentResponse, error) {
	caller := identity.FromContext(ctx)
	if caller == nil {
		return nil, identity.MapError(identity.ErrUnauthenticated)
	}
	doc, err := s.service.GetShipment(ctx, req.ID)
	if err != nil {
		return nil, s.mapError(err)
	}
	// other companies' shipments look missing
	if doc.CompanyID != caller.CompanyID {
		return nil, s.mapError(store.ErrShipmentNotFound)
	}
	return &GetShipmentResponse{Shipment: doc}, nil
}

func (s *ShipmentServer) GetShipments(ctx context.Context, req *GetShipmentsRequest) (*GetShipmentsResponse, error) {
	caller := identity.FromContext(ctx)
	if caller == nil {
		return nil, identity.MapError(identity.ErrUnauthenticated)
	}
	if req.Limit < 0 || req.Offset < 0 {
		return nil, status.Error(codes.InvalidArgument, "limit and offset must not be negative")
	}
	docs, err := s.service.GetShipments(ctx, store.ListFilter{
		CompanyID: caller.CompanyID,
		Status:    req.Status,
		Limit:     req.Limit,
		Offset:    req.Offset,
	})
	if err != nil {
		return nil, s.mapError(err)
	}
	return &GetShipmentsResponse{Shipments: docs}, nil
}

// mapError converts service errors into gRPC status codes.
func (s *ShipmentServer) mapError(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidShipment):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrNotEditable):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, store.ErrShipmentNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, store.ErrShipmentExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		s.logger.Error("shipment request failed", zap.Error(err))
		return status.Error(codes.Internal, "internal error")
	}
}
