package grpcServer

import (
	"context"

	"google.golang.org/grpc"

	"github.com/solushipx/logisynapse/shared/contracts"
)

// Messages travel with the grpcjson codec, so they are plain structs.

type CreateShipmentRequest struct {
	Shipment contracts.ShipmentDocument `json:"shipment"`
}

type CreateShipmentResponse struct {
	Shipment contracts.ShipmentDocument `json:"shipment"`
}

type GetShipmentRequest struct {
	ID string `json:"id"`
}

type GetShipmentResponse struct {
	Shipment contracts.ShipmentDocument `json:"shipment"`
}

type GetShipmentsRequest struct {
	Status string `json:"status,omitempty"`
	Limit  int32  `json:"limit,omitempty"`
	Offset int32  `json:"offset,omitempty"`
}

type GetShipmentsResponse struct {
	Shipments []contracts.ShipmentDocument `json:"shipments"`
}

// ShipmentServiceServer is the server API for shipment.v1.ShipmentService.
type ShipmentServiceServer interface {
	CreateShipment(context.Context, *CreateShipmentRequest) (*CreateShipmentResponse, error)
	GetShipment(context.Context, *GetShipmentRequest) (*GetShipmentResponse, error)
	GetShipments(context.Context, *GetShipmentsRequest) (*GetShipmentsResponse, error)
}

func RegisterShipmentServiceServer(s grpc.ServiceRegistrar, srv ShipmentServiceServer) {
	s.RegisterService(&ShipmentService_ServiceDesc, srv)
}

func _ShipmentService_CreateShipment_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CreateShipmentRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ShipmentServiceServer).CreateShipment(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/shipment.v1.ShipmentService/CreateShipment",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ShipmentServiceServer).CreateShipment(ctx, req.(*CreateShipmentRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ShipmentService_GetShipment_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetShipmentRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ShipmentServiceServer).GetShipment(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/shipment.v1.ShipmentService/GetShipment",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ShipmentServiceServer).GetShipment(ctx, req.(*GetShipmentRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ShipmentService_GetShipments_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetShipmentsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ShipmentServiceServer).GetShipments(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/shipment.v1.ShipmentService/GetShipments",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ShipmentServiceServer).GetShipments(ctx, req.(*GetShipmentsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ShipmentService_ServiceDesc is the grpc.ServiceDesc for shipment.v1.ShipmentService.
var ShipmentService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "shipment.v1.ShipmentService",
	HandlerType: (*ShipmentServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateShipment", Handler: _ShipmentService_CreateShipment_Handler},
		{MethodName: "GetShipment", Handler: _ShipmentService_GetShipment_Handler},
		{MethodName: "GetShipments", Handler: _ShipmentService_GetShipments_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shipment.proto",
}
