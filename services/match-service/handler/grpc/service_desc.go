package grpcServer

import (
	"context"

	"google.golang.org/grpc"

	"github.com/solushipx/logisynapse/services/match-service/matcher"
)

const (
	ManualSearchMethod   = "/match.v1.MatchService/ManualSearch"
	RecentSearchesMethod = "/match.v1.MatchService/RecentSearches"
)

type RecentSearchesRequest struct {
	Limit int `json:"limit,omitempty"`
}

type RecentSearchesResponse struct {
	Terms []string `json:"terms"`
}

// MatchServiceServer is the server API for match.v1.MatchService. Requests
// and responses travel with the grpcjson codec.
type MatchServiceServer interface {
	ManualSearch(context.Context, *matcher.SearchRequest) (*matcher.SearchResponse, error)
	RecentSearches(context.Context, *RecentSearchesRequest) (*RecentSearchesResponse, error)
}

func RegisterMatchServiceServer(s grpc.ServiceRegistrar, srv MatchServiceServer) {
	s.RegisterService(&MatchService_ServiceDesc, srv)
}

func _MatchService_ManualSearch_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(matcher.SearchRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MatchServiceServer).ManualSearch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ManualSearchMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MatchServiceServer).ManualSearch(ctx, req.(*matcher.SearchRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _MatchService_RecentSearches_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(RecentSearchesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MatchServiceServer).RecentSearches(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: RecentSearchesMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MatchServiceServer).RecentSearches(ctx, req.(*RecentSearchesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// MatchService_ServiceDesc is the grpc.ServiceDesc for match.v1.MatchService.
var MatchService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "match.v1.MatchService",
	HandlerType: (*MatchServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ManualSearch", Handler: _MatchService_ManualSearch_Handler},
		{MethodName: "RecentSearches", Handler: _MatchService_RecentSearches_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "match.proto",
}
