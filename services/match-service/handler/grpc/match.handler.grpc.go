package grpcServer

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/solushipx/logisynapse/services/match-service/matcher"
	"github.com/solushipx/logisynapse/shared/identity"
)

// MatchServer exposes the matcher over gRPC. The caller identity is put on
// the context by identity.UnaryServerInterceptor.
type MatchServer struct {
	matcher *matcher.Matcher
	logger  *zap.Logger
}

func NewMatchServer(m *matcher.Matcher, logger *zap.Logger) *MatchServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchServer{matcher: m, logger: logger}
}

// ManualSearch returns codes.Unauthenticated without a caller; validation
// and lookup failures come back as success:false responses.
func (s *MatchServer) ManualSearch(ctx context.Context, req *matcher.SearchRequest) (*matcher.SearchResponse, error) {
	resp, err := s.matcher.ManualSearch(ctx, identity.FromContext(ctx), *req)
	if err != nil {
		return nil, identity.MapError(err)
	}
	return resp, nil
}

func (s *MatchServer) RecentSearches(ctx context.Context, req *RecentSearchesRequest) (*RecentSearchesResponse, error) {
	terms, err := s.matcher.RecentSearches(ctx, identity.FromContext(ctx), req.Limit)
	if err != nil {
		if !errors.Is(err, identity.ErrUnauthenticated) {
			s.logger.Error("recent searches failed", zap.Error(err))
		}
		return nil, identity.MapError(err)
	}
	return &RecentSearchesResponse{Terms: terms}, nil
}
