package client

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	grpcServer "github.com/solushipx/logisynapse/services/match-service/handler/grpc"
	"github.com/solushipx/logisynapse/services/match-service/matcher"
	"github.com/solushipx/logisynapse/services/shipment-service/store"
	"github.com/solushipx/logisynapse/shared/contracts"
	"github.com/solushipx/logisynapse/shared/identity"
)

var cheapParams = &identity.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

// startServer runs the match service on an in-memory listener and returns a
// dialer for it.
func startServer(t *testing.T) grpc.DialOption {
	t.Helper()
	hash, err := identity.HashSecret("s3cret", cheapParams)
	require.NoError(t, err)
	verifier, err := identity.NewKeyVerifier([]identity.APIKey{{ID: "ops", UserID: uuid.New(), CompanyID: "acme", Role: identity.RoleOperator, Hash: hash}})
	require.NoError(t, err)

	st := store.NewMemoryStore()
	_, err = st.CreateShipment(context.Background(), contracts.ShipmentDocument{ID: "doc-1", ShipmentID: "SHP-001", Carrier: "UPS"})
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer(grpc.UnaryInterceptor(identity.UnaryServerInterceptor(verifier, zap.NewNop())))
	grpcServer.RegisterMatchServiceServer(s, grpcServer.NewMatchServer(matcher.New(st, matcher.Options{}, nil, nil, nil), nil))
	go s.Serve(lis)
	t.Cleanup(s.Stop)

	return grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	})
}

func TestMatchClient_ManualSearch(t *testing.T) {
	dialer := startServer(t)
	c, err := NewMatchClient("passthrough:///bufnet", "ops.s3cret", dialer)
	require.NoError(t, err)
	defer c.Close()

	resp, err := c.ManualSearch(context.Background(), "shp-0o1")
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "doc-1", resp.Matches[0].Shipment.ID)
	assert.Equal(t, "UPS", resp.Matches[0].Shipment.SelectedCarrier)
	assert.Equal(t, 0.7, resp.Matches[0].Confidence)

	resp, err = c.ManualSearch(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "searchTerm is required", resp.Message)

	terms, err := c.RecentSearches(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, terms)
}

func TestMatchClient_Unauthenticated(t *testing.T) {
	dialer := startServer(t)

	for _, cred := range []string{"", "ops.wrong"} {
		c, err := NewMatchClient("passthrough:///bufnet", cred, dialer)
		require.NoError(t, err)

		_, err = c.ManualSearch(context.Background(), "SHP-001")
		assert.True(t, errors.Is(err, ErrUnauthenticated), "credential %q: got %v", cred, err)
		c.Close()
	}
}

func TestHandleGRPCError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{status.Error(codes.Unavailable, "down"), "match service is unavailable"},
		{status.Error(codes.DeadlineExceeded, "slow"), "match service timed out"},
		{status.Error(codes.Internal, "boom"), "gRPC error from match service: boom"},
		{errors.New("plain"), "plain"},
	}
	for _, tt := range tests {
		assert.EqualError(t, handleGRPCError(tt.err, "match"), tt.want)
	}
}
