// client/match.client.go
package client

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	grpcServer "github.com/solushipx/logisynapse/services/match-service/handler/grpc"
	"github.com/solushipx/logisynapse/services/match-service/matcher"
	"github.com/solushipx/logisynapse/shared/grpcjson"
	"github.com/solushipx/logisynapse/shared/identity"
)

// ErrUnauthenticated is returned when the match service rejects or requires credentials.
var ErrUnauthenticated = errors.New("match service: authentication required")

// handleGRPCError turns gRPC status errors into messages fit for operators.
func handleGRPCError(err error, serviceName string) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", ErrUnauthenticated, st.Message())
	case codes.Unavailable:
		return fmt.Errorf("%s service is unavailable", serviceName)
	case codes.DeadlineExceeded:
		return fmt.Errorf("%s service timed out", serviceName)
	default:
		return fmt.Errorf("gRPC error from %s service: %s", serviceName, st.Message())
	}
}

// apiKey attaches "Authorization: ApiKey <credential>" to every call.
type apiKey string

func (k apiKey) GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error) {
	return map[string]string{"authorization": identity.AuthScheme + " " + string(k)}, nil
}

func (k apiKey) RequireTransportSecurity() bool { return false }

// MatchClient connects to the match service via gRPC.
type MatchClient struct {
	conn *grpc.ClientConn
}

// NewMatchClient creates a client for addr. credential is "<keyID>.<secret>";
// empty sends no credentials. Extra dial options are appended.
func NewMatchClient(addr, credential string, opts ...grpc.DialOption) (*MatchClient, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(grpcjson.Name)),
	}
	if credential != "" {
		dialOpts = append(dialOpts, grpc.WithPerRPCCredentials(apiKey(credential)))
	}
	conn, err := grpc.NewClient(addr, append(dialOpts, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to match service: %w", err)
	}
	return &MatchClient{conn: conn}, nil
}

// Close shuts down the gRPC connection gracefully.
func (c *MatchClient) Close() error {
	return c.conn.Close()
}

// ManualSearch runs a manual search as the caller behind the client's credential.
func (c *MatchClient) ManualSearch(ctx context.Context, term string) (*matcher.SearchResponse, error) {
	out := new(matcher.SearchResponse)
	if err := c.conn.Invoke(ctx, grpcServer.ManualSearchMethod, &matcher.SearchRequest{SearchTerm: term}, out); err != nil {
		return nil, handleGRPCError(err, "match")
	}
	return out, nil
}

// RecentSearches returns the caller's most recent terms, newest first.
func (c *MatchClient) RecentSearches(ctx context.Context, limit int) ([]string, error) {
	out := new(grpcServer.RecentSearchesResponse)
	if err := c.conn.Invoke(ctx, grpcServer.RecentSearchesMethod, &grpcServer.RecentSearchesRequest{Limit: limit}, out); err != nil {
		return nil, handleGRPCError(err, "match")
	}
	return out.Terms, nil
}
