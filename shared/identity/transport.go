package identity

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// AuthScheme is the Authorization header scheme for API keys.
const AuthScheme = "ApiKey"

// credentialFrom extracts the credential from an "ApiKey <keyID>.<secret>" header value.
// An empty header yields ("", nil); anything else that does not fit is malformed.
func credentialFrom(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", nil
	}
	scheme, cred, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, AuthScheme) || strings.TrimSpace(cred) == "" {
		return "", ErrMalformedToken
	}
	return strings.TrimSpace(cred), nil
}

// UnaryServerInterceptor attaches the verified caller to the context.
// Requests without credentials pass through with no identity, so the handler
// decides whether it needs one; bad credentials are rejected here.
func UnaryServerInterceptor(v Verifier, logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		var header string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get("authorization"); len(vals) > 0 {
				header = vals[0]
			}
		}
		cred, err := credentialFrom(header)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		if cred != "" {
			id, err := v.Verify(ctx, cred)
			if err != nil {
				logger.Info("rejected credentials", zap.String("method", info.FullMethod), zap.Error(err))
				return nil, status.Error(codes.Unauthenticated, ErrInvalidCredentials.Error())
			}
			ctx = WithIdentity(ctx, id)
		}
		return handler(ctx, req)
	}
}

// Middleware is the HTTP counterpart of UnaryServerInterceptor.
func Middleware(v Verifier, logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cred, err := credentialFrom(r.Header.Get("Authorization"))
		if err != nil {
			WriteUnauthorized(w, err)
			return
		}
		if cred != "" {
			id, err := v.Verify(r.Context(), cred)
			if err != nil {
				logger.Info("rejected credentials", zap.String("path", r.URL.Path), zap.Error(err))
				WriteUnauthorized(w, ErrInvalidCredentials)
				return
			}
			r = r.WithContext(WithIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// WriteUnauthorized writes the 401 body every HTTP endpoint uses.
func WriteUnauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// MapError translates identity errors into gRPC status errors. Anything not
// recognised becomes Internal so internals never leak to the caller.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if stdErrors.Is(err, ErrUnauthenticated) {
		return status.Error(codes.Unauthenticated, ErrUnauthenticated.Error())
	}
	if stdErrors.Is(err, ErrInvalidCredentials) || stdErrors.Is(err, ErrMalformedToken) {
		return status.Error(codes.Unauthenticated, ErrInvalidCredentials.Error())
	}
	return status.Error(codes.Internal, "internal error")
}
