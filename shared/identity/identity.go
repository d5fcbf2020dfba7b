// Package identity carries the authenticated caller through a request.
//
// Users and roles are managed by the platform identity service; this package
// only verifies the credential a request presents and hands the resulting
// Identity to handlers explicitly.
package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrUnauthenticated means the operation needs a caller and none was supplied.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrInvalidCredentials covers unknown key IDs and wrong secrets alike so
	// callers cannot probe which key IDs exist.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrMalformedToken is returned for credentials that do not parse at all.
	ErrMalformedToken = errors.New("malformed credentials")
)

// Role names as issued by the identity service.
const (
	RoleAdmin    = "admin"
	RoleMember   = "member"
	RoleOperator = "operator"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID    uuid.UUID `json:"userID"`
	CompanyID string    `json:"companyID,omitempty"`
	Role      string    `json:"role,omitempty"`
}

type ctxKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the caller stored by WithIdentity, or nil.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(ctxKey{}).(*Identity)
	return id
}
