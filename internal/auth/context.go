// Package auth carries the signed-in owner through a request.
package auth

import (
	"context"

	"github.com/dukerupert/menuboard/internal/ordering"
)

type ownerKey struct{}

// AuthContext is set by middleware.RequireAuth. Every owner manages exactly
// one business, so BusinessID scopes all owner queries.
type AuthContext struct {
	UserID     int64
	BusinessID int64
	SessionID  int64
}

// Actor is the identity menu reorders are authorized against.
func (ac AuthContext) Actor() ordering.Actor {
	return ordering.Actor{UserID: ac.UserID}
}

func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, ownerKey{}, ac)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(ownerKey{}).(AuthContext)
	return ac, ok
}

// BusinessID is 0 outside an authenticated request, which matches no row.
func BusinessID(ctx context.Context) int64 {
	ac, _ := FromContext(ctx)
	return ac.BusinessID
}

