package auth

import "context"

type contextKey struct{}

// Principal identifies the authenticated user for a single request. Core
// operations take it explicitly so authorization is testable without a
// simulated session.
type Principal struct {
	UserID   int64
	FamilyID string
	Role     string
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}

func UserID(ctx context.Context) int64 {
	p, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return p.UserID
}

func FamilyID(ctx context.Context) string {
	p, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return p.FamilyID
}

func IsParent(ctx context.Context) bool {
	p, ok := FromContext(ctx)
	if !ok {
		return false
	}
	return p.Role == "parent"
}
