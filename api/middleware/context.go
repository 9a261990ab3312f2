package middleware

import "context"

// Identity is the authenticated caller attached by Auth.
type Identity struct {
	UserID string
	Role   string
}

type identityKey struct{}

// IdentityFromContext returns the caller and whether Auth ran.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

func UserIDFromContext(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.UserID
}

func RoleFromContext(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.Role
}

// WithIdentity attaches the caller to ctx.
func WithIdentity(ctx context.Context, userID, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, identityKey{}, Identity{UserID: userID, Role: role})
}
