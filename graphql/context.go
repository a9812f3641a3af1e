package graphql

import "context"

type ctxKey int

const tenantIDKey ctxKey = iota

// WithTenantID attaches the authenticated tenant id to the request context.
func WithTenantID(ctx context.Context, tenantID uint) context.Context {
	return context.WithValue(ctx, tenantIDKey, tenantID)
}

// TenantIDFromContext returns the tenant id set by the HTTP layer.
func TenantIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(tenantIDKey).(uint)
	return id, ok
}
