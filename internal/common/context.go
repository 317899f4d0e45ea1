package common

import "context"

type contextKey string

const (
	// TenantSlugKey carries the slug resolved from the request host.
	TenantSlugKey contextKey = "tenant_slug"
	// TenantSchemaKey carries the schema name the request is bound to.
	TenantSchemaKey contextKey = "tenant_schema"
)

// WithTenant returns a child context carrying the resolved tenant slug
// and schema name. The binding lives only for the request that created
// it; it is never stored process-wide.
func WithTenant(ctx context.Context, slug, schemaName string) context.Context {
	ctx = context.WithValue(ctx, TenantSlugKey, slug)
	return context.WithValue(ctx, TenantSchemaKey, schemaName)
}

// TenantSchemaFromContext returns the schema name the request resolved
// to, or false when the request is addressed to the shared surface.
func TenantSchemaFromContext(ctx context.Context) (string, bool) {
	schema, ok := ctx.Value(TenantSchemaKey).(string)
	return schema, ok
}

// TenantSlugFromContext returns the slug the request resolved to.
func TenantSlugFromContext(ctx context.Context) (string, bool) {
	slug, ok := ctx.Value(TenantSlugKey).(string)
	return slug, ok
}
