package shared

import "context"

type companyContextKey struct{}

// ContextWithCompany stores the resolved tenant company id in context.
func ContextWithCompany(ctx context.Context, companyID int64) context.Context {
	return context.WithValue(ctx, companyContextKey{}, companyID)
}

// CompanyFromContext extracts the tenant company id. The second return is
// false when no tenant was resolved for the request.
func CompanyFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(companyContextKey{}).(int64)
	return id, ok
}
