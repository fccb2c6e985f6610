package domain

import "context"

type contextKey string

const shopDomainKey contextKey = "shop_domain"

// WithShopDomain stores the verified shop domain in the context
func WithShopDomain(ctx context.Context, shop string) context.Context {
	return context.WithValue(ctx, shopDomainKey, shop)
}

// GetShopDomainFromContext returns the verified shop domain, or "" when absent
func GetShopDomainFromContext(ctx context.Context) string {
	if shop, ok := ctx.Value(shopDomainKey).(string); ok {
		return shop
	}
	return ""
}
