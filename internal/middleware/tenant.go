package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/theoribbi/tenantly/internal/caching"
	"github.com/theoribbi/tenantly/internal/common"
	"github.com/theoribbi/tenantly/internal/repositories"
)

// localMarker flags development hosts that have no public root domain,
// so one fewer segment is needed before the leading one counts as a
// subdomain.
const localMarker = "localhost"

// reservedSubdomains route to the shared/admin surface instead of a
// tenant.
var reservedSubdomains = map[string]bool{
	"www":   true,
	"api":   true,
	"admin": true,
}

// TenantResolver maps a request's host header to a tenant schema and
// attaches the binding to the request context. An unrecognized
// subdomain fails the request; it never falls through to the shared
// surface.
type TenantResolver struct {
	companyRepo repositories.CompanyRepository
	cache       caching.TenantCache
}

func NewTenantResolver(companyRepo repositories.CompanyRepository, cache caching.TenantCache) *TenantResolver {
	return &TenantResolver{companyRepo: companyRepo, cache: cache}
}

// ExtractSubdomain returns the candidate tenant slug in host, or false
// when the request addresses the shared surface.
//
//	acme.localhost:3000 -> "acme"
//	localhost:3000      -> none
//	acme.example.com    -> "acme"
//	example.com         -> none
//	www.example.com     -> none (reserved)
func ExtractSubdomain(host string) (string, bool) {
	parts := strings.Split(host, ".")

	minParts := 3
	if strings.Contains(host, localMarker) {
		minParts = 2
	}
	if len(parts) < minParts {
		return "", false
	}

	subdomain := strings.ToLower(parts[0])
	if subdomain == "" || reservedSubdomains[subdomain] {
		return "", false
	}
	return subdomain, true
}

// Resolve is the echo middleware. No-tenant requests pass through
// untouched; resolved requests carry the slug and schema name in their
// context for the rest of the request only.
func (r *TenantResolver) Resolve() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			slug, ok := ExtractSubdomain(c.Request().Host)
			if !ok {
				return next(c)
			}

			ctx := c.Request().Context()

			schemaName, hit := r.cache.GetSchemaName(ctx, slug)
			if !hit {
				company, err := r.companyRepo.GetBySlug(ctx, slug)
				if err != nil {
					logrus.WithError(err).WithField("slug", slug).Error("tenant lookup failed")
					return common.SendServerError(c, "Internal error")
				}
				if company == nil {
					return common.SendDomainError(c, &common.TenantNotFoundError{Slug: slug})
				}
				schemaName = company.SchemaName
				r.cache.SetSchemaName(ctx, slug, schemaName)
			}

			c.SetRequest(c.Request().WithContext(common.WithTenant(ctx, slug, schemaName)))
			return next(c)
		}
	}
}
