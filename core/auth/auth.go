package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"orderdesk/config"
	"orderdesk/core/log"
	entity "orderdesk/model/entity"
	tenantRepo "orderdesk/model/repository/tenant"
)

const tenantContextKey = "auth:tenant"

// Middleware resolves the calling tenant from the X-Api-Token header
// against the tenants table and stores it on the request context.
func Middleware(db *gorm.DB) echo.MiddlewareFunc {
	repo := tenantRepo.NewTenantRepository(db)
	skipper := buildSkipper()
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup: "header:X-Api-Token",
		Validator: func(key string, c echo.Context) (bool, error) {
			t, err := repo.FindByToken(key)
			if err != nil {
				return false, err
			}
			if t == nil {
				return false, nil
			}
			c.Set(tenantContextKey, t)
			return true, nil
		},
		Skipper: skipper,
	})
}

func buildSkipper() middleware.Skipper {
	skipPaths := config.GetAuthSkipperPaths()
	return func(c echo.Context) bool {
		path := c.Path()
		for _, skip := range skipPaths {
			if path == skip {
				return true
			}
		}
		return false
	}
}

// TenantFromContext returns the authenticated tenant, nil on skipped paths.
func TenantFromContext(c echo.Context) *entity.Tenant {
	if t, ok := c.Get(tenantContextKey).(*entity.Tenant); ok {
		return t
	}
	return nil
}

// SetTenantForTesting injects a tenant into the request context (tests).
func SetTenantForTesting(c echo.Context, t *entity.Tenant) {
	c.Set(tenantContextKey, t)
}

// RequireOrderQuota gates order creation behind the entitlement check: a
// valid license or remaining trial quota. The Order Writer itself never
// re-checks, so this middleware belongs on the creation route only.
func RequireOrderQuota(db *gorm.DB) echo.MiddlewareFunc {
	repo := tenantRepo.NewTenantRepository(db)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			t := TenantFromContext(c)
			if t == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}
			ok, err := repo.CanCreateOrder(t.ID)
			if err != nil {
				log.L().Errorw("entitlement check failed", "tenant_id", t.ID, "error", err)
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "entitlement check failed"})
			}
			if !ok {
				return c.JSON(http.StatusForbidden, echo.Map{
					"error": "order limit reached",
					"code":  "TRIAL_EXPIRED",
				})
			}
			return next(c)
		}
	}
}
