package graphql

import (
	"net/http"

	gql "github.com/graph-gophers/graphql-go"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"orderdesk/api"
	"orderdesk/core/auth"
	graphqlpkg "orderdesk/graphql"
	"orderdesk/graphqlserver"
)

func init() {
	api.RegisterRoute(RegisterGraphQLRoutes)
}

// RegisterGraphQLRoutes mounts /graphql on the root server. The route sits
// behind the tenant auth middleware; the resolved tenant is carried into the
// resolver layer via the request context.
func RegisterGraphQLRoutes(e *echo.Echo, db *gorm.DB) {
	schema, err := graphqlserver.NewSchema(db)
	if err != nil {
		panic("graphql schema: " + err.Error())
	}
	registerRoutes(e, schema)
}

// RegisterGraphQLRoutesWithSchema registers /graphql with a custom schema
// (tests).
func RegisterGraphQLRoutesWithSchema(e *echo.Echo, schema *gql.Schema) {
	registerRoutes(e, schema)
}

func registerRoutes(e *echo.Echo, schema *gql.Schema) {
	h := graphqlserver.Handler(schema)
	handler := func(c echo.Context) error {
		t := auth.TenantFromContext(c)
		if t == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}
		ctx := graphqlpkg.WithTenantID(c.Request().Context(), t.ID)
		h.ServeHTTP(c.Response(), c.Request().WithContext(ctx))
		return nil
	}
	e.POST("/graphql", handler)
	e.GET("/graphql", handler)
}
