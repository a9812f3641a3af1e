package order

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"orderdesk/api"
	"orderdesk/core/auth"
	entity "orderdesk/model/entity"
	orderRepo "orderdesk/model/repository/order"
	orderService "orderdesk/service/order"
	searchService "orderdesk/service/search"
)

func init() {
	api.RegisterModule(RegisterOrderRoutes)
}

func RegisterOrderRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/orders")
	repo := orderRepo.NewOrderRepository(db)

	// GET /api/orders – the tenant's orders, newest first
	g.GET("", func(c echo.Context) error {
		t := auth.TenantFromContext(c)
		if t == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}
		list, err := repo.FindAll(&t.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load orders"})
		}
		return c.JSON(http.StatusOK, list)
	})

	// POST /api/orders – create one order (entitlement-gated)
	g.POST("", func(c echo.Context) error {
		t := auth.TenantFromContext(c)
		if t == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}

		var body struct {
			ClientName    string                   `json:"client_name"`
			ClientPhone   string                   `json:"client_phone"`
			ClientAddress string                   `json:"client_address"`
			Status        string                   `json:"status"`
			Notes         string                   `json:"notes"`
			Items         []orderService.ItemInput `json:"items"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}

		total := decimalSum(body.Items)
		res, err := orderService.Create(db, orderService.CreateInput{
			TenantID:      &t.ID,
			ClientName:    body.ClientName,
			ClientPhone:   body.ClientPhone,
			ClientAddress: body.ClientAddress,
			Status:        body.Status,
			TotalAmount:   total,
			Notes:         body.Notes,
			Source:        entity.SourceManual,
			Items:         body.Items,
		})
		if err != nil {
			return writeServiceError(c, err)
		}

		searchService.GetService().IndexOrder(c.Request().Context(), res.Order)
		return c.JSON(http.StatusCreated, res)
	}, auth.RequireOrderQuota(db))

	// GET /api/orders/stats – numbering overview for the tenant
	g.GET("/stats", func(c echo.Context) error {
		t := auth.TenantFromContext(c)
		if t == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}
		stats, err := repo.GetNumberingStats(t.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load stats"})
		}
		return c.JSON(http.StatusOK, stats)
	})

	// GET /api/orders/search?q=... – full-text search when Elasticsearch is up
	g.GET("/search", func(c echo.Context) error {
		t := auth.TenantFromContext(c)
		if t == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}
		svc := searchService.GetService()
		if !svc.Enabled() {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "search is not configured"})
		}
		q := c.QueryParam("q")
		if q == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "q query parameter is required"})
		}
		size, _ := strconv.Atoi(c.QueryParam("size"))
		hits, err := svc.Search(c.Request().Context(), t.ID, q, size)
		if err != nil {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "search backend unavailable"})
		}
		return c.JSON(http.StatusOK, echo.Map{"hits": hits, "count": len(hits)})
	})

	// GET /api/orders/:id – one order; foreign tenants read 404
	g.GET("/:id", func(c echo.Context) error {
		t := auth.TenantFromContext(c)
		if t == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
		}
		o, err := repo.FindByID(uint(id), &t.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load order"})
		}
		if o == nil {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusOK, o)
	})

	// PATCH /api/orders/:id/status – dashboard lifecycle transition
	g.PATCH("/:id/status", func(c echo.Context) error {
		t := auth.TenantFromContext(c)
		if t == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
		}
		var body struct {
			Status string `json:"status"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.Status == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "status is required"})
		}
		o, err := repo.UpdateStatus(uint(id), &t.ID, body.Status)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update order"})
		}
		if o == nil {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		searchService.GetService().IndexOrder(c.Request().Context(), o)
		return c.JSON(http.StatusOK, o)
	})
}

// decimalSum derives the order total from its line items.
func decimalSum(items []orderService.ItemInput) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
func writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, orderService.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, orderService.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, orderService.ErrExternal):
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "external platform error"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
