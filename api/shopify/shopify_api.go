package shopify

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"orderdesk/api"
	"orderdesk/core/auth"
	entity "orderdesk/model/entity"
	storeRepo "orderdesk/model/repository/store"
	orderService "orderdesk/service/order"
	shopifyService "orderdesk/service/shopify"
)

func init() {
	api.RegisterModule(RegisterShopifyRoutes)
}

func RegisterShopifyRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/shopify")
	stores := storeRepo.NewStoreRepository(db)
	client := shopifyService.NewClient()
	sync := shopifyService.NewSyncService(db, client)

	// POST /api/shopify/test – verify credentials without storing them
	g.POST("/test", func(c echo.Context) error {
		t := auth.TenantFromContext(c)
		if t == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}
		var body struct {
			ShopName    string `json:"shop_name"`
			AccessToken string `json:"access_token"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if strings.TrimSpace(body.ShopName) == "" || strings.TrimSpace(body.AccessToken) == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "shop_name and access_token are required"})
		}
		shop, err := client.FetchShopInfo(c.Request().Context(), body.ShopName, body.AccessToken)
		if err != nil {
			return c.JSON(http.StatusBadGateway, echo.Map{"success": false, "error": "connection failed"})
		}
		return c.JSON(http.StatusOK, echo.Map{"success": true, "shop": shop})
	})

	// GET /api/shopify/stores – the tenant's connected stores
	g.GET("/stores", func(c echo.Context) error {
		t := auth.TenantFromContext(c)
		if t == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}
		list, err := stores.FindByTenant(t.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load stores"})
		}
		return c.JSON(http.StatusOK, list)
	})

	// POST /api/shopify/stores – connect a store (credentials verified first)
	g.POST("/stores", func(c echo.Context) error {
		t := auth.TenantFromContext(c)
		if t == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}
		var body struct {
			ShopName    string `json:"shop_name"`
			APIKey      string `json:"api_key"`
			AccessToken string `json:"access_token"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		shopName := shopifyService.CleanShopName(body.ShopName)
		if shopName == "" || strings.TrimSpace(body.AccessToken) == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "shop_name and access_token are required"})
		}

		existing, err := stores.FindByTenant(t.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load stores"})
		}
		for _, s := range existing {
			if shopifyService.CleanShopName(s.ShopName) == shopName {
				return c.JSON(http.StatusConflict, echo.Map{"error": "store already connected"})
			}
		}

		if _, err := client.FetchShopInfo(c.Request().Context(), shopName, body.AccessToken); err != nil {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "shopify connection failed"})
		}

		store := entity.ShopifyStore{
			TenantID:    t.ID,
			ShopName:    shopName,
			APIKey:      body.APIKey,
			AccessToken: body.AccessToken,
			IsActive:    true,
		}
		if err := stores.Create(&store); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not connect store"})
		}
		return c.JSON(http.StatusCreated, store)
	})

	// DELETE /api/shopify/stores/:id – disconnect a store
	g.DELETE("/stores/:id", func(c echo.Context) error {
		t := auth.TenantFromContext(c)
		if t == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid store id"})
		}
		deleted, err := stores.Delete(uint(id), t.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not disconnect store"})
		}
		if !deleted {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
		}
		return c.JSON(http.StatusOK, echo.Map{"deleted": true})
	})

	// POST /api/shopify/stores/:id/sync – run one sync pass now
	g.POST("/stores/:id/sync", func(c echo.Context) error {
		t := auth.TenantFromContext(c)
		if t == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid store id"})
		}
		res, err := sync.SyncStore(c.Request().Context(), uint(id), t.ID)
		if err != nil {
			return writeSyncError(c, err)
		}
		return c.JSON(http.StatusOK, res)
	})

	// GET /api/shopify/stores/:id/stats – local vs remote counts
	g.GET("/stores/:id/stats", func(c echo.Context) error {
		t := auth.TenantFromContext(c)
		if t == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid store id"})
		}
		stats, err := sync.GetSyncStats(c.Request().Context(), uint(id), t.ID)
		if err != nil {
			return writeSyncError(c, err)
		}
		return c.JSON(http.StatusOK, stats)
	})
}

func writeSyncError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, orderService.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
	case errors.Is(err, orderService.ErrExternal):
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "shopify unavailable"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
