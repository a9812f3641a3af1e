package product

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"orderdesk/api"
	"orderdesk/core/auth"
	entity "orderdesk/model/entity"
	productRepo "orderdesk/model/repository/product"
)

func init() {
	api.RegisterModule(RegisterProductRoutes)
}

type productBody struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"image_url"`
}

func RegisterProductRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/products")
	repo := productRepo.NewProductRepository(db)

	// GET /api/products – the tenant's catalog
	g.GET("", func(c echo.Context) error {
		t := auth.TenantFromContext(c)
		if t == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}
		list, err := repo.FindAll(t.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load products"})
		}
		return c.JSON(http.StatusOK, list)
	})

	// GET /api/products/:id
	g.GET("/:id", func(c echo.Context) error {
		t := auth.TenantFromContext(c)
		if t == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
		}
		p, err := repo.FindByID(uint(id), t.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load product"})
		}
		if p == nil {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusOK, p)
	})

	// POST /api/products
	g.POST("", func(c echo.Context) error {
		t := auth.TenantFromContext(c)
		if t == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}
		var body productBody
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if strings.TrimSpace(body.Name) == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
		}
		p := entity.Product{
			TenantID:    t.ID,
			Name:        body.Name,
			Description: body.Description,
			Price:       body.Price,
			Stock:       body.Stock,
			ImageURL:    body.ImageURL,
		}
		if err := repo.Create(&p); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create product"})
		}
		return c.JSON(http.StatusCreated, p)
	})

	// PUT /api/products/:id
	g.PUT("/:id", func(c echo.Context) error {
		t := auth.TenantFromContext(c)
		if t == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
		}
		var body productBody
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if strings.TrimSpace(body.Name) == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
		}
		p := entity.Product{
			ID:          uint(id),
			TenantID:    t.ID,
			Name:        body.Name,
			Description: body.Description,
			Price:       body.Price,
			Stock:       body.Stock,
			ImageURL:    body.ImageURL,
		}
		updated, err := repo.Update(&p)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update product"})
		}
		if !updated {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		fresh, err := repo.FindByID(uint(id), t.ID)
		if err != nil || fresh == nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load product"})
		}
		return c.JSON(http.StatusOK, fresh)
	})

	// DELETE /api/products/:id
	g.DELETE("/:id", func(c echo.Context) error {
		t := auth.TenantFromContext(c)
		if t == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
		}
		deleted, err := repo.Delete(uint(id), t.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete product"})
		}
		if !deleted {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusOK, echo.Map{"deleted": true})
	})
}
