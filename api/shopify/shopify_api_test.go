package shopify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"orderdesk/core/auth"
	entity "orderdesk/model/entity"
)

func testDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&entity.Tenant{}, &entity.Product{}, &entity.Order{}, &entity.OrderItem{}, &entity.ShopifyStore{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testServer(t *testing.T, db *gorm.DB, tn *entity.Tenant) *echo.Echo {
	t.Helper()
	e := echo.New()
	apiGroup := e.Group("/api")
	apiGroup.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth.SetTenantForTesting(c, tn)
			return next(c)
		}
	})
	RegisterShopifyRoutes(apiGroup, db)
	return e
}

func fakeShopify(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Shopify-Access-Token") != "shpat_good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/admin/api/2024-01/shop.json":
			json.NewEncoder(w).Encode(map[string]any{"shop": map[string]any{"name": "ma-boutique"}})
		case "/admin/api/2024-01/orders.json":
			json.NewEncoder(w).Encode(map[string]any{"orders": []any{
				map[string]any{"id": 42, "total_price": "12.00", "financial_status": "paid"},
			}})
		case "/admin/api/2024-01/orders/count.json":
			json.NewEncoder(w).Encode(map[string]any{"count": 1})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func seedTenant(t *testing.T, db *gorm.DB) *entity.Tenant {
	t.Helper()
	tn := &entity.Tenant{Email: "owner@example.com", APIToken: "tok-1", MaxOrders: 100}
	if err := db.Create(tn).Error; err != nil {
		t.Fatalf("seed tenant: %v", err)
	}
	return tn
}

func postJSON(e *echo.Echo, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestConnectStore(t *testing.T) {
	srv := fakeShopify(t)
	t.Setenv("SHOPIFY_API_BASE", srv.URL)

	db := testDB(t)
	tn := seedTenant(t, db)
	e := testServer(t, db, tn)

	rec := postJSON(e, "/api/shopify/stores", map[string]string{
		"shop_name":    "https://ma-boutique.myshopify.com",
		"access_token": "shpat_good",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var store entity.ShopifyStore
	if err := db.Where("tenant_id = ?", tn.ID).First(&store).Error; err != nil {
		t.Fatalf("load store: %v", err)
	}
	if store.ShopName != "ma-boutique" {
		t.Errorf("shop_name = %q, want normalized ma-boutique", store.ShopName)
	}

	// same shop again, different spelling
	rec = postJSON(e, "/api/shopify/stores", map[string]string{
		"shop_name":    "ma-boutique.myshopify.com",
		"access_token": "shpat_good",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate: status = %d, want 409", rec.Code)
	}
}

func TestConnectStore_BadCredentials(t *testing.T) {
	srv := fakeShopify(t)
	t.Setenv("SHOPIFY_API_BASE", srv.URL)

	db := testDB(t)
	tn := seedTenant(t, db)
	e := testServer(t, db, tn)

	rec := postJSON(e, "/api/shopify/stores", map[string]string{
		"shop_name":    "ma-boutique",
		"access_token": "shpat_bad",
	})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	var count int64
	db.Model(&entity.ShopifyStore{}).Count(&count)
	if count != 0 {
		t.Error("store persisted despite failed connection test")
	}
}

func TestTestConnectionEndpoint(t *testing.T) {
	srv := fakeShopify(t)
	t.Setenv("SHOPIFY_API_BASE", srv.URL)

	db := testDB(t)
	tn := seedTenant(t, db)
	e := testServer(t, db, tn)

	rec := postJSON(e, "/api/shopify/test", map[string]string{
		"shop_name":    "ma-boutique",
		"access_token": "shpat_good",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Success bool `json:"success"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if !body.Success {
		t.Error("success = false")
	}
}

func TestSyncEndpoint(t *testing.T) {
	srv := fakeShopify(t)
	t.Setenv("SHOPIFY_API_BASE", srv.URL)

	db := testDB(t)
	tn := seedTenant(t, db)
	store := &entity.ShopifyStore{TenantID: tn.ID, ShopName: "ma-boutique", AccessToken: "shpat_good", IsActive: true}
	if err := db.Create(store).Error; err != nil {
		t.Fatalf("seed store: %v", err)
	}
	e := testServer(t, db, tn)

	rec := postJSON(e, fmt.Sprintf("/api/shopify/stores/%d/sync", store.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var res struct {
		Created int `json:"created"`
	}
	json.Unmarshal(rec.Body.Bytes(), &res)
	if res.Created != 1 {
		t.Errorf("created = %d, want 1", res.Created)
	}

	rec = postJSON(e, "/api/shopify/stores/9999/sync", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown store: status = %d, want 404", rec.Code)
	}
}

func TestDeleteStore(t *testing.T) {
	srv := fakeShopify(t)
	t.Setenv("SHOPIFY_API_BASE", srv.URL)

	db := testDB(t)
	tn := seedTenant(t, db)
	store := &entity.ShopifyStore{TenantID: tn.ID, ShopName: "ma-boutique", AccessToken: "shpat_good", IsActive: true}
	if err := db.Create(store).Error; err != nil {
		t.Fatalf("seed store: %v", err)
	}
	e := testServer(t, db, tn)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/shopify/stores/%d", store.ID), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var count int64
	db.Model(&entity.ShopifyStore{}).Count(&count)
	if count != 0 {
		t.Error("store still present after delete")
	}
}
