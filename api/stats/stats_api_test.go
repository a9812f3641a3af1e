package stats

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"orderdesk/core/auth"
	entity "orderdesk/model/entity"
)

func testDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&entity.Tenant{}, &entity.Order{}, &entity.OrderItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// tenant ids are fixed per test: the stats cache is process-global and keyed
// by tenant id and day.
func testServer(t *testing.T, db *gorm.DB, tenantID uint) *echo.Echo {
	t.Helper()
	tn := &entity.Tenant{ID: tenantID, Email: "owner@example.com", APIToken: "tok-1", MaxOrders: 10}
	if err := db.Create(tn).Error; err != nil {
		t.Fatalf("seed tenant: %v", err)
	}
	e := echo.New()
	apiGroup := e.Group("/api")
	apiGroup.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth.SetTenantForTesting(c, tn)
			return next(c)
		}
	})
	RegisterStatsRoutes(apiGroup, db)
	return e
}

func seedOrder(t *testing.T, db *gorm.DB, tenantID uint, code, status, total string) {
	t.Helper()
	o := &entity.Order{
		TenantID:    &tenantID,
		OrderCode:   code,
		Status:      status,
		TotalAmount: decimal.RequireFromString(total),
		Source:      entity.SourceManual,
	}
	if err := db.Create(o).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
}

func getJSON(t *testing.T, e *echo.Echo, path string, out any) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return rec.Code
}

func TestDashboardEndpoint(t *testing.T) {
	db := testDB(t)
	e := testServer(t, db, 101)
	seedOrder(t, db, 101, "USR101-CMD1", entity.StatusDelivered, "20.00")
	seedOrder(t, db, 101, "USR101-CMD2", entity.StatusCancelled, "10.00")

	var stats struct {
		TotalOrders int64  `json:"total_orders"`
		Delivered   int64  `json:"delivered"`
		Cancelled   int64  `json:"cancelled"`
		Revenue     string `json:"revenue"`
	}
	if code := getJSON(t, e, "/api/stats/dashboard", &stats); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if stats.TotalOrders != 2 || stats.Delivered != 1 || stats.Cancelled != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Revenue != "20" && stats.Revenue != "20.00" {
		t.Errorf("revenue = %q, want 20", stats.Revenue)
	}
}

func TestDashboardEndpoint_CachedBetweenRequests(t *testing.T) {
	db := testDB(t)
	e := testServer(t, db, 202)
	seedOrder(t, db, 202, "USR202-CMD1", entity.StatusDelivered, "20.00")

	var first struct {
		TotalOrders int64 `json:"total_orders"`
	}
	if code := getJSON(t, e, "/api/stats/dashboard", &first); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}

	// new orders are invisible until the cache entry expires
	seedOrder(t, db, 202, "USR202-CMD2", entity.StatusDelivered, "30.00")
	var second struct {
		TotalOrders int64 `json:"total_orders"`
	}
	if code := getJSON(t, e, "/api/stats/dashboard", &second); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if second.TotalOrders != first.TotalOrders {
		t.Errorf("cached read changed: %d -> %d", first.TotalOrders, second.TotalOrders)
	}
}

func TestWeeklyEndpoint(t *testing.T) {
	db := testDB(t)
	e := testServer(t, db, 303)
	seedOrder(t, db, 303, "USR303-CMD1", entity.StatusDelivered, "15.00")

	var series []struct {
		Day    string `json:"day"`
		Orders int64  `json:"orders"`
	}
	if code := getJSON(t, e, "/api/stats/weekly", &series); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(series) != 7 {
		t.Fatalf("days = %d, want 7", len(series))
	}
	if series[6].Orders != 1 {
		t.Errorf("today = %d, want 1", series[6].Orders)
	}
}
