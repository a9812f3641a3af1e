package graphqlserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"orderdesk/graphql"
	entity "orderdesk/model/entity"
)

func testDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&entity.Tenant{}, &entity.Product{}, &entity.Order{}, &entity.OrderItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSchemaParses(t *testing.T) {
	if _, err := NewSchema(testDB(t)); err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
}

func TestOrdersQuery(t *testing.T) {
	db := testDB(t)
	tenantID := uint(1)
	o := &entity.Order{
		TenantID:    &tenantID,
		OrderCode:   "USR1-CMD1",
		ClientName:  "Amel",
		Status:      entity.StatusDelivered,
		TotalAmount: decimal.RequireFromString("25.00"),
		Source:      entity.SourceManual,
	}
	if err := db.Create(o).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	foreign := uint(2)
	fo := &entity.Order{
		TenantID:    &foreign,
		OrderCode:   "USR2-CMD1",
		TotalAmount: decimal.Zero,
		Status:      entity.StatusDashboard,
		Source:      entity.SourceManual,
	}
	if err := db.Create(fo).Error; err != nil {
		t.Fatalf("seed foreign order: %v", err)
	}

	schema, err := NewSchema(db)
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	ctx := graphql.WithTenantID(context.Background(), tenantID)
	resp := schema.Exec(ctx, `{ orders { orderCode clientName totalAmount status } }`, "", nil)
	if len(resp.Errors) > 0 {
		t.Fatalf("errors: %v", resp.Errors)
	}

	var data struct {
		Orders []struct {
			OrderCode   string `json:"orderCode"`
			ClientName  string `json:"clientName"`
			TotalAmount string `json:"totalAmount"`
		} `json:"orders"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(data.Orders) != 1 {
		t.Fatalf("orders = %d, want only the tenant's own", len(data.Orders))
	}
	if data.Orders[0].OrderCode != "USR1-CMD1" || data.Orders[0].TotalAmount != "25.00" {
		t.Errorf("order = %+v", data.Orders[0])
	}
}

func TestOrdersQuery_NoTenant(t *testing.T) {
	schema, err := NewSchema(testDB(t))
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	resp := schema.Exec(context.Background(), `{ orders { orderCode } }`, "", nil)
	if len(resp.Errors) == 0 {
		t.Fatal("expected an error without an authenticated tenant")
	}
}

func TestDashboardStatsQuery(t *testing.T) {
	db := testDB(t)
	tenantID := uint(1)
	o := &entity.Order{
		TenantID:    &tenantID,
		OrderCode:   "USR1-CMD1",
		Status:      entity.StatusDelivered,
		TotalAmount: decimal.RequireFromString("30.00"),
		Source:      entity.SourceManual,
	}
	if err := db.Create(o).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}

	schema, err := NewSchema(db)
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	ctx := graphql.WithTenantID(context.Background(), tenantID)
	resp := schema.Exec(ctx, `{ dashboardStats { totalOrders delivered revenue } }`, "", nil)
	if len(resp.Errors) > 0 {
		t.Fatalf("errors: %v", resp.Errors)
	}
	var data struct {
		DashboardStats struct {
			TotalOrders int32  `json:"totalOrders"`
			Delivered   int32  `json:"delivered"`
			Revenue     string `json:"revenue"`
		} `json:"dashboardStats"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.DashboardStats.TotalOrders != 1 || data.DashboardStats.Delivered != 1 {
		t.Errorf("stats = %+v", data.DashboardStats)
	}
	if data.DashboardStats.Revenue != "30.00" {
		t.Errorf("revenue = %q, want 30.00", data.DashboardStats.Revenue)
	}
}
