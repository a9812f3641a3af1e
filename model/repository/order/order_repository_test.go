package order

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

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
	if err := db.AutoMigrate(&entity.Tenant{}, &entity.Product{}, &entity.Order{}, &entity.OrderItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, tenantID uint, code, status string, total string) *entity.Order {
	t.Helper()
	o := &entity.Order{
		TenantID:    &tenantID,
		OrderCode:   code,
		Status:      status,
		TotalAmount: decimal.RequireFromString(total),
		Source:      entity.SourceManual,
	}
	if err := db.Create(o).Error; err != nil {
		t.Fatalf("seed order %s: %v", code, err)
	}
	return o
}

func TestFindByID_TenantScoping(t *testing.T) {
	db := testDB(t)
	repo := NewOrderRepository(db)
	o := seedOrder(t, db, 1, "USR1-CMD1", entity.StatusDashboard, "10.00")

	found, err := repo.FindByID(o.ID, uintPtr(1))
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found == nil || found.OrderCode != "USR1-CMD1" {
		t.Fatalf("found = %+v", found)
	}

	// a foreign tenant reads the order as absent
	foreign, err := repo.FindByID(o.ID, uintPtr(2))
	if err != nil {
		t.Fatalf("FindByID foreign: %v", err)
	}
	if foreign != nil {
		t.Error("foreign tenant sees the order")
	}
}

func TestFindByID_HydratesItemImages(t *testing.T) {
	db := testDB(t)
	repo := NewOrderRepository(db)

	p := &entity.Product{TenantID: 1, Name: "Mug", Price: decimal.RequireFromString("9.90"), ImageURL: "https://cdn.example.com/mug.png"}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	o := seedOrder(t, db, 1, "USR1-CMD1", entity.StatusDashboard, "9.90")
	item := &entity.OrderItem{OrderID: o.ID, ProductID: &p.ID, ProductName: p.Name, UnitPrice: p.Price, Quantity: 1}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}

	found, err := repo.FindByID(o.ID, uintPtr(1))
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if len(found.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(found.Items))
	}
	if found.Items[0].ImageURL != p.ImageURL {
		t.Errorf("image = %q, want %q", found.Items[0].ImageURL, p.ImageURL)
	}
}

func TestUpdateStatus(t *testing.T) {
	db := testDB(t)
	repo := NewOrderRepository(db)
	o := seedOrder(t, db, 1, "USR1-CMD1", entity.StatusDashboard, "10.00")

	updated, err := repo.UpdateStatus(o.ID, uintPtr(1), entity.StatusDelivered)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated == nil || updated.Status != entity.StatusDelivered {
		t.Fatalf("updated = %+v", updated)
	}

	none, err := repo.UpdateStatus(o.ID, uintPtr(2), entity.StatusCancelled)
	if err != nil {
		t.Fatalf("UpdateStatus foreign: %v", err)
	}
	if none != nil {
		t.Error("foreign tenant updated the order")
	}
}

func TestAllocateCode(t *testing.T) {
	db := testDB(t)
	seedOrder(t, db, 1, "USR1-CMD1", entity.StatusDashboard, "10.00")
	seedOrder(t, db, 1, "USR1-CMD2", entity.StatusDashboard, "10.00")
	seedOrder(t, db, 2, "USR2-CMD1", entity.StatusDashboard, "10.00")

	code, degraded, err := AllocateCode(db, uintPtr(1))
	if err != nil {
		t.Fatalf("AllocateCode: %v", err)
	}
	if degraded {
		t.Error("unexpected degraded flag")
	}
	if code != "USR1-CMD3" {
		t.Errorf("code = %q, want USR1-CMD3", code)
	}

	// per-tenant sequences are independent
	code, _, err = AllocateCode(db, uintPtr(2))
	if err != nil {
		t.Fatalf("AllocateCode tenant 2: %v", err)
	}
	if code != "USR2-CMD2" {
		t.Errorf("code = %q, want USR2-CMD2", code)
	}

	code, degraded, err = AllocateCode(db, nil)
	if err != nil {
		t.Fatalf("AllocateCode nil tenant: %v", err)
	}
	if !degraded {
		t.Error("nil tenant should yield a degraded code")
	}
	if code == "" {
		t.Error("empty fallback code")
	}
}

func TestGetNumberingStats(t *testing.T) {
	db := testDB(t)
	repo := NewOrderRepository(db)

	empty, err := repo.GetNumberingStats(1)
	if err != nil {
		t.Fatalf("GetNumberingStats: %v", err)
	}
	if empty.TotalOrders != 0 || empty.LastOrderCode != "" || empty.FirstOrderDate != nil {
		t.Errorf("empty stats = %+v", empty)
	}

	seedOrder(t, db, 1, "USR1-CMD1", entity.StatusDashboard, "10.00")
	seedOrder(t, db, 1, "USR1-CMD2", entity.StatusDashboard, "10.00")

	s, err := repo.GetNumberingStats(1)
	if err != nil {
		t.Fatalf("GetNumberingStats: %v", err)
	}
	if s.TotalOrders != 2 {
		t.Errorf("TotalOrders = %d, want 2", s.TotalOrders)
	}
	if s.LastOrderCode != "USR1-CMD2" {
		t.Errorf("LastOrderCode = %q, want USR1-CMD2", s.LastOrderCode)
	}
	if s.FirstOrderDate == nil {
		t.Error("FirstOrderDate missing")
	}
}

func TestGetDashboardStats(t *testing.T) {
	db := testDB(t)
	repo := NewOrderRepository(db)

	seedOrder(t, db, 1, "USR1-CMD1", entity.StatusDelivered, "25.00")
	seedOrder(t, db, 1, "USR1-CMD2", entity.StatusDelivered, "15.00")
	seedOrder(t, db, 1, "USR1-CMD3", entity.StatusCancelled, "99.00")
	seedOrder(t, db, 1, "USR1-CMD4", entity.StatusPostponed, "12.00")
	seedOrder(t, db, 2, "USR2-CMD1", entity.StatusDelivered, "500.00")

	s, err := repo.GetDashboardStats(1, time.Now())
	if err != nil {
		t.Fatalf("GetDashboardStats: %v", err)
	}
	if s.TotalOrders != 4 {
		t.Errorf("TotalOrders = %d, want 4", s.TotalOrders)
	}
	if s.Delivered != 2 || s.Cancelled != 1 || s.Postponed != 1 {
		t.Errorf("grouped = %d/%d/%d", s.Delivered, s.Cancelled, s.Postponed)
	}
	// revenue counts delivered orders only
	if !s.Revenue.Equal(decimal.RequireFromString("40.00")) {
		t.Errorf("Revenue = %s, want 40.00", s.Revenue)
	}
}

func TestGetWeeklyStats(t *testing.T) {
	db := testDB(t)
	repo := NewOrderRepository(db)
	seedOrder(t, db, 1, "USR1-CMD1", entity.StatusDelivered, "25.00")

	series, err := repo.GetWeeklyStats(1, time.Now())
	if err != nil {
		t.Fatalf("GetWeeklyStats: %v", err)
	}
	if len(series) != 7 {
		t.Fatalf("days = %d, want 7", len(series))
	}
	today := series[6]
	if today.Orders != 1 {
		t.Errorf("today orders = %d, want 1", today.Orders)
	}
	for _, d := range series[:6] {
		if d.Orders != 0 {
			t.Errorf("day %s orders = %d, want 0", d.Day, d.Orders)
		}
	}
}

func uintPtr(v uint) *uint { return &v }
