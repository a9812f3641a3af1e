package search

import (
	"context"
	"testing"

	entity "orderdesk/model/entity"
)

func TestServiceDisabledWithoutHost(t *testing.T) {
	t.Setenv("ELASTICSEARCH_HOST", "")
	svc := NewService()
	if svc.Enabled() {
		t.Fatal("service enabled without a configured host")
	}

	// all operations degrade gracefully
	tenantID := uint(1)
	svc.IndexOrder(context.Background(), &entity.Order{ID: 1, TenantID: &tenantID})
	if _, err := svc.Search(context.Background(), tenantID, "mug", 10); err == nil {
		t.Error("Search should fail when not configured")
	}
}

func TestIndexNameIsTenantScoped(t *testing.T) {
	t.Setenv("ELASTICSEARCH_INDEX_PREFIX", "")
	t.Setenv("ELASTICSEARCH_HOST", "")
	svc := NewService()
	if got := svc.indexName(7); got != "orderdesk_orders_7" {
		t.Errorf("indexName = %q", got)
	}
	if svc.indexName(7) == svc.indexName(8) {
		t.Error("indices must be tenant-scoped")
	}
}
