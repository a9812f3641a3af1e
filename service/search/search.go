package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/elastic/go-elasticsearch/v8"

	"orderdesk/core/log"
	entity "orderdesk/model/entity"
)

var (
	serviceInstance *Service
	serviceOnce     sync.Once
)

// GetService returns the singleton search service.
func GetService() *Service {
	serviceOnce.Do(func() {
		serviceInstance = NewService()
	})
	return serviceInstance
}

// Service indexes orders into Elasticsearch and answers text queries over
// them. The client stays nil when ELASTICSEARCH_HOST is unset or the client
// cannot be built; all operations then degrade gracefully.
type Service struct {
	client *elasticsearch.Client
	prefix string
}

func NewService() *Service {
	host := os.Getenv("ELASTICSEARCH_HOST")
	prefix := os.Getenv("ELASTICSEARCH_INDEX_PREFIX")
	if prefix == "" {
		prefix = "orderdesk"
	}
	if host == "" {
		return &Service{prefix: prefix}
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{host},
	})
	if err != nil {
		return &Service{prefix: prefix}
	}
	return &Service{client: client, prefix: prefix}
}

// Enabled reports whether a search backend is configured.
func (s *Service) Enabled() bool {
	return s.client != nil
}

func (s *Service) indexName(tenantID uint) string {
	return fmt.Sprintf("%s_orders_%d", s.prefix, tenantID)
}

// orderDoc is the indexed projection of an order.
type orderDoc struct {
	ID          uint   `json:"id"`
	OrderCode   string `json:"order_code"`
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`
	Status      string `json:"status"`
	Notes       string `json:"notes"`
	Source      string `json:"source"`
	TotalAmount string `json:"total_amount"`
}

// IndexOrder writes one order document. Best-effort: indexing failures are
// logged, never returned to the write path.
func (s *Service) IndexOrder(ctx context.Context, o *entity.Order) {
	if s.client == nil || o.TenantID == nil {
		return
	}
	doc := orderDoc{
		ID:          o.ID,
		OrderCode:   o.OrderCode,
		ClientName:  o.ClientName,
		ClientPhone: o.ClientPhone,
		Status:      o.Status,
		Notes:       o.Notes,
		Source:      o.Source,
		TotalAmount: o.TotalAmount.StringFixed(2),
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return
	}
	res, err := s.client.Index(
		s.indexName(*o.TenantID),
		bytes.NewReader(body),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(strconv.FormatUint(uint64(o.ID), 10)),
	)
	if err != nil {
		log.L().Warnw("order indexing failed", "order_id", o.ID, "error", err)
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		log.L().Warnw("order indexing rejected", "order_id", o.ID, "status", res.StatusCode)
	}
}

// Hit is one search result.
type Hit struct {
	ID         uint   `json:"id"`
	OrderCode  string `json:"order_code"`
	ClientName string `json:"client_name"`
	Status     string `json:"status"`
}

// Search runs a multi-field text query over a tenant's order index.
func (s *Service) Search(ctx context.Context, tenantID uint, query string, size int) ([]Hit, error) {
	if s.client == nil {
		return nil, fmt.Errorf("elasticsearch not configured")
	}
	if size <= 0 {
		size = 20
	}

	q := map[string]any{
		"size": size,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  query,
				"fields": []string{"order_code^2", "client_name", "client_phone", "notes"},
			},
		},
	}
	body, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.indexName(tenantID)),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch responded %d", res.StatusCode)
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source Hit `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		hits = append(hits, h.Source)
	}
	return hits, nil
}
