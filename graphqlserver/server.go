package graphqlserver

import (
	"context"
	"errors"
	"strconv"
	"time"

	gql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"gorm.io/gorm"

	"orderdesk/graphql"
	entity "orderdesk/model/entity"
	orderRepo "orderdesk/model/repository/order"
	productRepo "orderdesk/model/repository/product"
)

var errNoTenant = errors.New("no authenticated tenant")

// RootResolver is the root for graphql-go. All queries are tenant-scoped:
// the tenant id comes from the request context set by the HTTP layer.
type RootResolver struct {
	DB *gorm.DB
}

func (r *RootResolver) Query() *QueryResolver {
	return &QueryResolver{db: r.DB}
}

type QueryResolver struct {
	db *gorm.DB
}

// --- models (field resolvers) ---

type OrderResolver struct {
	ID            gql.ID
	OrderCode     string
	ClientName    string
	ClientPhone   string
	ClientAddress string
	Status        string
	TotalAmount   string
	Notes         string
	Source        string
	CreatedAt     string
	Items         []*OrderItemResolver
}

type OrderItemResolver struct {
	ProductName string
	UnitPrice   string
	Quantity    int32
	ImageUrl    string
}

type ProductResolver struct {
	ID          gql.ID
	Name        string
	Description string
	Price       string
	Stock       int32
	ImageUrl    string
}

type DashboardStatsResolver struct {
	TotalOrders int32
	Delivered   int32
	Cancelled   int32
	Postponed   int32
	Revenue     string
}

type DayStatResolver struct {
	Day     string
	Orders  int32
	Revenue string
}

func newOrderResolver(o *entity.Order) *OrderResolver {
	items := make([]*OrderItemResolver, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, &OrderItemResolver{
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice.StringFixed(2),
			Quantity:    int32(it.Quantity),
			ImageUrl:    it.ImageURL,
		})
	}
	return &OrderResolver{
		ID:            gql.ID(strconv.FormatUint(uint64(o.ID), 10)),
		OrderCode:     o.OrderCode,
		ClientName:    o.ClientName,
		ClientPhone:   o.ClientPhone,
		ClientAddress: o.ClientAddress,
		Status:        o.Status,
		TotalAmount:   o.TotalAmount.StringFixed(2),
		Notes:         o.Notes,
		Source:        o.Source,
		CreatedAt:     o.CreatedAt.Format(time.RFC3339),
		Items:         items,
	}
}

// --- query fields ---

type OrdersArgs struct {
	Limit *int32
}

func (r *QueryResolver) Orders(ctx context.Context, args OrdersArgs) ([]*OrderResolver, error) {
	tenantID, ok := graphql.TenantIDFromContext(ctx)
	if !ok {
		return nil, errNoTenant
	}
	list, err := orderRepo.NewOrderRepository(r.db).FindAll(&tenantID)
	if err != nil {
		return nil, err
	}
	limit := len(list)
	if args.Limit != nil && int(*args.Limit) < limit {
		limit = int(*args.Limit)
	}
	out := make([]*OrderResolver, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, newOrderResolver(&list[i]))
	}
	return out, nil
}

type OrderArgs struct {
	ID gql.ID
}

func (r *QueryResolver) Order(ctx context.Context, args OrderArgs) (*OrderResolver, error) {
	tenantID, ok := graphql.TenantIDFromContext(ctx)
	if !ok {
		return nil, errNoTenant
	}
	id, err := strconv.ParseUint(string(args.ID), 10, 32)
	if err != nil {
		return nil, errors.New("invalid order id")
	}
	o, err := orderRepo.NewOrderRepository(r.db).FindByID(uint(id), &tenantID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, nil
	}
	return newOrderResolver(o), nil
}

func (r *QueryResolver) Products(ctx context.Context) ([]*ProductResolver, error) {
	tenantID, ok := graphql.TenantIDFromContext(ctx)
	if !ok {
		return nil, errNoTenant
	}
	list, err := productRepo.NewProductRepository(r.db).FindAll(tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]*ProductResolver, 0, len(list))
	for _, p := range list {
		out = append(out, &ProductResolver{
			ID:          gql.ID(strconv.FormatUint(uint64(p.ID), 10)),
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price.StringFixed(2),
			Stock:       int32(p.Stock),
			ImageUrl:    p.ImageURL,
		})
	}
	return out, nil
}

func (r *QueryResolver) DashboardStats(ctx context.Context) (*DashboardStatsResolver, error) {
	tenantID, ok := graphql.TenantIDFromContext(ctx)
	if !ok {
		return nil, errNoTenant
	}
	s, err := orderRepo.NewOrderRepository(r.db).GetDashboardStats(tenantID, time.Now())
	if err != nil {
		return nil, err
	}
	return &DashboardStatsResolver{
		TotalOrders: int32(s.TotalOrders),
		Delivered:   int32(s.Delivered),
		Cancelled:   int32(s.Cancelled),
		Postponed:   int32(s.Postponed),
		Revenue:     s.Revenue.StringFixed(2),
	}, nil
}

func (r *QueryResolver) WeeklyStats(ctx context.Context) ([]*DayStatResolver, error) {
	tenantID, ok := graphql.TenantIDFromContext(ctx)
	if !ok {
		return nil, errNoTenant
	}
	series, err := orderRepo.NewOrderRepository(r.db).GetWeeklyStats(tenantID, time.Now())
	if err != nil {
		return nil, err
	}
	out := make([]*DayStatResolver, 0, len(series))
	for _, d := range series {
		out = append(out, &DayStatResolver{
			Day:     d.Day,
			Orders:  int32(d.Orders),
			Revenue: d.Revenue.StringFixed(2),
		})
	}
	return out, nil
}

// NewSchema parses the schema against the root resolver.
func NewSchema(db *gorm.DB) (*gql.Schema, error) {
	return gql.ParseSchema(graphql.Schema(), &RootResolver{DB: db}, gql.UseFieldResolvers())
}

// Handler returns an http.Handler for GraphQL (relay format).
func Handler(schema *gql.Schema) *relay.Handler {
	return &relay.Handler{Schema: schema}
}
