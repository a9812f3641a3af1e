package shopify

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"

	entity "orderdesk/model/entity"
)

// ErrInvalidTotal marks an unparseable order total. An order is never
// persisted with a nonsensical amount, so this fails the whole mapping.
var ErrInvalidTotal = errors.New("invalid total amount")

// shopifyOrder is the subset of a Shopify order payload the mapper reads.
// Decoded weakly typed: Shopify mixes strings and numbers between API
// versions and webhook variants.
type shopifyOrder struct {
	ID                  int64            `mapstructure:"id"`
	Name                string           `mapstructure:"name"`
	OrderNumber         int64            `mapstructure:"order_number"`
	Email               string           `mapstructure:"email"`
	Note                string           `mapstructure:"note"`
	Tags                string           `mapstructure:"tags"`
	Currency            string           `mapstructure:"currency"`
	TotalPrice          string           `mapstructure:"total_price"`
	FinancialStatus     string           `mapstructure:"financial_status"`
	Gateway             string           `mapstructure:"gateway"`
	PaymentGatewayNames []string         `mapstructure:"payment_gateway_names"`
	NoteAttributes      []noteAttribute  `mapstructure:"note_attributes"`
	Customer            *shopifyCustomer `mapstructure:"customer"`
	BillingAddress      *shopifyAddress  `mapstructure:"billing_address"`
	ShippingAddress     *shopifyAddress  `mapstructure:"shipping_address"`
	LineItems           []shopifyLine    `mapstructure:"line_items"`
	ShippingLines       []shippingLine   `mapstructure:"shipping_lines"`
	CreatedAt           string           `mapstructure:"created_at"`
	ProcessedAt         string           `mapstructure:"processed_at"`
}

type noteAttribute struct {
	Name  string `mapstructure:"name"`
	Value string `mapstructure:"value"`
}

type shopifyCustomer struct {
	FirstName string `mapstructure:"first_name"`
	LastName  string `mapstructure:"last_name"`
	Email     string `mapstructure:"email"`
}

type shopifyAddress struct {
	Address1 string `mapstructure:"address1"`
	Address2 string `mapstructure:"address2"`
	City     string `mapstructure:"city"`
	Province string `mapstructure:"province"`
	Country  string `mapstructure:"country"`
	Zip      string `mapstructure:"zip"`
	Phone    string `mapstructure:"phone"`
}

type shopifyLine struct {
	Title     string `mapstructure:"title"`
	Name      string `mapstructure:"name"`
	Quantity  int    `mapstructure:"quantity"`
	Price     string `mapstructure:"price"`
	VariantID *int64 `mapstructure:"variant_id"`
	ProductID *int64 `mapstructure:"product_id"`
	SKU       string `mapstructure:"sku"`
}

type shippingLine struct {
	Title string `mapstructure:"title"`
}

// MappedLineItem is one external line item translated into the local
// shape. Variant/product ids and SKU travel along as metadata.
type MappedLineItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Total     decimal.Decimal `json:"total"`
	VariantID *int64          `json:"variant_id,omitempty"`
	ProductID *int64          `json:"product_id,omitempty"`
	SKU       string          `json:"sku,omitempty"`
}

// MappedOrder is a Shopify order translated into the local order schema.
type MappedOrder struct {
	ShopifyOrderID  string
	OrderNumber     int64
	CustomerName    string
	CustomerPhone   *string
	CustomerAddress *string
	CustomerEmail   *string
	TotalAmount     decimal.Decimal
	Currency        string
	Status          string
	PaymentMethod   string
	ShippingMethod  string
	Notes           string
	Items           []MappedLineItem
	OrderDate       *time.Time
}

var statusMap = map[string]string{
	"pending":            entity.StatusPending,
	"authorized":         entity.StatusAuthorized,
	"partially_paid":     entity.StatusPartiallyPaid,
	"paid":               entity.StatusPaid,
	"partially_refunded": entity.StatusPartiallyRefunded,
	"refunded":           entity.StatusRefunded,
	"voided":             entity.StatusVoided,
}

// MapStatus translates a Shopify financial status. Unknown statuses fall
// back to en_attente instead of failing the mapping.
func MapStatus(financialStatus string) string {
	if s, ok := statusMap[financialStatus]; ok {
		return s
	}
	return entity.StatusPending
}

// Map translates one raw Shopify order payload into the local schema. Pure:
// no I/O, no storage. The only hard failure is an unparseable total.
func Map(payload map[string]any) (*MappedOrder, error) {
	var so shopifyOrder
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &so,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(payload); err != nil {
		return nil, fmt.Errorf("decode shopify order: %w", err)
	}

	total, err := decimal.NewFromString(strings.TrimSpace(so.TotalPrice))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTotal, so.TotalPrice)
	}

	m := &MappedOrder{
		ShopifyOrderID:  strconv.FormatInt(so.ID, 10),
		OrderNumber:     so.OrderNumber,
		CustomerName:    extractName(&so),
		CustomerPhone:   extractPhone(&so),
		CustomerAddress: extractAddress(&so),
		CustomerEmail:   extractEmail(&so),
		TotalAmount:     total,
		Currency:        so.Currency,
		Status:          MapStatus(so.FinancialStatus),
		PaymentMethod:   extractPaymentMethod(&so),
		ShippingMethod:  extractShippingMethod(&so),
		Notes:           formatNotes(&so),
		Items:           mapLineItems(so.LineItems),
		OrderDate:       parseOrderDate(&so),
	}
	return m, nil
}

// findAttribute returns the value of the first custom attribute whose name
// contains needle, case-insensitively.
func findAttribute(attrs []noteAttribute, needle string) string {
	for _, a := range attrs {
		if a.Name != "" && strings.Contains(strings.ToLower(a.Name), needle) && a.Value != "" {
			return a.Value
		}
	}
	return ""
}

func extractName(so *shopifyOrder) string {
	if v := findAttribute(so.NoteAttributes, "name"); v != "" {
		return v
	}
	if so.Customer != nil {
		full := strings.TrimSpace(so.Customer.FirstName + " " + so.Customer.LastName)
		if full != "" {
			return full
		}
	}
	return "External Customer"
}

func extractPhone(so *shopifyOrder) *string {
	if v := findAttribute(so.NoteAttributes, "phone"); v != "" {
		return &v
	}
	if so.BillingAddress != nil && so.BillingAddress.Phone != "" {
		return &so.BillingAddress.Phone
	}
	return nil
}

func extractAddress(so *shopifyOrder) *string {
	if v := findAttribute(so.NoteAttributes, "address"); v != "" {
		return &v
	}
	if so.ShippingAddress != nil {
		addr := so.ShippingAddress
		var parts []string
		for _, p := range []string{addr.Address1, addr.Address2, addr.City, addr.Province, addr.Country, addr.Zip} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) > 0 {
			joined := strings.Join(parts, ", ")
			return &joined
		}
	}
	return nil
}

func extractEmail(so *shopifyOrder) *string {
	if so.Customer != nil && so.Customer.Email != "" {
		return &so.Customer.Email
	}
	if so.Email != "" {
		return &so.Email
	}
	return nil
}

func extractPaymentMethod(so *shopifyOrder) string {
	if len(so.PaymentGatewayNames) > 0 && so.PaymentGatewayNames[0] != "" {
		return so.PaymentGatewayNames[0]
	}
	if so.Gateway != "" {
		return so.Gateway
	}
	return "Non spécifié"
}

func extractShippingMethod(so *shopifyOrder) string {
	if len(so.ShippingLines) > 0 && so.ShippingLines[0].Title != "" {
		return so.ShippingLines[0].Title
	}
	return "Standard"
}

// formatNotes concatenates custom attributes, the free-text note and tags.
// Absent segments are omitted, not left as empty placeholders.
func formatNotes(so *shopifyOrder) string {
	var segments []string
	for _, a := range so.NoteAttributes {
		if a.Name != "" && a.Value != "" {
			segments = append(segments, a.Name+": "+a.Value)
		}
	}
	if so.Note != "" {
		segments = append(segments, "Note: "+so.Note)
	}
	if so.Tags != "" {
		segments = append(segments, "Tags: "+so.Tags)
	}
	return strings.Join(segments, " | ")
}

func mapLineItems(lines []shopifyLine) []MappedLineItem {
	items := make([]MappedLineItem, 0, len(lines))
	for _, li := range lines {
		name := li.Title
		if name == "" {
			name = li.Name
		}
		if name == "" {
			name = "Produit"
		}
		qty := li.Quantity
		if qty <= 0 {
			qty = 1
		}
		price, err := decimal.NewFromString(strings.TrimSpace(li.Price))
		if err != nil {
			price = decimal.Zero
		}
		items = append(items, MappedLineItem{
			Name:      name,
			Quantity:  qty,
			Price:     price,
			Total:     price.Mul(decimal.NewFromInt(int64(qty))),
			VariantID: li.VariantID,
			ProductID: li.ProductID,
			SKU:       li.SKU,
		})
	}
	return items
}

func parseOrderDate(so *shopifyOrder) *time.Time {
	for _, raw := range []string{so.CreatedAt, so.ProcessedAt} {
		if raw == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return &t
		}
	}
	return nil
}
