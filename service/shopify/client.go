package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	entity "orderdesk/model/entity"
	orderService "orderdesk/service/order"
)

const apiVersion = "2024-01"

// Client talks to the Shopify Admin REST API. Responses are returned as raw
// maps: they are untrusted input and only the mapper decides what to trust.
type Client struct {
	httpClient *http.Client
	// baseURL overrides the https://{shop}.myshopify.com host, used by
	// tests to point at a local server. Empty in production.
	baseURL string
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{},
		baseURL:    os.Getenv("SHOPIFY_API_BASE"),
	}
}

// NewClientWithBaseURL builds a client pinned to a fixed host (tests).
func NewClientWithBaseURL(base string) *Client {
	return &Client{httpClient: &http.Client{}, baseURL: base}
}

// CleanShopName strips scheme and the .myshopify.com suffix so stored shop
// names in any format resolve to the same host.
func CleanShopName(name string) string {
	name = strings.ReplaceAll(name, ".myshopify.com", "")
	name = strings.TrimPrefix(name, "https://")
	name = strings.TrimPrefix(name, "http://")
	return strings.TrimSpace(name)
}

func (c *Client) url(shopName, path string) string {
	if c.baseURL != "" {
		return c.baseURL + "/admin/api/" + apiVersion + path
	}
	return fmt.Sprintf("https://%s.myshopify.com/admin/api/%s%s", CleanShopName(shopName), apiVersion, path)
}

// get performs one bounded request and decodes the JSON body into out.
// A non-2xx response or timeout surfaces as ErrExternal.
func (c *Client) get(ctx context.Context, url, token string, timeout time.Duration, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Shopify-Access-Token", token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", orderService.ErrExternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: shopify responded %d: %s", orderService.ErrExternal, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", orderService.ErrExternal, err)
	}
	return nil
}

// FetchShopInfo verifies credentials by loading the shop resource.
func (c *Client) FetchShopInfo(ctx context.Context, shopName, accessToken string) (map[string]any, error) {
	var body struct {
		Shop map[string]any `json:"shop"`
	}
	if err := c.get(ctx, c.url(shopName, "/shop.json"), accessToken, 15*time.Second, &body); err != nil {
		return nil, err
	}
	return body.Shop, nil
}

// FetchOrders pulls up to limit orders of any status for a store.
func (c *Client) FetchOrders(ctx context.Context, store *entity.ShopifyStore, limit int) ([]map[string]any, error) {
	if limit <= 0 {
		limit = 50
	}
	var body struct {
		Orders []map[string]any `json:"orders"`
	}
	url := c.url(store.ShopName, fmt.Sprintf("/orders.json?limit=%d&status=any", limit))
	if err := c.get(ctx, url, store.AccessToken, 20*time.Second, &body); err != nil {
		return nil, err
	}
	return body.Orders, nil
}

// CountOrders returns the order count on the Shopify side.
func (c *Client) CountOrders(ctx context.Context, store *entity.ShopifyStore) (int, error) {
	var body struct {
		Count int `json:"count"`
	}
	if err := c.get(ctx, c.url(store.ShopName, "/orders/count.json"), store.AccessToken, 10*time.Second, &body); err != nil {
		return 0, err
	}
	return body.Count, nil
}
