// Package inventoryapi talks to the REST inventory, customer and invoice backend.
package inventoryapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StatusError reports a backend response with a failing status code.
type StatusError struct {
	Method string
	Path   string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("inventoryapi: %s %s returned status %d", e.Method, e.Path, e.Status)
}

// Client wraps interactions with the inventory backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new client. baseURL includes the fixed API prefix, e.g. http://localhost:8080/api.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Colors lists the color variants stocked for a product.
func (c *Client) Colors(ctx context.Context, productID int64) ([]string, error) {
	var colors []string
	path := "/inventory/colors/" + strconv.FormatInt(productID, 10)
	if err := c.do(ctx, http.MethodGet, path, nil, &colors); err != nil {
		return nil, err
	}
	return colors, nil
}

// Categories lists the categories stocked for a product/color pair.
func (c *Client) Categories(ctx context.Context, productID int64, color string) ([]string, error) {
	var categories []string
	path := "/inventory/categories/" + strconv.FormatInt(productID, 10) + "/" + url.PathEscape(color)
	if err := c.do(ctx, http.MethodGet, path, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Customers lists every customer.
func (c *Client) Customers(ctx context.Context) ([]Customer, error) {
	var customers []Customer
	if err := c.do(ctx, http.MethodGet, "/customers", nil, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

// AdjustSale deducts sold stock for one product/color.
func (c *Client) AdjustSale(ctx context.Context, adj SaleAdjustment) error {
	return c.do(ctx, http.MethodPut, "/inventory/sale", adj, nil)
}

// CreateInvoice persists an invoice header with its entries.
func (c *Client) CreateInvoice(ctx context.Context, req InvoiceRequest) error {
	return c.do(ctx, http.MethodPost, "/invoices", req, nil)
}

// InvoiceHeaders lists every stored invoice header.
func (c *Client) InvoiceHeaders(ctx context.Context) ([]InvoiceHeader, error) {
	var headers []InvoiceHeader
	if err := c.do(ctx, http.MethodGet, "/invoices/getAllHeaders", nil, &headers); err != nil {
		return nil, err
	}
	return headers, nil
}

// InvoiceEntries lists the entries of one invoice.
func (c *Client) InvoiceEntries(ctx context.Context, invoiceNumber string) ([]InvoiceEntryRecord, error) {
	var entries []InvoiceEntryRecord
	path := "/invoices/" + url.PathEscape(invoiceNumber) + "/entries"
	if err := c.do(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Inventory lists every inventory record.
func (c *Client) Inventory(ctx context.Context) ([]InventoryRecord, error) {
	var records []InventoryRecord
	if err := c.do(ctx, http.MethodGet, "/inventory", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// MasterProductNames lists the registered master products.
func (c *Client) MasterProductNames(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.do(ctx, http.MethodGet, "/inventory/master-products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// AddInventory stores a new inventory record.
func (c *Client) AddInventory(ctx context.Context, item NewInventory) error {
	return c.do(ctx, http.MethodPost, "/inventory", item, nil)
}

// AddProduct registers a new master product name.
func (c *Client) AddProduct(ctx context.Context, name string) error {
	body := map[string]string{"addProductName": name}
	return c.do(ctx, http.MethodPost, "/inventory/addProduct", body, nil)
}

// UpdateCondition applies a procurement, hold or release operation to a record.
func (c *Client) UpdateCondition(ctx context.Context, id int64, operation string, update ConditionUpdate) error {
	path := "/inventory/updatecond/" + strconv.FormatInt(id, 10) + "/" + url.PathEscape(operation)
	return c.do(ctx, http.MethodPut, path, update, nil)
}

// DeleteInventory removes one inventory record.
func (c *Client) DeleteInventory(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/inventory/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("inventoryapi: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Method: method, Path: path, Status: resp.StatusCode}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("inventoryapi: decode %s %s: %w", method, path, err)
	}
	return nil
}
