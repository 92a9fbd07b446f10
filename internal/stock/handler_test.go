package stock

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/loomhouse/fabricdesk/internal/catalog"
	"github.com/loomhouse/fabricdesk/internal/inventoryapi"
	"github.com/loomhouse/fabricdesk/internal/platform/httpx"
)

type fakeBackend struct {
	records    []inventoryapi.InventoryRecord
	added      []inventoryapi.NewInventory
	conditions []string
	deleted    []int64
	products   []string
	err        error
}

func (f *fakeBackend) Inventory(ctx context.Context) ([]inventoryapi.InventoryRecord, error) {
	return f.records, f.err
}

func (f *fakeBackend) AddInventory(ctx context.Context, item inventoryapi.NewInventory) error {
	if f.err != nil {
		return f.err
	}
	f.added = append(f.added, item)
	return nil
}

func (f *fakeBackend) UpdateCondition(ctx context.Context, id int64, operation string, update inventoryapi.ConditionUpdate) error {
	if f.err != nil {
		return f.err
	}
	f.conditions = append(f.conditions, operation)
	return nil
}

func (f *fakeBackend) DeleteInventory(ctx context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeBackend) MasterProductNames(ctx context.Context) ([]inventoryapi.Product, error) {
	return []inventoryapi.Product{{ID: 1, ProductName: "Cotton"}}, f.err
}

func (f *fakeBackend) AddProduct(ctx context.Context, name string) error {
	if f.err != nil {
		return f.err
	}
	f.products = append(f.products, name)
	return nil
}

func (f *fakeBackend) Customers(ctx context.Context) ([]inventoryapi.Customer, error) {
	return []inventoryapi.Customer{{CustomerID: 3, Name: "Acme Textiles"}}, f.err
}

func (f *fakeBackend) InvoiceHeaders(ctx context.Context) ([]inventoryapi.InvoiceHeader, error) {
	return []inventoryapi.InvoiceHeader{{InvoiceNumber: "INV-1", CustomerName: "Acme Textiles", TotalPrice: 125}}, f.err
}

func (f *fakeBackend) InvoiceEntries(ctx context.Context, invoiceNumber string) ([]inventoryapi.InvoiceEntryRecord, error) {
	if invoiceNumber != "INV-1" {
		return nil, &inventoryapi.StatusError{Method: http.MethodGet, Path: "/invoices/" + invoiceNumber + "/entries", Status: http.StatusNotFound}
	}
	return []inventoryapi.InvoiceEntryRecord{{MasterProduct: "Cotton", Color: "Blue", NumPieces: 2, TotalQuantity: 25, PerUnitPrice: 5, TotalProductPrice: 125}}, nil
}

type fakeCatalog struct {
	refreshes int
}

func (f *fakeCatalog) MasterProducts(ctx context.Context) ([]catalog.MasterProduct, error) {
	return []catalog.MasterProduct{{ID: 1, ProductName: "Cotton", TotalYards: decimal.NewFromInt(40), TotalPieces: decimal.NewFromInt(3)}}, nil
}

func (f *fakeCatalog) Refresh(ctx context.Context) error {
	f.refreshes++
	return nil
}

func newTestRouter(backend *fakeBackend, cat *fakeCatalog) http.Handler {
	router := chi.NewRouter()
	NewHandler(NewService(backend, cat, nil), nil).MountRoutes(router)
	return router
}

func serve(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func sampleRecords() []inventoryapi.InventoryRecord {
	return []inventoryapi.InventoryRecord{
		{ID: 1, Product: inventoryapi.Product{ID: 1, ProductName: "Cotton"}, Color: "Blue", Category: "A", YardAvailable: 30, PieceAvailable: 2},
		{ID: 2, Product: inventoryapi.Product{ID: 2, ProductName: "Silk"}, Color: "Red", Category: "B", YardAvailable: 12, PieceAvailable: 1},
	}
}

func TestListInventoryFiltersByProductName(t *testing.T) {
	router := newTestRouter(&fakeBackend{records: sampleRecords()}, &fakeCatalog{})

	rr := serve(t, router, http.MethodGet, "/inventory?product=cot", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var records []inventoryapi.InventoryRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Cotton", records[0].Product.ProductName)
}

func TestAddInventoryRefreshesCatalog(t *testing.T) {
	backend := &fakeBackend{}
	cat := &fakeCatalog{}
	router := newTestRouter(backend, cat)

	body := `{"productName":"Cotton","color":"Blue","category":"A","inventoryUnit":"Yard","yardAvailable":30,"pieceAvailable":2}`
	rr := serve(t, router, http.MethodPost, "/inventory", body)

	require.Equal(t, http.StatusCreated, rr.Code)
	require.Len(t, backend.added, 1)
	assert.Equal(t, "Yard", backend.added[0].InventoryUnit)
	assert.Equal(t, 1, cat.refreshes)
}

func TestAddInventoryRejectsUnknownUnit(t *testing.T) {
	backend := &fakeBackend{}
	router := newTestRouter(backend, &fakeCatalog{})

	body := `{"productName":"Cotton","color":"Blue","category":"D","inventoryUnit":"Inch","yardAvailable":30,"pieceAvailable":2}`
	rr := serve(t, router, http.MethodPost, "/inventory", body)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
	assert.ElementsMatch(t, []string{"Category", "InventoryUnit"}, problem.InvalidFields)
	assert.Empty(t, backend.added)
}

func TestUpdateCondition(t *testing.T) {
	backend := &fakeBackend{}
	cat := &fakeCatalog{}
	router := newTestRouter(backend, cat)

	rr := serve(t, router, http.MethodPut, "/inventory/4/Hold", `{"yardAvailable":5,"pieceAvailable":1}`)
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, []string{OperationHold}, backend.conditions)
	assert.Equal(t, 1, cat.refreshes)

	rr = serve(t, router, http.MethodPut, "/inventory/4/Steal", `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Len(t, backend.conditions, 1)
}

func TestDeleteInventory(t *testing.T) {
	backend := &fakeBackend{}
	router := newTestRouter(backend, &fakeCatalog{})

	rr := serve(t, router, http.MethodDelete, "/inventory/9", "")
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, []int64{9}, backend.deleted)

	rr = serve(t, router, http.MethodDelete, "/inventory/abc", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAddProductTrimsName(t *testing.T) {
	backend := &fakeBackend{}
	router := newTestRouter(backend, &fakeCatalog{})

	rr := serve(t, router, http.MethodPost, "/products", `{"addProductName":"  Linen "}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, []string{"Linen"}, backend.products)
}

func TestMasterProducts(t *testing.T) {
	router := newTestRouter(&fakeBackend{}, &fakeCatalog{})

	rr := serve(t, router, http.MethodGet, "/master-products", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[{"id":1,"productName":"Cotton","totalYards":"40","totalPieces":"3"}]`, rr.Body.String())
}

func TestInvoiceEntries(t *testing.T) {
	router := newTestRouter(&fakeBackend{}, &fakeCatalog{})

	rr := serve(t, router, http.MethodGet, "/invoices/INV-1/entries", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var entries []inventoryapi.InvoiceEntryRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].NumPieces)

	rr = serve(t, router, http.MethodGet, "/invoices/INV-404/entries", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestBackendFailureIsBadGateway(t *testing.T) {
	backend := &fakeBackend{err: &inventoryapi.StatusError{Method: http.MethodGet, Path: "/customers", Status: http.StatusInternalServerError}}
	router := newTestRouter(backend, &fakeCatalog{})

	rr := serve(t, router, http.MethodGet, "/customers", "")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestExportInventoryWorkbook(t *testing.T) {
	router := newTestRouter(&fakeBackend{records: sampleRecords()}, &fakeCatalog{})

	rr := serve(t, router, http.MethodGet, "/inventory/export.xlsx", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "attachment; filename=inventory.xlsx", rr.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows("Inventory")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, "Silk", rows[2][1])
}
