package inventoryapi

// Product is the nested master product of an inventory record.
type Product struct {
	ID          int64  `json:"id"`
	ProductName string `json:"productName"`
}

// InventoryRecord is one warehouse entry for a product/color/category.
type InventoryRecord struct {
	ID                int64   `json:"id"`
	Product           Product `json:"product"`
	Color             string  `json:"color"`
	Category          string  `json:"category"`
	InventoryUnit     string  `json:"inventoryUnit,omitempty"`
	YardAvailable     float64 `json:"yardAvailable"`
	PieceAvailable    float64 `json:"pieceAvailable"`
	LoadedYards       float64 `json:"loadedYards"`
	LoadedPieces      float64 `json:"loadedPieces"`
	ProcurementYards  float64 `json:"procurementYards"`
	ProcurementPieces float64 `json:"procurementPieces"`
	SaleYards         float64 `json:"saleYards"`
	SalePieces        float64 `json:"salePieces"`
	YardsOnHold       float64 `json:"yardsOnHold"`
	PiecesOnHold      float64 `json:"piecesOnHold"`
}

// NewInventory is the body of POST /inventory.
type NewInventory struct {
	ProductName    string  `json:"productName"`
	Color          string  `json:"color"`
	Category       string  `json:"category"`
	InventoryUnit  string  `json:"inventoryUnit"`
	YardAvailable  float64 `json:"yardAvailable"`
	PieceAvailable float64 `json:"pieceAvailable"`
}

// ConditionUpdate is the body of PUT /inventory/updatecond/{id}/{operation}.
type ConditionUpdate struct {
	ProductName    string  `json:"productName"`
	Color          string  `json:"color"`
	Category       string  `json:"category"`
	YardAvailable  float64 `json:"yardAvailable"`
	PieceAvailable float64 `json:"pieceAvailable"`
}

// Customer is one entry of GET /customers.
type Customer struct {
	CustomerID int64  `json:"customerId"`
	Name       string `json:"name"`
}

// SaleAdjustment is the body of PUT /inventory/sale.
type SaleAdjustment struct {
	ProductID     int64   `json:"productId"`
	Color         string  `json:"color"`
	SaleYards     float64 `json:"saleYards"`
	SalePieces    int     `json:"salePieces"`
	InvoiceNumber string  `json:"invoiceNumber"`
}

// InvoiceHeader is the header half of POST /invoices and a row of GET /invoices/getAllHeaders.
type InvoiceHeader struct {
	InvoiceNumber string  `json:"invoiceNumber"`
	CustomerID    int64   `json:"customerId,omitempty"`
	CustomerName  string  `json:"customerName"`
	TotalPrice    float64 `json:"totalPrice"`
}

// InvoiceEntry is one product line of POST /invoices.
type InvoiceEntry struct {
	Color             string  `json:"color"`
	ProductName       string  `json:"productName"`
	PieceAvailable    int     `json:"pieceAvailable"`
	Quantity          float64 `json:"quantity"`
	TotalProductPrice float64 `json:"totalProductPrice"`
	UnitPrice         float64 `json:"unitPrice"`
}

// InvoiceRequest is the body of POST /invoices.
type InvoiceRequest struct {
	InvoiceHeader  InvoiceHeader  `json:"invoiceHeader"`
	InvoiceEntries []InvoiceEntry `json:"invoiceEntries"`
}

// InvoiceEntryRecord is one row of GET /invoices/{invoiceNumber}/entries.
type InvoiceEntryRecord struct {
	MasterProduct     string  `json:"masterProduct"`
	Color             string  `json:"color"`
	NumPieces         int     `json:"numPieces"`
	TotalQuantity     float64 `json:"totalQuantity"`
	PerUnitPrice      float64 `json:"perUnitPrice"`
	TotalProductPrice float64 `json:"totalProductPrice"`
}
