package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/loomhouse/fabricdesk/internal/inventoryapi"
)

// MasterProduct aggregates every inventory record of one product.
type MasterProduct struct {
	ID          int64           `json:"id"`
	ProductName string          `json:"productName"`
	TotalYards  decimal.Decimal `json:"totalYards"`
	TotalPieces decimal.Decimal `json:"totalPieces"`
}

// Summarize groups inventory records by product name and sums the available yards and pieces.
// The id of the first record seen for a name wins; output keeps first-appearance order.
func Summarize(records []inventoryapi.InventoryRecord) []MasterProduct {
	index := make(map[string]int)
	products := make([]MasterProduct, 0)
	for _, record := range records {
		name := record.Product.ProductName
		pos, ok := index[name]
		if !ok {
			pos = len(products)
			index[name] = pos
			products = append(products, MasterProduct{
				ID:          record.Product.ID,
				ProductName: name,
				TotalYards:  decimal.Zero,
				TotalPieces: decimal.Zero,
			})
		}
		products[pos].TotalYards = products[pos].TotalYards.Add(decimal.NewFromFloat(record.YardAvailable))
		products[pos].TotalPieces = products[pos].TotalPieces.Add(decimal.NewFromFloat(record.PieceAvailable))
	}
	return products
}

// Catalog resolves product ids to display names.
type Catalog struct {
	products []MasterProduct
	byID     map[int64]int
}

// NewCatalog indexes the supplied master products.
func NewCatalog(products []MasterProduct) Catalog {
	byID := make(map[int64]int, len(products))
	for i, p := range products {
		if _, seen := byID[p.ID]; !seen {
			byID[p.ID] = i
		}
	}
	return Catalog{products: products, byID: byID}
}

// ProductName returns the display name of a product.
func (c Catalog) ProductName(id int64) (string, bool) {
	pos, ok := c.byID[id]
	if !ok {
		return "", false
	}
	return c.products[pos].ProductName, true
}
