package domain

// DefaultStockCeiling caps a line's quantity when the available stock for its
// product is unknown.
const DefaultStockCeiling = 99

// CartLine is one product entry in a cart, keyed by ProductID. Name, Price and
// ThumbnailURL are display snapshots captured when the item was added; they
// are not re-fetched live.
type CartLine struct {
	ProductID      string  `json:"productId"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	ThumbnailURL   string  `json:"thumbnailUrl,omitempty"`
	InStock        bool    `json:"inStock"`
	AvailableStock *int    `json:"availableStock,omitempty"` // nil means unknown
	Qty            int     `json:"quantity"`
}

// MaxQty returns the largest quantity this line may hold.
func (l CartLine) MaxQty() int {
	if l.AvailableStock != nil {
		return *l.AvailableStock
	}
	return DefaultStockCeiling
}

// ProductSnapshot is the catalog view of a product at add time.
type ProductSnapshot struct {
	ProductID      string  `json:"productId"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	ThumbnailURL   string  `json:"thumbnailUrl,omitempty"`
	InStock        bool    `json:"inStock"`
	AvailableStock *int    `json:"availableStock,omitempty"`
}

// MaxQty returns the largest quantity a cart line for this product may hold.
func (p ProductSnapshot) MaxQty() int {
	if p.AvailableStock != nil {
		return *p.AvailableStock
	}
	return DefaultStockCeiling
}

// Line converts the snapshot into a cart line holding qty units.
func (p ProductSnapshot) Line(qty int) CartLine {
	return CartLine{
		ProductID:      p.ProductID,
		Name:           p.Name,
		Price:          p.Price,
		ThumbnailURL:   p.ThumbnailURL,
		InStock:        p.InStock,
		AvailableStock: p.AvailableStock,
		Qty:            qty,
	}
}

// CountItems sums the quantities across lines.
func CountItems(lines []CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Qty
	}
	return n
}
