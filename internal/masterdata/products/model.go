package products

// Product is a retail or internal-use item tracked in stock.
type Product struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	Stock        int     `json:"stock"`
	MinStock     int     `json:"min_stock"`
	CategoryID   int64   `json:"category_id"`
	CategoryName string  `json:"category_name,omitempty"`
	IsActive     bool    `json:"is_active"`
}
