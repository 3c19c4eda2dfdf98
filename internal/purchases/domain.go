package purchases

import (
	"errors"
	"time"
)

// PurchaseStatus distinguishes live purchases from voided ones.
type PurchaseStatus string

const (
	PurchaseActive PurchaseStatus = "ACTIVA"
	PurchaseVoided PurchaseStatus = "ANULADA"
)

// Purchase is a stock intake from a supplier.
type Purchase struct {
	ID          int64          `json:"id"`
	SupplierID  int64          `json:"supplier_id"`
	BuyerUserID int64          `json:"buyer_user_id"`
	Status      PurchaseStatus `json:"status"`
	Total       float64        `json:"total"`
	Lines       []PurchaseLine `json:"lines"`
	CreatedAt   time.Time      `json:"created_at"`
}

// PurchaseLine is a received product with quantity and unit cost.
type PurchaseLine struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitCost    float64 `json:"unit_cost"`
}

var (
	ErrNotFound      = errors.New("purchases: not found")
	ErrEmptyPurchase = errors.New("purchases: at least one line is required")
	ErrAlreadyVoided = errors.New("purchases: purchase is already voided")
	ErrInvalidLine   = errors.New("purchases: invalid line data")
	// ErrStockBelowZero blocks a void that would leave negative stock
	// because intake units were already sold.
	ErrStockBelowZero = errors.New("purchases: void would drive stock negative")
)
