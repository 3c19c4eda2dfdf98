package sales

import (
	"errors"
	"time"
)

// SaleStatus distinguishes live sales from voided ones.
type SaleStatus string

const (
	SaleActive SaleStatus = "ACTIVA"
	SaleVoided SaleStatus = "ANULADA"
)

// Sale is a point-of-sale receipt mixing product and service lines.
type Sale struct {
	ID           int64         `json:"id"`
	ClientID     int64         `json:"client_id"`
	SellerUserID int64         `json:"seller_user_id"`
	Status       SaleStatus    `json:"status"`
	Total        float64       `json:"total"`
	Products     []ProductLine `json:"products"`
	Services     []ServiceLine `json:"services"`
	CreatedAt    time.Time     `json:"created_at"`
}

// ProductLine is a sold product with quantity and the unit price frozen
// at sale time.
type ProductLine struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// ServiceLine is a performed treatment charged on the receipt.
type ServiceLine struct {
	ServiceID   int64   `json:"service_id"`
	ServiceName string  `json:"service_name,omitempty"`
	Price       float64 `json:"price"`
}

var (
	ErrNotFound          = errors.New("sales: not found")
	ErrEmptySale         = errors.New("sales: at least one line is required")
	ErrInsufficientStock = errors.New("sales: insufficient stock")
	ErrAlreadyVoided     = errors.New("sales: sale is already voided")
	ErrInvalidLine       = errors.New("sales: invalid line data")
)
