package suppliers

// Supplier is a merchandise provider referenced by purchases.
type Supplier struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	DocumentType   string `json:"document_type"`
	DocumentNumber string `json:"document_number"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	Address        string `json:"address"`
	IsActive       bool   `json:"is_active"`
}
