package clients

import "errors"

// Client is a salon customer. Clients may exist without a linked user
// account; walk-ins are registered at the desk.
type Client struct {
	ID             int64  `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	DocumentType   string `json:"document_type"`
	DocumentNumber string `json:"document_number"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	UserID         *int64 `json:"user_id,omitempty"`
	IsActive       bool   `json:"is_active"`
}

var (
	ErrNotFound      = errors.New("clients: not found")
	ErrDocumentTaken = errors.New("clients: document number already registered")
	ErrEmailTaken    = errors.New("clients: email already registered")
	ErrHasHistory    = errors.New("clients: appointments or sales reference this client")
	ErrInvalidClient = errors.New("clients: invalid client data")
)
