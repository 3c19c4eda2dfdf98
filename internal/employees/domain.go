package employees

import (
	"errors"
	"time"
)

// Employee is a staff member who performs salon services.
type Employee struct {
	ID             int64   `json:"id"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	DocumentType   string  `json:"document_type"`
	DocumentNumber string  `json:"document_number"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	UserID         *int64  `json:"user_id,omitempty"`
	SpecialtyIDs   []int64 `json:"specialty_ids"`
	IsActive       bool    `json:"is_active"`
}

// Novelty is a schedule exception for an employee: a date range during
// which the employee is unavailable between StartHour and EndHour.
type Novelty struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employee_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	StartHour  string    `json:"start_hour"`
	EndHour    string    `json:"end_hour"`
	Reason     string    `json:"reason"`
}

var (
	ErrNotFound        = errors.New("employees: not found")
	ErrDocumentTaken   = errors.New("employees: document number already registered")
	ErrInvalidEmployee = errors.New("employees: invalid employee data")
	ErrInvalidNovelty  = errors.New("employees: invalid novelty data")
	ErrNoveltyOverlap  = errors.New("employees: novelty overlaps an existing one")
)
