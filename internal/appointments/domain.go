package appointments

import (
	"errors"
	"time"
)

// Status tracks the appointment lifecycle.
type Status string

const (
	StatusPending   Status = "PENDIENTE"
	StatusConfirmed Status = "CONFIRMADA"
	StatusCompleted Status = "COMPLETADA"
	StatusCancelled Status = "CANCELADA"
)

// CanTransition reports whether the status may move to next. Completed
// and cancelled are terminal.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCompleted || next == StatusCancelled
	default:
		return false
	}
}

// Appointment is a scheduled visit with one or more treatment lines.
type Appointment struct {
	ID         int64             `json:"id"`
	ClientID   int64             `json:"client_id"`
	EmployeeID int64             `json:"employee_id"`
	StartTime  time.Time         `json:"start_time"`
	EndTime    time.Time         `json:"end_time"`
	Status     Status            `json:"status"`
	Total      float64           `json:"total"`
	Lines      []AppointmentLine `json:"lines"`
	CreatedAt  time.Time         `json:"created_at"`
}

// AppointmentLine is one booked treatment with the price frozen at
// booking time.
type AppointmentLine struct {
	ServiceID   int64   `json:"service_id"`
	ServiceName string  `json:"service_name"`
	Price       float64 `json:"price"`
}

var (
	ErrNotFound          = errors.New("appointments: not found")
	ErrNoServices        = errors.New("appointments: at least one service is required")
	ErrServiceInactive   = errors.New("appointments: service is inactive or unknown")
	ErrEmployeeBusy      = errors.New("appointments: employee is unavailable at that time")
	ErrInvalidTransition = errors.New("appointments: invalid status transition")
	ErrPastStart         = errors.New("appointments: start time is in the past")
)
