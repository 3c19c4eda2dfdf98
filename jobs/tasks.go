package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAppointmentReminder is the task type for confirmation reminders.
	TaskAppointmentReminder = "appointments:reminder"
	// TaskIdempotencyCleanup is the task type for purging stale idempotency keys.
	TaskIdempotencyCleanup = "maintenance:idempotency_cleanup"
)

// AppointmentReminderPayload identifies the appointment to remind about.
type AppointmentReminderPayload struct {
	AppointmentID int64     `json:"appointment_id"`
	StartTime     time.Time `json:"start_time"`
}

// NewAppointmentReminderTask constructs the reminder task.
func NewAppointmentReminderTask(payload AppointmentReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAppointmentReminder, data), nil
}

// NewIdempotencyCleanupTask constructs the cleanup task. It carries no payload;
// the retention window is configured on the handler.
func NewIdempotencyCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskIdempotencyCleanup, nil)
}
