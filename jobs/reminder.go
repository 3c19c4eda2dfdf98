package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/appointments"
	jobmetrics "github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// AppointmentLoader fetches the appointment the reminder refers to.
type AppointmentLoader interface {
	GetAppointment(ctx context.Context, id int64) (appointments.Appointment, error)
}

// ReminderJob sends confirmation reminders shortly before an appointment.
type ReminderJob struct {
	Appointments AppointmentLoader
	Logger       *slog.Logger
	Metrics      *jobmetrics.Metrics
}

// NewReminderJob wires dependencies for the reminder handler.
func NewReminderJob(loader AppointmentLoader, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReminderJob {
	return &ReminderJob{Appointments: loader, Logger: logger, Metrics: metrics}
}

// Handle processes TaskAppointmentReminder tasks. Appointments that were
// cancelled or already completed since scheduling are skipped silently.
func (j *ReminderJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Appointments == nil {
		return errors.New("reminder: handler not configured")
	}
	var payload AppointmentReminderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskAppointmentReminder)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Int64("appointment_id", payload.AppointmentID))

	appointment, err := j.Appointments.GetAppointment(ctx, payload.AppointmentID)
	if err != nil {
		if errors.Is(err, appointments.ErrNotFound) {
			logger.Info("reminder skipped, appointment gone")
			return nil
		}
		resultErr = err
		return resultErr
	}
	if appointment.Status != appointments.StatusConfirmed {
		logger.Info("reminder skipped", slog.String("status", string(appointment.Status)))
		return nil
	}

	// TODO: deliver through the notification channel once the mail
	// integration lands. Until then the reminder is only recorded.
	logger.Info("appointment reminder sent",
		slog.Int64("client_id", appointment.ClientID),
		slog.Time("start_time", appointment.StartTime))
	j.metrics().AddReminderSent()
	return nil
}

func (j *ReminderJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *ReminderJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

// ReminderLead is how far ahead of the start time the reminder fires.
const ReminderLead = 24 * time.Hour
