package jobs

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/appointments"
	jobmetrics "github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/jobs"
)

type mockLoader struct {
	appointment appointments.Appointment
	err         error
	calls       int
}

func (m *mockLoader) GetAppointment(_ context.Context, _ int64) (appointments.Appointment, error) {
	m.calls++
	return m.appointment, m.err
}

func reminderTask(t *testing.T, id int64) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(AppointmentReminderPayload{
		AppointmentID: id,
		StartTime:     time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return asynq.NewTask(TaskAppointmentReminder, payload)
}

func TestReminderDeliveredForConfirmedAppointment(t *testing.T) {
	loader := &mockLoader{appointment: appointments.Appointment{
		ID:       1,
		ClientID: 5,
		Status:   appointments.StatusConfirmed,
	}}
	job := NewReminderJob(loader, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	err := job.Handle(context.Background(), reminderTask(t, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, loader.calls)
}

func TestReminderSkipsCancelledAppointment(t *testing.T) {
	loader := &mockLoader{appointment: appointments.Appointment{
		ID:     1,
		Status: appointments.StatusCancelled,
	}}
	job := NewReminderJob(loader, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	err := job.Handle(context.Background(), reminderTask(t, 1))
	assert.NoError(t, err)
}

func TestReminderSkipsMissingAppointment(t *testing.T) {
	loader := &mockLoader{err: appointments.ErrNotFound}
	job := NewReminderJob(loader, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	err := job.Handle(context.Background(), reminderTask(t, 99))
	assert.NoError(t, err)
}

func TestReminderRejectsMalformedPayload(t *testing.T) {
	loader := &mockLoader{}
	job := NewReminderJob(loader, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	err := job.Handle(context.Background(), asynq.NewTask(TaskAppointmentReminder, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Zero(t, loader.calls)
}
