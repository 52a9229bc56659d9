package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CareSync360/models"
)

func TestMonitorRecentChecksOnlyTheWindow(t *testing.T) {
	now := time.Now().UTC()
	appts := &fakeAppointments{appts: []models.Appointment{
		{ID: "old", UserID: "", PatientEmail: "a@x.com", CreatedAt: now.AddDate(0, 0, -30)},
		{ID: "fresh-ok", UserID: "u1", PatientEmail: "a@x.com", CreatedAt: now.AddDate(0, 0, -2)},
		{ID: "fresh-broken", UserID: "", PatientEmail: "b@x.com", CreatedAt: now.AddDate(0, 0, -1)},
	}}
	users := &fakeUsers{users: []models.User{{ID: "u1", Email: "a@x.com"}}}
	monitor := NewMonitor(appts, NewVerifier(users), zerolog.Nop())

	stats, err := monitor.Recent(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total, "records outside the window are not scanned")
	assert.Equal(t, 1, stats.Valid)
	assert.Equal(t, 1, stats.Issues)
	require.Len(t, stats.Details, 1)
	assert.Equal(t, "fresh-broken", stats.Details[0].AppointmentID)
	assert.Equal(t, 0, appts.writes, "the monitor never fixes anything")
}

func TestMonitorDetailsCarryTriageSnapshot(t *testing.T) {
	created := time.Now().UTC().AddDate(0, 0, -1)
	appts := &fakeAppointments{appts: []models.Appointment{{
		ID:           "apt1",
		UserID:       "u9",
		PatientEmail: "c@x.com",
		PatientName:  "Chioma Eze",
		Treatment:    "Consultation",
		Clinic:       "Downtown",
		Date:         "15/09/2026",
		Time:         "09:00",
		CreatedAt:    created,
	}}}
	monitor := NewMonitor(appts, NewVerifier(&fakeUsers{}), zerolog.Nop())

	stats, err := monitor.Recent(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, stats.Details, 1)

	d := stats.Details[0]
	assert.Equal(t, OutcomeUserNotFound, d.Kind)
	assert.Equal(t, created.Format("02/01/2006"), d.CreatedAt)
	assert.Equal(t, "Chioma Eze", d.PatientName)
	assert.Equal(t, "Consultation", d.Treatment)
	assert.Equal(t, "Downtown", d.Clinic)
	assert.Equal(t, "15/09/2026", d.Date)
	assert.Equal(t, "09:00", d.Time)
}

func TestMonitorDefaultsToSevenDays(t *testing.T) {
	monitor := NewMonitor(&fakeAppointments{}, NewVerifier(&fakeUsers{}), zerolog.Nop())

	stats, err := monitor.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultMonitorDays, stats.WindowDays)
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, -7), stats.Since, time.Minute)
}
