package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"CareSync360/models"
)

// DefaultMonitorDays is the trailing window checked when no day count is given.
const DefaultMonitorDays = 7

// MonitorStats summarizes one windowed health check.
type MonitorStats struct {
	WindowDays int           `json:"windowDays"`
	Since      time.Time     `json:"since"`
	Total      int           `json:"total"`
	Valid      int           `json:"valid"`
	Issues     int           `json:"issues"`
	Details    []IssueDetail `json:"details"`
}

// Monitor checks only appointments created within a trailing window. It runs
// the same per-record checks as the verifier but never fixes anything; the
// point is a cheap, frequent health signal over recent bookings instead of a
// full-corpus scan.
type Monitor struct {
	appointments AppointmentSource
	verifier     *Verifier
	log          zerolog.Logger
}

func NewMonitor(appointments AppointmentSource, verifier *Verifier, log zerolog.Logger) *Monitor {
	return &Monitor{appointments: appointments, verifier: verifier, log: log}
}

func (m *Monitor) Recent(ctx context.Context, daysBack int) (*MonitorStats, error) {
	if daysBack <= 0 {
		daysBack = DefaultMonitorDays
	}
	since := time.Now().UTC().AddDate(0, 0, -daysBack)
	stats := &MonitorStats{
		WindowDays: daysBack,
		Since:      since,
		Details:    []IssueDetail{},
	}

	err := m.appointments.ListCreatedSince(ctx, since, func(appt models.Appointment) error {
		verification, err := m.verifier.Verify(ctx, appt)
		if err != nil {
			return err
		}
		stats.Total++
		if verification.Valid() {
			stats.Valid++
			m.log.Debug().Str("appointmentId", appt.ID).Msg("link ok")
			return nil
		}
		stats.Issues++
		detail := issueFromVerification(verification)
		detail.CreatedAt = appt.CreatedAt.Format("02/01/2006")
		detail.PatientName = appt.PatientName
		detail.Treatment = appt.Treatment
		detail.Clinic = appt.Clinic
		detail.Date = appt.Date
		detail.Time = appt.Time
		stats.Details = append(stats.Details, detail)

		m.log.Warn().
			Str("appointmentId", appt.ID).
			Str("kind", string(verification.Outcome)).
			Str("patient", appt.PatientName).
			Str("createdAt", detail.CreatedAt).
			Msg("broken user reference")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}
