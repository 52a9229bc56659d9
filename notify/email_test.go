package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"CareSync360/services"
)

func TestEnabled(t *testing.T) {
	assert.False(t, NewMailer("", 587, "", "", "ops@example.com").Enabled())
	assert.False(t, NewMailer("smtp.example.com", 587, "", "", "").Enabled())
	assert.True(t, NewMailer("smtp.example.com", 587, "bot@example.com", "secret", "ops@example.com").Enabled())

	var nilMailer *Mailer
	assert.False(t, nilMailer.Enabled())
}

func TestMonitorBody(t *testing.T) {
	stats := &services.MonitorStats{
		WindowDays: 7,
		Since:      time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC),
		Total:      12,
		Valid:      10,
		Issues:     2,
		Details: []services.IssueDetail{
			{AppointmentID: "apt2", Kind: services.OutcomeMissingUserID, PatientName: "Bruno Keller", PatientEmail: "bruno@example.com", CreatedAt: "28/08/2026"},
			{AppointmentID: "apt3", Kind: services.OutcomeUserNotFound, PatientName: "Chioma Eze", PatientEmail: "chioma@example.com", CreatedAt: "29/08/2026"},
		},
	}

	body := monitorBody(stats)
	assert.Contains(t, body, "Checked 12 appointments created since 25/08/2026")
	assert.Contains(t, body, "Valid: 10, issues: 2")
	assert.Contains(t, body, "apt2 [missingUserId]")
	assert.Contains(t, body, "apt3 [userNotFound]")
}
