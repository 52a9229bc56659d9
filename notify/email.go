package notify

import (
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"CareSync360/services"
)

// Mailer sends run summaries over SMTP. It is entirely optional: when the
// SMTP settings are absent the engine runs without it, and a send failure is
// reported to the caller but must never fail a scan.
type Mailer struct {
	Host     string
	Port     int
	User     string
	Password string
	To       string
}

func NewMailer(host string, port int, user, password, to string) *Mailer {
	return &Mailer{Host: host, Port: port, User: user, Password: password, To: to}
}

func (m *Mailer) Enabled() bool {
	return m != nil && m.Host != "" && m.To != ""
}

// SendMonitorSummary mails the outcome of a windowed health check.
func (m *Mailer) SendMonitorSummary(stats *services.MonitorStats) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.User)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", fmt.Sprintf("Appointment link check: %d issue(s) in the last %d days", stats.Issues, stats.WindowDays))
	msg.SetBody("text/plain", monitorBody(stats))

	d := gomail.NewDialer(m.Host, m.Port, m.User, m.Password)
	return d.DialAndSend(msg)
}

func monitorBody(stats *services.MonitorStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Checked %d appointments created since %s.\n", stats.Total, stats.Since.Format("02/01/2006"))
	fmt.Fprintf(&b, "Valid: %d, issues: %d.\n\n", stats.Valid, stats.Issues)
	for _, d := range stats.Details {
		fmt.Fprintf(&b, "- %s [%s] patient=%q email=%q created=%s\n",
			d.AppointmentID, d.Kind, d.PatientName, d.PatientEmail, d.CreatedAt)
	}
	return b.String()
}
