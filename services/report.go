package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"CareSync360/models"
)

// IssueDetail describes one broken link. The report fills the identity and
// email fields; the monitor additionally snapshots the descriptive fields for
// manual triage.
type IssueDetail struct {
	AppointmentID string  `json:"appointmentId"`
	Kind          Outcome `json:"kind"`
	UserID        string  `json:"userId,omitempty"`
	PatientEmail  string  `json:"patientEmail,omitempty"`
	UserEmail     string  `json:"userEmail,omitempty"`

	CreatedAt   string `json:"createdAt,omitempty"`
	PatientName string `json:"patientName,omitempty"`
	Treatment   string `json:"treatment,omitempty"`
	Clinic      string `json:"clinic,omitempty"`
	Date        string `json:"date,omitempty"`
	Time        string `json:"time,omitempty"`
}

// ReportSummary totals the scan. Percentages are two-decimal values and are
// omitted entirely when the collection is empty.
type ReportSummary struct {
	Total                int      `json:"total"`
	ValidRelationships   int      `json:"validRelationships"`
	InvalidRelationships int      `json:"invalidRelationships"`
	ValidPercentage      *float64 `json:"validPercentage,omitempty"`
	InvalidPercentage    *float64 `json:"invalidPercentage,omitempty"`
}

// IssueCounts breaks the invalid total down by defect class.
type IssueCounts struct {
	MissingUserID int `json:"missingUserId"`
	UserNotFound  int `json:"userNotFound"`
	EmailMismatch int `json:"emailMismatch"`
}

// Report is the durable artifact of one full-collection health scan.
type Report struct {
	GeneratedAt    time.Time     `json:"generatedAt"`
	Summary        ReportSummary `json:"summary"`
	Issues         IssueCounts   `json:"issues"`
	DetailedIssues []IssueDetail `json:"detailedIssues"`
}

// Reporter scans every appointment, classifies each link, and writes the
// aggregate out as a JSON artifact. It is a pure read path; it never invokes
// the reconciler and never writes to either collection.
type Reporter struct {
	appointments AppointmentSource
	verifier     *Verifier
	dir          string
	log          zerolog.Logger
}

func NewReporter(appointments AppointmentSource, verifier *Verifier, dir string, log zerolog.Logger) *Reporter {
	return &Reporter{appointments: appointments, verifier: verifier, dir: dir, log: log}
}

func (r *Reporter) Generate(ctx context.Context) (*Report, error) {
	report := &Report{
		GeneratedAt:    time.Now().UTC(),
		DetailedIssues: []IssueDetail{},
	}

	err := r.appointments.ListAll(ctx, func(appt models.Appointment) error {
		verification, err := r.verifier.Verify(ctx, appt)
		if err != nil {
			return err
		}
		report.Summary.Total++
		if verification.Valid() {
			report.Summary.ValidRelationships++
			return nil
		}
		report.Summary.InvalidRelationships++
		switch verification.Outcome {
		case OutcomeMissingUserID:
			report.Issues.MissingUserID++
		case OutcomeUserNotFound:
			report.Issues.UserNotFound++
		case OutcomeEmailMismatch:
			report.Issues.EmailMismatch++
		}
		report.DetailedIssues = append(report.DetailedIssues, issueFromVerification(verification))
		return nil
	})
	if err != nil {
		return nil, err
	}

	if report.Summary.Total > 0 {
		report.Summary.ValidPercentage = percentage(report.Summary.ValidRelationships, report.Summary.Total)
		report.Summary.InvalidPercentage = percentage(report.Summary.InvalidRelationships, report.Summary.Total)
	}
	return report, nil
}

// Persist writes the report under the configured directory, naming the file
// from the generation timestamp with filename-unsafe characters replaced.
func (r *Reporter) Persist(report *Report) (string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report dir: %w", err)
	}
	name := ReportFilename(report.GeneratedAt)
	path := filepath.Join(r.dir, name)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	r.log.Info().Str("path", path).Int("issues", report.Summary.InvalidRelationships).Msg("report persisted")
	return path, nil
}

// LatestReportPath returns the newest persisted report, or "" when none exist.
func LatestReportPath(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	latest := ""
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		// Filenames sort chronologically because they embed RFC3339 timestamps.
		if e.Name() > latest {
			latest = e.Name()
		}
	}
	if latest == "" {
		return "", nil
	}
	return filepath.Join(dir, latest), nil
}

func ReportFilename(generatedAt time.Time) string {
	stamp := generatedAt.UTC().Format(time.RFC3339)
	stamp = strings.ReplaceAll(stamp, ":", "-")
	return fmt.Sprintf("relationship-report-%s.json", stamp)
}

func percentage(count, total int) *float64 {
	p := math.Round(float64(count)/float64(total)*10000) / 100
	return &p
}

func issueFromVerification(v Verification) IssueDetail {
	detail := IssueDetail{
		AppointmentID: v.AppointmentID,
		Kind:          v.Outcome,
		PatientEmail:  v.PatientEmail,
	}
	switch v.Outcome {
	case OutcomeUserNotFound:
		detail.UserID = v.UserID
	case OutcomeEmailMismatch:
		detail.UserID = v.UserID
		detail.UserEmail = v.UserEmail
	}
	return detail
}
