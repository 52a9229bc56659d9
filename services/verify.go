package services

import (
	"context"

	"CareSync360/models"
)

// Outcome classifies one appointment's link to its user.
type Outcome string

const (
	OutcomeValid         Outcome = "valid"
	OutcomeMissingUserID Outcome = "missingUserId"
	OutcomeUserNotFound  Outcome = "userNotFound"
	OutcomeEmailMismatch Outcome = "emailMismatch"
)

// Verification is the result of classifying a single appointment. The email
// fields are filled in only as far as they are relevant to the outcome.
type Verification struct {
	AppointmentID string  `json:"appointmentId"`
	Outcome       Outcome `json:"outcome"`
	UserID        string  `json:"userId,omitempty"`
	PatientEmail  string  `json:"patientEmail,omitempty"`
	UserEmail     string  `json:"userEmail,omitempty"`
}

func (v Verification) Valid() bool { return v.Outcome == OutcomeValid }

// Verifier classifies appointment→user links. It performs exactly one user
// lookup per appointment and never writes.
type Verifier struct {
	users UserSource
}

func NewVerifier(users UserSource) *Verifier {
	return &Verifier{users: users}
}

// Verify classifies one appointment. The returned error is non-nil only when
// the store itself failed; a missing user is an outcome, not an error.
//
// A missing patientEmail skips the email comparison entirely: legacy records
// predate the denormalized field, and a link whose user exists should not be
// flagged over data the appointment never carried.
func (v *Verifier) Verify(ctx context.Context, appt models.Appointment) (Verification, error) {
	result := Verification{
		AppointmentID: appt.ID,
		UserID:        appt.UserID,
		PatientEmail:  appt.PatientEmail,
	}

	if appt.UserID == "" {
		result.Outcome = OutcomeMissingUserID
		return result, nil
	}

	user, err := v.users.GetByID(ctx, appt.UserID)
	if err != nil {
		return Verification{}, err
	}
	if user == nil {
		result.Outcome = OutcomeUserNotFound
		return result, nil
	}

	if appt.PatientEmail != "" && appt.PatientEmail != user.Email {
		result.Outcome = OutcomeEmailMismatch
		result.UserEmail = user.Email
		return result, nil
	}

	result.Outcome = OutcomeValid
	return result, nil
}
