package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrMalformedRecord is returned when a stored document is missing a field the
// engine cannot work without (currently only the id).
var ErrMalformedRecord = errors.New("malformed record")

// Appointment is one scheduled clinical encounter. Reconciliation reads every
// field but may only ever write UserID and UpdatedAt; the descriptive fields
// are opaque payload owned by the booking flow.
type Appointment struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	UserID       string    `json:"userId,omitempty" bson:"userId,omitempty"`
	PatientEmail string    `json:"patientEmail,omitempty" bson:"patientEmail,omitempty"`
	PatientName  string    `json:"patientName,omitempty" bson:"patientName,omitempty"`
	Treatment    string    `json:"treatment,omitempty" bson:"treatment,omitempty"`
	Clinic       string    `json:"clinic,omitempty" bson:"clinic,omitempty"`
	Date         string    `json:"date,omitempty" bson:"date,omitempty"`
	Time         string    `json:"time,omitempty" bson:"time,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

func (a *Appointment) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("%w: appointment without id", ErrMalformedRecord)
	}
	return nil
}
