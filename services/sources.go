package services

import (
	"context"
	"time"

	"CareSync360/models"
)

// UserSource is the narrow read surface the engine needs from the users
// collection. Users are reference data only; there is deliberately no writer
// counterpart.
type UserSource interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// AppointmentSource streams appointments without loading the collection into
// memory. Both list methods hand records to fn one at a time and stop on the
// first error fn returns.
type AppointmentSource interface {
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	ListAll(ctx context.Context, fn func(models.Appointment) error) error
	ListCreatedSince(ctx context.Context, since time.Time, fn func(models.Appointment) error) error
}

// AppointmentWriter is the single mutation the reconciler may perform.
type AppointmentWriter interface {
	SetUser(ctx context.Context, appointmentID, userID string) error
}

// AppointmentStore is what the reconciler holds: read plus the one write.
type AppointmentStore interface {
	AppointmentSource
	AppointmentWriter
}
