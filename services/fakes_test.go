package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"CareSync360/models"
	"CareSync360/store"
)

// fakeUsers is an in-memory UserSource. lookups counts GetByID calls so tests
// can assert the verifier does exactly one. Bulk runs hit the fakes from
// several workers, hence the mutex.
type fakeUsers struct {
	mu      sync.Mutex
	users   []models.User
	failAll bool
	lookups int
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	f.lookups++
	f.mu.Unlock()
	if f.failAll {
		return nil, fmt.Errorf("%w: connection refused", store.ErrStoreUnavailable)
	}
	for _, u := range f.users {
		if u.ID == id {
			user := u
			return &user, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.failAll {
		return nil, fmt.Errorf("%w: connection refused", store.ErrStoreUnavailable)
	}
	var matches []models.User
	for _, u := range f.users {
		if u.Email == email {
			matches = append(matches, u)
		}
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		user := matches[0]
		return &user, nil
	default:
		return nil, fmt.Errorf("%w: email %s", store.ErrAmbiguousMatch, email)
	}
}

// fakeAppointments is an in-memory AppointmentStore with a write counter.
type fakeAppointments struct {
	mu       sync.Mutex
	appts    []models.Appointment
	failList bool
	writes   int
}

func (f *fakeAppointments) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.appts {
		if a.ID == id {
			appt := a
			return &appt, nil
		}
	}
	return nil, nil
}

func (f *fakeAppointments) snapshot() []models.Appointment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Appointment(nil), f.appts...)
}

func (f *fakeAppointments) ListAll(ctx context.Context, fn func(models.Appointment) error) error {
	if f.failList {
		return fmt.Errorf("%w: connection refused", store.ErrStoreUnavailable)
	}
	for _, a := range f.snapshot() {
		if err := fn(a); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeAppointments) ListCreatedSince(ctx context.Context, since time.Time, fn func(models.Appointment) error) error {
	if f.failList {
		return fmt.Errorf("%w: connection refused", store.ErrStoreUnavailable)
	}
	for _, a := range f.snapshot() {
		if a.CreatedAt.Before(since) {
			continue
		}
		if err := fn(a); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeAppointments) SetUser(ctx context.Context, appointmentID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.appts {
		if f.appts[i].ID == appointmentID {
			f.appts[i].UserID = userID
			f.appts[i].UpdatedAt = time.Now().UTC()
			f.writes++
			return nil
		}
	}
	return mongo.ErrNoDocuments
}
