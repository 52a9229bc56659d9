package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CareSync360/models"
	"CareSync360/store"
)

func TestVerify(t *testing.T) {
	users := &fakeUsers{users: []models.User{
		{ID: "u1", Email: "a@x.com"},
		{ID: "u3", Email: "new@x.com"},
	}}
	verifier := NewVerifier(users)

	tests := []struct {
		name string
		appt models.Appointment
		want Outcome
	}{
		{
			name: "missing userId",
			appt: models.Appointment{ID: "apt1", UserID: "", PatientEmail: "a@x.com"},
			want: OutcomeMissingUserID,
		},
		{
			name: "dangling reference",
			appt: models.Appointment{ID: "apt2", UserID: "u9", PatientEmail: "b@x.com"},
			want: OutcomeUserNotFound,
		},
		{
			name: "email drifted",
			appt: models.Appointment{ID: "apt3", UserID: "u3", PatientEmail: "old@x.com"},
			want: OutcomeEmailMismatch,
		},
		{
			name: "healthy link",
			appt: models.Appointment{ID: "apt4", UserID: "u1", PatientEmail: "a@x.com"},
			want: OutcomeValid,
		},
		{
			name: "legacy record without patientEmail",
			appt: models.Appointment{ID: "apt5", UserID: "u1"},
			want: OutcomeValid,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := verifier.Verify(context.Background(), tt.appt)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Outcome)
			assert.Equal(t, tt.appt.ID, got.AppointmentID)
		})
	}
}

func TestVerifyMismatchCarriesBothEmails(t *testing.T) {
	users := &fakeUsers{users: []models.User{{ID: "u3", Email: "new@x.com"}}}
	verifier := NewVerifier(users)

	got, err := verifier.Verify(context.Background(), models.Appointment{
		ID: "apt3", UserID: "u3", PatientEmail: "old@x.com",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeEmailMismatch, got.Outcome)
	assert.Equal(t, "old@x.com", got.PatientEmail)
	assert.Equal(t, "new@x.com", got.UserEmail)
}

func TestVerifyDoesExactlyOneLookup(t *testing.T) {
	users := &fakeUsers{users: []models.User{{ID: "u1", Email: "a@x.com"}}}
	verifier := NewVerifier(users)

	_, err := verifier.Verify(context.Background(), models.Appointment{
		ID: "apt1", UserID: "u1", PatientEmail: "a@x.com",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, users.lookups)

	// No userId means no lookup at all.
	users.lookups = 0
	_, err = verifier.Verify(context.Background(), models.Appointment{ID: "apt2"})
	require.NoError(t, err)
	assert.Equal(t, 0, users.lookups)
}

func TestVerifyPropagatesStoreFailure(t *testing.T) {
	users := &fakeUsers{failAll: true}
	verifier := NewVerifier(users)

	_, err := verifier.Verify(context.Background(), models.Appointment{ID: "apt1", UserID: "u1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrStoreUnavailable)
}
