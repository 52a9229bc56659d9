package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CareSync360/models"
	"CareSync360/services"
)

type stubUsers struct{ users map[string]models.User }

func (s *stubUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (s *stubUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, nil
}

type stubAppointments struct{ appts map[string]models.Appointment }

func (s *stubAppointments) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	if a, ok := s.appts[id]; ok {
		return &a, nil
	}
	return nil, nil
}

func (s *stubAppointments) ListAll(ctx context.Context, fn func(models.Appointment) error) error {
	for _, a := range s.appts {
		if err := fn(a); err != nil {
			return err
		}
	}
	return nil
}

func (s *stubAppointments) ListCreatedSince(ctx context.Context, since time.Time, fn func(models.Appointment) error) error {
	for _, a := range s.appts {
		if a.CreatedAt.Before(since) {
			continue
		}
		if err := fn(a); err != nil {
			return err
		}
	}
	return nil
}

func (s *stubAppointments) SetUser(ctx context.Context, appointmentID, userID string) error {
	a := s.appts[appointmentID]
	a.UserID = userID
	a.UpdatedAt = time.Now().UTC()
	s.appts[appointmentID] = a
	return nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := &stubUsers{users: map[string]models.User{
		"u1": {ID: "u1", Email: "a@x.com"},
	}}
	appts := &stubAppointments{appts: map[string]models.Appointment{
		"apt1": {ID: "apt1", UserID: "", PatientEmail: "a@x.com", CreatedAt: time.Now().UTC()},
	}}
	verifier := services.NewVerifier(users)

	r := gin.New()
	r.GET("/health", Health)
	Reconciliation(r, &Handler{
		Appointments: appts,
		Verifier:     verifier,
		Reconciler:   services.NewReconciler(appts, users, verifier, 1, zerolog.Nop()),
		Reporter:     services.NewReporter(appts, verifier, t.TempDir(), zerolog.Nop()),
		Monitor:      services.NewMonitor(appts, verifier, zerolog.Nop()),
		ReportDir:    t.TempDir(),
	})
	return r
}

func TestHealthRoute(t *testing.T) {
	r := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestVerifyAppointmentRoute(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/appointments/verify/apt1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), string(services.OutcomeMissingUserID))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/appointments/verify/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFixAppointmentRoute(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/appointments/fix/apt1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), string(services.FixUpdated))
	assert.Contains(t, w.Body.String(), "u1")
}

func TestLatestReportRouteWithoutReports(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reconciliation/reports/latest", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMonitorRouteRejectsBadDayCount(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reconciliation/monitor?days=zero", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
