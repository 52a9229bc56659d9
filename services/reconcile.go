package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"CareSync360/models"
	"CareSync360/store"
)

type FixStatus string

const (
	FixUnchanged FixStatus = "unchanged"
	FixUpdated   FixStatus = "updated"
	FixFailed    FixStatus = "failed"
)

// Reasons a fix could not be applied. These are per-record conditions, not
// store failures; a bulk run records them and keeps going.
type FixReason string

const (
	ReasonAppointmentNotFound FixReason = "appointmentNotFound"
	ReasonNoEmailOnRecord     FixReason = "noEmailOnRecord"
	ReasonNoMatchingUser      FixReason = "noMatchingUser"
	ReasonAmbiguousMatch      FixReason = "ambiguousMatch"
)

// FixResult records what one reconciliation attempt did, with both ids kept
// for audit.
type FixResult struct {
	AppointmentID string    `json:"appointmentId"`
	Status        FixStatus `json:"status"`
	OldUserID     string    `json:"oldUserId,omitempty"`
	NewUserID     string    `json:"newUserId,omitempty"`
	Reason        FixReason `json:"reason,omitempty"`
}

// BulkFixDetail is one non-valid appointment's entry in a bulk run.
type BulkFixDetail struct {
	AppointmentID string     `json:"appointmentId"`
	Outcome       Outcome    `json:"outcome,omitempty"`
	Fix           *FixResult `json:"fix,omitempty"`
	Error         string     `json:"error,omitempty"`
}

// BulkFixResult aggregates a full corrective sweep. Valid records are counted
// but carry no detail entry; everything else does.
type BulkFixResult struct {
	Total          int             `json:"total"`
	Valid          int             `json:"valid"`
	Fixed          int             `json:"fixed"`
	AlreadyCorrect int             `json:"alreadyCorrect"`
	Errors         int             `json:"errors"`
	Details        []BulkFixDetail `json:"details"`
}

// Reconciler re-derives the correct user for an appointment from its
// patientEmail and writes the reference back only when it differs. It is the
// only component allowed to mutate appointments, and it never touches users.
type Reconciler struct {
	appointments AppointmentStore
	users        UserSource
	verifier     *Verifier
	workers      int
	log          zerolog.Logger
}

func NewReconciler(appointments AppointmentStore, users UserSource, verifier *Verifier, workers int, log zerolog.Logger) *Reconciler {
	if workers < 1 {
		workers = 1
	}
	return &Reconciler{
		appointments: appointments,
		users:        users,
		verifier:     verifier,
		workers:      workers,
		log:          log,
	}
}

// Reconcile fixes a single appointment by id. Re-running it on an already
// fixed record always yields unchanged with zero writes. The returned error
// is non-nil only when the store itself failed; every per-record condition is
// expressed in the FixResult.
func (r *Reconciler) Reconcile(ctx context.Context, appointmentID string) (FixResult, error) {
	appt, err := r.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return FixResult{}, err
	}
	if appt == nil {
		return FixResult{AppointmentID: appointmentID, Status: FixFailed, Reason: ReasonAppointmentNotFound}, nil
	}
	return r.fix(ctx, *appt)
}

func (r *Reconciler) fix(ctx context.Context, appt models.Appointment) (FixResult, error) {
	result := FixResult{AppointmentID: appt.ID, OldUserID: appt.UserID}

	// Email is the sole source of truth for re-deriving identity. Without it
	// there is nothing to reconcile against.
	if appt.PatientEmail == "" {
		result.Status = FixFailed
		result.Reason = ReasonNoEmailOnRecord
		return result, nil
	}

	user, err := r.users.GetByEmail(ctx, appt.PatientEmail)
	if err != nil {
		if errors.Is(err, store.ErrAmbiguousMatch) {
			result.Status = FixFailed
			result.Reason = ReasonAmbiguousMatch
			return result, nil
		}
		return FixResult{}, err
	}
	if user == nil {
		result.Status = FixFailed
		result.Reason = ReasonNoMatchingUser
		return result, nil
	}

	if appt.UserID == user.ID {
		result.Status = FixUnchanged
		result.NewUserID = user.ID
		return result, nil
	}

	if err := r.appointments.SetUser(ctx, appt.ID, user.ID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			result.Status = FixFailed
			result.Reason = ReasonAppointmentNotFound
			return result, nil
		}
		return FixResult{}, err
	}

	result.Status = FixUpdated
	result.NewUserID = user.ID
	r.log.Info().
		Str("appointmentId", appt.ID).
		Str("oldUserId", result.OldUserID).
		Str("newUserId", user.ID).
		Msg("repaired user reference")
	return result, nil
}

// ReconcileAll sweeps the whole collection. Each record is verified first and
// skipped when already valid, so healthy data costs one user lookup and zero
// writes. Records are fanned out across a bounded worker pool; each
// appointment is handed to exactly one worker, and counters merge under a
// single mutex. Per-record failures are recorded and the sweep continues;
// only a store-connectivity failure aborts it.
func (r *Reconciler) ReconcileAll(ctx context.Context) (*BulkFixResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu     sync.Mutex
		result BulkFixResult
		fatal  error
	)
	setFatal := func(err error) {
		mu.Lock()
		if fatal == nil {
			fatal = err
		}
		mu.Unlock()
		cancel()
	}

	appts := make(chan models.Appointment)
	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for appt := range appts {
				detail, err := r.processOne(ctx, appt)
				if err != nil {
					setFatal(err)
					return
				}
				mu.Lock()
				result.Total++
				switch {
				case detail.Error != "":
					result.Errors++
					result.Details = append(result.Details, detail)
				case detail.Outcome == OutcomeValid:
					result.Valid++
				case detail.Fix != nil && detail.Fix.Status == FixUpdated:
					result.Fixed++
					result.Details = append(result.Details, detail)
				case detail.Fix != nil && detail.Fix.Status == FixUnchanged:
					result.AlreadyCorrect++
					result.Details = append(result.Details, detail)
				default:
					result.Errors++
					result.Details = append(result.Details, detail)
				}
				mu.Unlock()
			}
		}()
	}

	listErr := r.appointments.ListAll(ctx, func(appt models.Appointment) error {
		select {
		case appts <- appt:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	close(appts)
	wg.Wait()

	if fatal != nil {
		return &result, fatal
	}
	if listErr != nil && !errors.Is(listErr, context.Canceled) {
		return &result, listErr
	}
	return &result, nil
}

// processOne handles a single streamed appointment. The returned error is
// reserved for store-connectivity failures; anything else, panics included,
// becomes a detail entry so the sweep survives one bad record.
func (r *Reconciler) processOne(ctx context.Context, appt models.Appointment) (detail BulkFixDetail, fatal error) {
	detail.AppointmentID = appt.ID
	defer func() {
		if p := recover(); p != nil {
			detail.Error = fmt.Sprintf("panic: %v", p)
			fatal = nil
		}
	}()

	verification, err := r.verifier.Verify(ctx, appt)
	if err != nil {
		if errors.Is(err, store.ErrStoreUnavailable) {
			return detail, err
		}
		detail.Error = err.Error()
		return detail, nil
	}
	detail.Outcome = verification.Outcome
	if verification.Valid() {
		return detail, nil
	}

	fix, err := r.fix(ctx, appt)
	if err != nil {
		if errors.Is(err, store.ErrStoreUnavailable) {
			return detail, err
		}
		detail.Error = err.Error()
		return detail, nil
	}
	detail.Fix = &fix
	return detail, nil
}
