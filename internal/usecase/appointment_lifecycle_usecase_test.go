package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/internal/service"
	"hospital-scheduling/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func scheduled(t *testing.T, h *harness) entity.Appointment {
	t.Helper()
	return h.appointments.put(entity.Appointment{
		PatientID:       10,
		DoctorID:        1,
		SpecialtyID:     3,
		AppointmentDate: mustDate(t, testMonday),
		TimeBlockID:     "AM",
		Reason:          "routine checkup",
		Status:          entity.AppointmentStatusScheduled,
	})
}

// every lifecycle operation, applied with its minimal valid arguments
func lifecycleOps(t *testing.T, h *harness) map[string]func(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	nextWeek := mustDate(t, testMonday).AddDate(0, 0, 7)
	return map[string]func(ctx context.Context, id uuid.UUID) (*entity.Appointment, error){
		"confirm":  h.lifecycle.Confirm,
		"complete": h.lifecycle.Complete,
		"no-show":  h.lifecycle.MarkNoShow,
		"cancel": func(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
			return h.lifecycle.Cancel(ctx, id, "patient request")
		},
		"reschedule": func(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
			return h.lifecycle.Reschedule(ctx, id, RescheduleChange{DoctorID: 1, Date: nextWeek, TimeBlockID: "PM"})
		},
	}
}

func TestCreateStartsScheduledAndPending(t *testing.T) {
	h := newHarness(t, BookingPolicy{})

	created, err := h.lifecycle.Create(context.Background(), &entity.Appointment{
		PatientID: 10, DoctorID: 1, SpecialtyID: 3,
		AppointmentDate: mustDate(t, testMonday), TimeBlockID: "AM", Reason: "routine checkup",
		Status: entity.AppointmentStatusCancelled,
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, entity.AppointmentStatusScheduled, created.Status)
	assert.Equal(t, entity.PaymentStatusPending, created.PaymentStatus)
	assert.Equal(t, []string{entity.AuditActionAppointmentCreate}, h.audit.actions())
}

func TestCreateKeepsCallerPaymentStatus(t *testing.T) {
	h := newHarness(t, BookingPolicy{})

	created, err := h.lifecycle.Create(context.Background(), &entity.Appointment{
		DoctorID: 1, AppointmentDate: mustDate(t, testMonday), TimeBlockID: "AM",
		PaymentStatus: entity.PaymentStatusCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusCompleted, created.PaymentStatus)

	_, err = h.lifecycle.Create(context.Background(), &entity.Appointment{PaymentStatus: "PAID"})
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestCreateStorageFailureIsUpstream(t *testing.T) {
	h := newHarness(t, BookingPolicy{})
	h.appointments.createErr = errors.New("insert failed")

	_, err := h.lifecycle.Create(context.Background(), &entity.Appointment{DoctorID: 1})
	assert.True(t, errors.Is(err, apperror.ErrUpstreamUnavailable))
	assert.Empty(t, h.audit.actions())
}

func TestHappyPathConfirmThenComplete(t *testing.T) {
	h := newHarness(t, BookingPolicy{})
	a := scheduled(t, h)

	confirmed, err := h.lifecycle.Confirm(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentStatusInConsultation, confirmed.Status)

	completed, err := h.lifecycle.Complete(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentStatusCompleted, completed.Status)

	stored, err := h.lifecycle.Get(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentStatusCompleted, stored.Status)
	assert.Equal(t, []string{entity.AuditActionAppointmentConfirm, entity.AuditActionAppointmentComplete}, h.audit.actions())
}

func TestCompleteRequiresConsultation(t *testing.T) {
	h := newHarness(t, BookingPolicy{})
	a := scheduled(t, h)

	_, err := h.lifecycle.Complete(context.Background(), a.ID)
	assert.True(t, errors.Is(err, apperror.ErrInvalidTransition))
	assert.EqualError(t, err, "INVALID_TRANSITION: cannot complete an appointment in status SCHEDULED")
}

func TestCancelStoresReason(t *testing.T) {
	h := newHarness(t, BookingPolicy{})
	a := scheduled(t, h)

	cancelled, err := h.lifecycle.Cancel(context.Background(), a.ID, "  patient request  ")
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancellationReason)
	assert.Equal(t, "patient request", *cancelled.CancellationReason)

	stored, _ := h.lifecycle.Get(context.Background(), a.ID)
	require.NotNil(t, stored.CancellationReason)
	assert.Equal(t, "patient request", *stored.CancellationReason)

	history, err := h.query.GetAppointmentHistory(context.Background(), a.ID)
	require.NoError(t, err)
	require.Equal(t, 1, history.Total)
	assert.Equal(t, entity.AuditActionAppointmentCancel, history.Logs[0].Action)
	assert.Equal(t, "SCHEDULED", history.Logs[0].OldValues["status"])
	assert.Equal(t, "patient request", history.Logs[0].NewValues["cancellation_reason"])
}

func TestCancelValidatesReason(t *testing.T) {
	h := newHarness(t, BookingPolicy{})
	a := scheduled(t, h)

	for _, reason := range []string{"", "   ", strings.Repeat("x", 501)} {
		_, err := h.lifecycle.Cancel(context.Background(), a.ID, reason)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperror.ErrValidation))
	}

	stored, _ := h.lifecycle.Get(context.Background(), a.ID)
	assert.Equal(t, entity.AppointmentStatusScheduled, stored.Status)
}

func TestCancelCountsReasonAfterTrimming(t *testing.T) {
	h := newHarness(t, BookingPolicy{})
	a := scheduled(t, h)

	cancelled, err := h.lifecycle.Cancel(context.Background(), a.ID, "\t "+strings.Repeat("x", 500)+" \n")
	require.NoError(t, err)
	require.NotNil(t, cancelled.CancellationReason)
	assert.Equal(t, strings.Repeat("x", 500), *cancelled.CancellationReason)
}

func TestMarkNoShow(t *testing.T) {
	h := newHarness(t, BookingPolicy{})
	a := scheduled(t, h)

	updated, err := h.lifecycle.MarkNoShow(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentStatusNoShow, updated.Status)
}

func TestTerminalStatesRejectEveryOperation(t *testing.T) {
	for _, status := range []entity.AppointmentStatus{
		entity.AppointmentStatusCompleted,
		entity.AppointmentStatusCancelled,
		entity.AppointmentStatusNoShow,
	} {
		h := newHarness(t, BookingPolicy{})
		a := h.appointments.put(entity.Appointment{DoctorID: 1, AppointmentDate: mustDate(t, testMonday), TimeBlockID: "AM", Status: status})

		for name, op := range lifecycleOps(t, h) {
			_, err := op(context.Background(), a.ID)
			assert.True(t, errors.Is(err, apperror.ErrInvalidTransition), "%s from %s", name, status)
		}

		stored, _ := h.lifecycle.Get(context.Background(), a.ID)
		assert.Equal(t, status, stored.Status)
		assert.Empty(t, h.audit.actions())
	}
}

func TestInConsultationOnlyCompletes(t *testing.T) {
	h := newHarness(t, BookingPolicy{})
	a := h.appointments.put(entity.Appointment{DoctorID: 1, AppointmentDate: mustDate(t, testMonday), TimeBlockID: "AM", Status: entity.AppointmentStatusInConsultation})

	for name, op := range lifecycleOps(t, h) {
		if name == "complete" {
			continue
		}
		_, err := op(context.Background(), a.ID)
		assert.True(t, errors.Is(err, apperror.ErrInvalidTransition), name)
	}

	_, err := h.lifecycle.Complete(context.Background(), a.ID)
	assert.NoError(t, err)
}

func TestTransitionsOnUnknownAppointment(t *testing.T) {
	h := newHarness(t, BookingPolicy{})

	for name, op := range lifecycleOps(t, h) {
		_, err := op(context.Background(), uuid.New())
		assert.True(t, errors.Is(err, apperror.ErrNotFound), name)
	}
}

func TestSecondCancelIsRejected(t *testing.T) {
	h := newHarness(t, BookingPolicy{})
	a := scheduled(t, h)

	_, err := h.lifecycle.Cancel(context.Background(), a.ID, "patient request")
	require.NoError(t, err)

	_, err = h.lifecycle.Cancel(context.Background(), a.ID, "patient request")
	assert.True(t, errors.Is(err, apperror.ErrInvalidTransition))
	assert.Contains(t, err.Error(), "CANCELLED")
}

// racingAppointments lets another writer move the appointment between read and update
type racingAppointments struct {
	*memoryAppointments
	winner entity.AppointmentStatus
}

func (r *racingAppointments) ApplyTransition(db *gorm.DB, id uuid.UUID, from entity.AppointmentStatus, changes map[string]interface{}) (int64, error) {
	r.mu.Lock()
	a := r.items[id]
	a.Status = r.winner
	r.items[id] = a
	r.mu.Unlock()
	return r.memoryAppointments.ApplyTransition(db, id, from, changes)
}

func TestLostRaceIsInvalidTransition(t *testing.T) {
	store := &racingAppointments{memoryAppointments: newMemoryAppointments(), winner: entity.AppointmentStatusNoShow}
	a := store.put(entity.Appointment{DoctorID: 1, AppointmentDate: mustDate(t, testMonday), TimeBlockID: "AM", Status: entity.AppointmentStatusScheduled})

	db, log, audit := newTestDB(t), quietLogger(), &memoryAuditLogs{}
	lifecycle := NewAppointmentLifecycleUsecase(db, log, store, service.NewAuditService(db, log, audit))

	_, err := lifecycle.Cancel(context.Background(), a.ID, "patient request")
	assert.True(t, errors.Is(err, apperror.ErrInvalidTransition))
	assert.EqualError(t, err, "INVALID_TRANSITION: cannot cancel an appointment in status NO_SHOW")

	stored, _ := store.FindByID(db, a.ID)
	assert.Equal(t, entity.AppointmentStatusNoShow, stored.Status)
	assert.Nil(t, stored.CancellationReason)
	assert.Empty(t, audit.actions())
}

func TestTransitionsReturnTheStoredRow(t *testing.T) {
	h := newHarness(t, BookingPolicy{})
	a := scheduled(t, h)

	confirmed, err := h.lifecycle.Confirm(context.Background(), a.ID)
	require.NoError(t, err)
	assert.True(t, confirmed.UpdatedAt.Equal(testUpdatedAt))

	paid, err := h.lifecycle.UpdatePaymentStatus(context.Background(), a.ID, entity.PaymentStatusProcessing)
	require.NoError(t, err)
	assert.True(t, paid.UpdatedAt.Equal(testUpdatedAt))
	assert.Equal(t, entity.AppointmentStatusInConsultation, paid.Status)
}

// blindAfterWrite fails every read once an update has gone through
type blindAfterWrite struct {
	*memoryAppointments
	written bool
}

func (b *blindAfterWrite) ApplyTransition(db *gorm.DB, id uuid.UUID, from entity.AppointmentStatus, changes map[string]interface{}) (int64, error) {
	b.written = true
	return b.memoryAppointments.ApplyTransition(db, id, from, changes)
}

func (b *blindAfterWrite) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	if b.written {
		return nil, errors.New("replica lagging")
	}
	return b.memoryAppointments.FindByID(db, id)
}

func TestTransitionSucceedsWhenReloadFails(t *testing.T) {
	store := &blindAfterWrite{memoryAppointments: newMemoryAppointments()}
	a := store.put(entity.Appointment{DoctorID: 1, AppointmentDate: mustDate(t, testMonday), TimeBlockID: "AM", Status: entity.AppointmentStatusScheduled})

	db, log, audit := newTestDB(t), quietLogger(), &memoryAuditLogs{}
	lifecycle := NewAppointmentLifecycleUsecase(db, log, store, service.NewAuditService(db, log, audit))

	cancelled, err := lifecycle.Cancel(context.Background(), a.ID, "patient request")
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancellationReason)
	assert.Equal(t, "patient request", *cancelled.CancellationReason)
	assert.Equal(t, []string{entity.AuditActionAppointmentCancel}, audit.actions())
}

func TestRescheduleKeepsStatus(t *testing.T) {
	h := newHarness(t, BookingPolicy{})
	a := scheduled(t, h)
	next := mustDate(t, testMonday).AddDate(0, 0, 7)

	updated, err := h.lifecycle.Reschedule(context.Background(), a.ID, RescheduleChange{DoctorID: 1, Date: next, TimeBlockID: "PM"})
	require.NoError(t, err)

	assert.Equal(t, entity.AppointmentStatusScheduled, updated.Status)
	assert.Equal(t, "PM", updated.TimeBlockID)
	assert.True(t, updated.AppointmentDate.Equal(next))

	stored, _ := h.lifecycle.Get(context.Background(), a.ID)
	assert.Equal(t, "PM", stored.TimeBlockID)
	assert.Equal(t, []string{entity.AuditActionAppointmentReschedule}, h.audit.actions())
}

func TestPaymentChain(t *testing.T) {
	h := newHarness(t, BookingPolicy{})
	a := scheduled(t, h)

	for _, next := range []entity.PaymentStatus{
		entity.PaymentStatusProcessing,
		entity.PaymentStatusCompleted,
		entity.PaymentStatusRefunded,
	} {
		updated, err := h.lifecycle.UpdatePaymentStatus(context.Background(), a.ID, next)
		require.NoError(t, err, next)
		assert.Equal(t, next, updated.PaymentStatus)
		assert.Equal(t, entity.AppointmentStatusScheduled, updated.Status)
	}

	_, err := h.lifecycle.UpdatePaymentStatus(context.Background(), a.ID, entity.PaymentStatusPending)
	assert.True(t, errors.Is(err, apperror.ErrInvalidTransition))

	_, err = h.lifecycle.UpdatePaymentStatus(context.Background(), a.ID, "PAID")
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestPaymentSkippingAStepIsRejected(t *testing.T) {
	h := newHarness(t, BookingPolicy{})
	a := scheduled(t, h)

	_, err := h.lifecycle.UpdatePaymentStatus(context.Background(), a.ID, entity.PaymentStatusRefunded)
	assert.True(t, errors.Is(err, apperror.ErrInvalidTransition))
	assert.EqualError(t, err, "INVALID_TRANSITION: cannot change payment status from PENDING to REFUNDED")
}

func TestPaymentIsIndependentOfAppointmentStatus(t *testing.T) {
	h := newHarness(t, BookingPolicy{})
	a := h.appointments.put(entity.Appointment{
		DoctorID: 1, AppointmentDate: mustDate(t, testMonday), TimeBlockID: "AM",
		Status:        entity.AppointmentStatusCancelled,
		PaymentStatus: entity.PaymentStatusProcessing,
	})

	updated, err := h.lifecycle.UpdatePaymentStatus(context.Background(), a.ID, entity.PaymentStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusCompleted, updated.PaymentStatus)
	assert.Equal(t, entity.AppointmentStatusCancelled, updated.Status)

	// and the appointment transition does not look at payment
	b := h.appointments.put(entity.Appointment{
		DoctorID: 1, AppointmentDate: mustDate(t, testMonday), TimeBlockID: "AM",
		Status:        entity.AppointmentStatusScheduled,
		PaymentStatus: entity.PaymentStatusFailed,
	})
	confirmed, err := h.lifecycle.Confirm(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusFailed, confirmed.PaymentStatus)
}
