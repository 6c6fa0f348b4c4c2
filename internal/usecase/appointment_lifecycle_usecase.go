package usecase

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/internal/domain/repository"
	"hospital-scheduling/internal/service"
	"hospital-scheduling/pkg/apperror"
	"hospital-scheduling/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const maxCancellationReasonLength = 500

// RescheduleChange is the new slot of a rescheduled appointment
type RescheduleChange struct {
	DoctorID    int64
	Date        time.Time
	TimeBlockID string
}

// AppointmentLifecycleUsecase owns every status change of an appointment.
// Each transition is applied with a compare-and-set on the current status,
// so two concurrent transitions on the same appointment cannot both succeed.
type AppointmentLifecycleUsecase interface {
	Create(ctx context.Context, appointment *entity.Appointment) (*entity.Appointment, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Appointment, error)
	Confirm(ctx context.Context, id uuid.UUID) (*entity.Appointment, error)
	Complete(ctx context.Context, id uuid.UUID) (*entity.Appointment, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string) (*entity.Appointment, error)
	MarkNoShow(ctx context.Context, id uuid.UUID) (*entity.Appointment, error)
	Reschedule(ctx context.Context, id uuid.UUID, change RescheduleChange) (*entity.Appointment, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status entity.PaymentStatus) (*entity.Appointment, error)
}

type appointmentLifecycleUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	auditService    service.AuditService
}

func NewAppointmentLifecycleUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	auditService service.AuditService,
) AppointmentLifecycleUsecase {
	return &appointmentLifecycleUsecase{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		auditService:    auditService,
	}
}

// Create persists a new appointment in SCHEDULED. Capacity is the caller's concern.
func (u *appointmentLifecycleUsecase) Create(ctx context.Context, appointment *entity.Appointment) (*entity.Appointment, error) {
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	appointment.Status = entity.AppointmentStatusScheduled
	if appointment.PaymentStatus == "" {
		appointment.PaymentStatus = entity.PaymentStatusPending
	}
	if !appointment.PaymentStatus.IsValid() {
		return nil, apperror.ValidationField("payment_status", "payment_status is not a known payment status")
	}

	db := u.db.WithContext(ctx)
	if err := u.appointmentRepo.Create(db, appointment); err != nil {
		u.log.Warnf("Failed to create appointment for doctor %d on %s: %+v",
			appointment.DoctorID, appointment.AppointmentDate.Format(validator.DateLayout), err)
		return nil, apperror.Upstream("failed to store appointment", err)
	}

	u.auditService.LogTransition(ctx, db, entity.AuditActionAppointmentCreate, appointment.ID.String(), nil, snapshot(appointment))

	u.log.Infof("Appointment created: id=%s, doctor=%d, date=%s, block=%s",
		appointment.ID, appointment.DoctorID, appointment.AppointmentDate.Format(validator.DateLayout), appointment.TimeBlockID)
	return appointment, nil
}

func (u *appointmentLifecycleUsecase) Get(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, apperror.Upstream("failed to load appointment", err)
	}
	if appointment == nil {
		return nil, apperror.NotFound("appointment not found")
	}
	return appointment, nil
}

func (u *appointmentLifecycleUsecase) Confirm(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	return u.transition(ctx, id, entity.TransitionConfirm, nil, nil)
}

func (u *appointmentLifecycleUsecase) Complete(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	return u.transition(ctx, id, entity.TransitionComplete, nil, nil)
}

func (u *appointmentLifecycleUsecase) Cancel(ctx context.Context, id uuid.UUID, reason string) (*entity.Appointment, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperror.ValidationField("reason", "a cancellation reason is required")
	}
	if utf8.RuneCountInString(reason) > maxCancellationReasonLength {
		return nil, apperror.ValidationField("reason", "reason must be at most 500 characters")
	}

	changes := map[string]interface{}{"cancellation_reason": reason}
	return u.transition(ctx, id, entity.TransitionCancel, changes, func(a *entity.Appointment) {
		a.CancellationReason = &reason
	})
}

func (u *appointmentLifecycleUsecase) MarkNoShow(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	return u.transition(ctx, id, entity.TransitionNoShow, nil, nil)
}

// Reschedule moves a SCHEDULED appointment to a new slot. The status stays SCHEDULED.
func (u *appointmentLifecycleUsecase) Reschedule(ctx context.Context, id uuid.UUID, change RescheduleChange) (*entity.Appointment, error) {
	changes := map[string]interface{}{
		"doctor_id":        change.DoctorID,
		"appointment_date": change.Date,
		"time_block_id":    change.TimeBlockID,
	}
	return u.transition(ctx, id, entity.TransitionReschedule, changes, func(a *entity.Appointment) {
		a.DoctorID = change.DoctorID
		a.AppointmentDate = change.Date
		a.TimeBlockID = change.TimeBlockID
	})
}

// UpdatePaymentStatus advances the payment chain. It never touches the appointment status.
func (u *appointmentLifecycleUsecase) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status entity.PaymentStatus) (*entity.Appointment, error) {
	if !status.IsValid() {
		return nil, apperror.ValidationField("payment_status", "payment_status is not a known payment status")
	}

	appointment, err := u.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	from := appointment.PaymentStatus
	if !from.CanTransitionTo(status) {
		return nil, apperror.InvalidTransitionf("cannot change payment status from %s to %s", from, status)
	}

	db := u.db.WithContext(ctx)
	rows, err := u.appointmentRepo.ApplyPaymentTransition(db, id, from, status)
	if err != nil {
		u.log.Warnf("Failed to update payment status of appointment %s: %+v", id, err)
		return nil, apperror.Upstream("failed to update payment status", err)
	}
	if rows == 0 {
		// lost a race against another payment update
		return nil, apperror.InvalidTransitionf("payment status of appointment %s changed concurrently", id)
	}

	appointment.PaymentStatus = status
	appointment = u.reload(db, appointment)

	u.auditService.LogTransition(ctx, db, entity.AuditActionPaymentUpdate, id.String(),
		entity.JSON{"payment_status": string(from)}, entity.JSON{"payment_status": string(status)})

	u.log.Infof("Appointment payment updated: id=%s, %s -> %s", id, from, status)
	return appointment, nil
}

func (u *appointmentLifecycleUsecase) transition(
	ctx context.Context,
	id uuid.UUID,
	op entity.Transition,
	changes map[string]interface{},
	apply func(a *entity.Appointment),
) (*entity.Appointment, error) {
	appointment, err := u.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	from := appointment.Status
	next, ok := from.Next(op)
	if !ok {
		return nil, apperror.InvalidTransition(string(from), string(op))
	}

	if changes == nil {
		changes = map[string]interface{}{}
	}
	changes["status"] = next
	before := snapshot(appointment)

	db := u.db.WithContext(ctx)
	rows, err := u.appointmentRepo.ApplyTransition(db, id, from, changes)
	if err != nil {
		u.log.Warnf("Failed to %s appointment %s: %+v", op, id, err)
		return nil, apperror.Upstream("failed to update appointment", err)
	}
	if rows == 0 {
		// Someone else moved it first. Report against the state that won.
		current := from
		if latest, err := u.appointmentRepo.FindByID(db, id); err == nil && latest != nil {
			current = latest.Status
		}
		return nil, apperror.InvalidTransition(string(current), string(op))
	}

	appointment.Status = next
	if apply != nil {
		apply(appointment)
	}
	appointment = u.reload(db, appointment)

	u.auditService.LogTransition(ctx, db, entity.AuditActionFor(op), id.String(), before, snapshot(appointment))

	u.log.Infof("Appointment %s: id=%s, %s -> %s", op, id, from, next)
	return appointment, nil
}

// reload returns the stored row after an update so timestamps come from the
// database. If the read fails the update already happened, so the locally
// patched copy is returned instead.
func (u *appointmentLifecycleUsecase) reload(db *gorm.DB, patched *entity.Appointment) *entity.Appointment {
	stored, err := u.appointmentRepo.FindByID(db, patched.ID)
	if err != nil || stored == nil {
		u.log.Warnf("Failed to reload appointment %s after update: %+v", patched.ID, err)
		return patched
	}
	return stored
}

// snapshot is the audited view of an appointment
func snapshot(a *entity.Appointment) entity.JSON {
	values := entity.JSON{
		"status":           string(a.Status),
		"payment_status":   string(a.PaymentStatus),
		"doctor_id":        a.DoctorID,
		"appointment_date": a.AppointmentDate.Format(validator.DateLayout),
		"time_block_id":    a.TimeBlockID,
	}
	if a.CancellationReason != nil {
		values["cancellation_reason"] = *a.CancellationReason
	}
	return values
}
