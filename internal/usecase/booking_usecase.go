package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hospital-scheduling/internal/converter"
	"hospital-scheduling/internal/delivery/dto"
	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/internal/domain/repository"
	"hospital-scheduling/internal/service"
	"hospital-scheduling/pkg/apperror"
	"hospital-scheduling/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// BookingUsecase validates booking requests against live availability and hands
// accepted ones to the lifecycle manager.
type BookingUsecase interface {
	CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	RescheduleAppointment(ctx context.Context, id uuid.UUID, req *dto.RescheduleAppointmentRequest) (*dto.AppointmentResponse, error)
}

// BookingPolicy holds the tunable booking rules
type BookingPolicy struct {
	AllowDoctorChange bool
	Location          *time.Location
}

type bookingUsecase struct {
	log          *logrus.Logger
	validator    *validator.CustomValidator
	availability AvailabilityUsecase
	lifecycle    AppointmentLifecycleUsecase
	catalog      repository.CatalogProvider
	locker       service.SlotLocker
	policy       BookingPolicy
}

func NewBookingUsecase(
	log *logrus.Logger,
	validator *validator.CustomValidator,
	availability AvailabilityUsecase,
	lifecycle AppointmentLifecycleUsecase,
	catalog repository.CatalogProvider,
	locker service.SlotLocker,
	policy BookingPolicy,
) BookingUsecase {
	if policy.Location == nil {
		policy.Location = time.UTC
	}
	if locker == nil {
		locker = service.NewNoopSlotLocker()
	}
	return &bookingUsecase{
		log:          log,
		validator:    validator,
		availability: availability,
		lifecycle:    lifecycle,
		catalog:      catalog,
		locker:       locker,
		policy:       policy,
	}
}

// CreateAppointment books a patient into a time block.
//
// Flow:
// 1. Validate the request shape
// 2. Query the availability engine for the requested doctor and date
// 3. Reject when the block is not offered that day or has no slots left
// 4. Create the appointment in SCHEDULED through the lifecycle manager
//
// Steps 2-4 are not atomic unless slot locking is enabled.
func (u *bookingUsecase) CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	req.Reason = strings.TrimSpace(req.Reason)
	req.TimeBlockID = strings.TrimSpace(req.TimeBlockID)
	if err := u.validator.Validate(req); err != nil {
		return nil, apperror.Validation("", u.validator.FormatValidationErrors(err))
	}

	date, err := time.ParseInLocation(validator.DateLayout, req.AppointmentDate, u.policy.Location)
	if err != nil {
		return nil, apperror.ValidationField("appointment_date", "appointment_date must be a valid date in YYYY-MM-DD format")
	}

	key := service.SlotKey{DoctorID: req.DoctorID, Date: date, TimeBlockID: req.TimeBlockID}

	var created *entity.Appointment
	err = u.locker.WithSlotLock(ctx, key, func(ctx context.Context) error {
		if _, err := u.checkSlot(ctx, req.DoctorID, req.AppointmentDate, req.TimeBlockID, true); err != nil {
			return err
		}

		appointment := &entity.Appointment{
			PatientID:       req.PatientID,
			DoctorID:        req.DoctorID,
			SpecialtyID:     req.SpecialtyID,
			AppointmentDate: date,
			TimeBlockID:     req.TimeBlockID,
			Reason:          req.Reason,
			PaymentStatus:   entity.PaymentStatus(req.PaymentStatus),
		}

		var err error
		created, err = u.lifecycle.Create(ctx, appointment)
		return err
	})
	if err != nil {
		return nil, u.slotError(key, err)
	}

	return converter.AppointmentToResponse(created), nil
}

// RescheduleAppointment moves a SCHEDULED appointment to another date or block.
// Staying in the slot the appointment already holds skips the capacity check,
// since the appointment itself is one of the bookings counted there.
func (u *bookingUsecase) RescheduleAppointment(ctx context.Context, id uuid.UUID, req *dto.RescheduleAppointmentRequest) (*dto.AppointmentResponse, error) {
	req.TimeBlockID = strings.TrimSpace(req.TimeBlockID)
	if err := u.validator.Validate(req); err != nil {
		return nil, apperror.Validation("", u.validator.FormatValidationErrors(err))
	}

	date, err := time.ParseInLocation(validator.DateLayout, req.AppointmentDate, u.policy.Location)
	if err != nil {
		return nil, apperror.ValidationField("appointment_date", "appointment_date must be a valid date in YYYY-MM-DD format")
	}

	current, err := u.lifecycle.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, ok := current.Status.Next(entity.TransitionReschedule); !ok {
		return nil, apperror.InvalidTransition(string(current.Status), string(entity.TransitionReschedule))
	}

	doctorID, err := u.resolveDoctor(ctx, current, req.DoctorID)
	if err != nil {
		return nil, err
	}

	key := service.SlotKey{DoctorID: doctorID, Date: date, TimeBlockID: req.TimeBlockID}
	sameSlot := current.ConsumesCapacity() && current.OccupiesSlot(doctorID, date, req.TimeBlockID)

	var updated *entity.Appointment
	err = u.locker.WithSlotLock(ctx, key, func(ctx context.Context) error {
		if _, err := u.checkSlot(ctx, doctorID, req.AppointmentDate, req.TimeBlockID, !sameSlot); err != nil {
			return err
		}

		var err error
		updated, err = u.lifecycle.Reschedule(ctx, id, RescheduleChange{
			DoctorID:    doctorID,
			Date:        date,
			TimeBlockID: req.TimeBlockID,
		})
		return err
	})
	if err != nil {
		return nil, u.slotError(key, err)
	}

	return converter.AppointmentToResponse(updated), nil
}

// resolveDoctor returns the doctor the rescheduled appointment will be with.
func (u *bookingUsecase) resolveDoctor(ctx context.Context, current *entity.Appointment, requested int64) (int64, error) {
	if requested == 0 || requested == current.DoctorID {
		return current.DoctorID, nil
	}
	if !u.policy.AllowDoctorChange {
		return 0, apperror.ValidationField("doctor_id", "changing the doctor is not allowed when rescheduling")
	}

	doctor, err := u.catalog.GetDoctor(ctx, requested)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", requested, err)
		return 0, apperror.AsUpstream("failed to load doctor", err)
	}
	if doctor == nil || !doctor.IsActive {
		return 0, apperror.ValidationField("doctor_id", "doctor_id does not refer to an active doctor")
	}
	if doctor.SpecialtyID != current.SpecialtyID {
		return 0, apperror.ValidationField("doctor_id", "the new doctor must practise the appointment's specialty")
	}
	return doctor.ID, nil
}

// checkSlot asks the engine for the day and verifies the block is offered.
// With requireCapacity it also requires at least one free slot.
func (u *bookingUsecase) checkSlot(ctx context.Context, doctorID int64, date, timeBlockID string, requireCapacity bool) (*entity.BlockAvailability, error) {
	availability, err := u.availability.GetAvailableBlocks(ctx, doctorID, date)
	if err != nil {
		return nil, renameField(err, "date", "appointment_date")
	}

	block, ok := availability.Block(timeBlockID)
	if !ok {
		return nil, apperror.SlotUnavailable(fmt.Sprintf("time block %s is not offered on %s", timeBlockID, availability.DayName()))
	}
	if requireCapacity && block.AvailableSlots <= 0 {
		return nil, apperror.SlotUnavailable(fmt.Sprintf("time block %s on %s is fully booked", timeBlockID, date))
	}
	return block, nil
}

func (u *bookingUsecase) slotError(key service.SlotKey, err error) error {
	if errors.Is(err, service.ErrSlotLocked) {
		return apperror.SlotUnavailable(fmt.Sprintf("time block %s on %s is being booked by another request, try again", key.TimeBlockID, key.Date.Format(validator.DateLayout)))
	}
	if apperror.KindOf(err) != "" {
		return err
	}
	u.log.Warnf("Failed to lock slot %s: %+v", key, err)
	return apperror.Upstream("slot lock unavailable", err)
}

// renameField maps a validation field reported by the engine onto the request's field name.
func renameField(err error, from, to string) error {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperror.KindValidation {
		return err
	}
	msg, ok := appErr.Fields[from]
	if !ok {
		return err
	}

	fields := make(map[string]string, len(appErr.Fields))
	for k, v := range appErr.Fields {
		if k != from {
			fields[k] = v
		}
	}
	fields[to] = msg
	return apperror.Validation(appErr.Message, fields)
}
