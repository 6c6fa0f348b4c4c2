package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/internal/domain/repository"
	"hospital-scheduling/pkg/apperror"
	"hospital-scheduling/pkg/validator"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const msgPastDate = "cannot query availability for a past date"

// AvailabilityUsecase computes per-block remaining capacity for a doctor on a date.
// It is read-only: it never reserves anything.
type AvailabilityUsecase interface {
	GetAvailableBlocks(ctx context.Context, doctorID int64, date string) (*entity.DayAvailability, error)
}

type availabilityUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	catalog         repository.CatalogProvider
	appointmentRepo repository.AppointmentRepository
	location        *time.Location
	now             func() time.Time
}

func NewAvailabilityUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	catalog repository.CatalogProvider,
	appointmentRepo repository.AppointmentRepository,
	location *time.Location,
) AvailabilityUsecase {
	if location == nil {
		location = time.UTC
	}
	return &availabilityUsecase{
		db:              db,
		log:             log,
		catalog:         catalog,
		appointmentRepo: appointmentRepo,
		location:        location,
		now:             time.Now,
	}
}

// GetAvailableBlocks returns the doctor's template blocks for the weekday of date,
// each with its booked and remaining slots.
//
// A day without defined hours yields an empty result with reason NO_DEFINED_HOURS.
// A day whose blocks are all exhausted yields the blocks with reason FULLY_BOOKED.
func (u *availabilityUsecase) GetAvailableBlocks(ctx context.Context, doctorID int64, date string) (*entity.DayAvailability, error) {
	if doctorID <= 0 {
		return nil, apperror.ValidationField("doctor_id", "doctor_id must be greater than 0")
	}

	day, err := time.ParseInLocation(validator.DateLayout, date, u.location)
	if err != nil {
		return nil, apperror.ValidationField("date", "date must be a valid date in YYYY-MM-DD format")
	}
	if day.Before(u.today()) {
		return nil, apperror.ValidationField("date", msgPastDate)
	}

	weekday := entity.ISOWeekday(day)

	template, err := u.catalog.GetDoctorAvailabilityTemplate(ctx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to load availability template for doctor %d: %+v", doctorID, err)
		return nil, apperror.AsUpstream("failed to load the doctor's availability template", err)
	}

	result := &entity.DayAvailability{
		DoctorID: doctorID,
		Date:     day,
		Weekday:  weekday,
		Blocks:   []entity.BlockAvailability{},
	}

	blocks := template[weekday]
	if len(blocks) == 0 {
		result.Reason = entity.AvailabilityReasonNoDefinedHours
		result.Message = fmt.Sprintf("doctor has no defined hours for %s", weekday)
		return result, nil
	}

	ordered := make([]entity.TimeBlock, len(blocks))
	copy(ordered, blocks)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SortOrder < ordered[j].SortOrder
	})

	db := u.db.WithContext(ctx)
	for _, block := range ordered {
		booked, err := u.appointmentRepo.CountBooked(db, doctorID, day, block.ID, entity.CapacityConsumingStatuses)
		if err != nil {
			u.log.Warnf("Failed to count bookings for doctor %d block %s on %s: %+v", doctorID, block.ID, date, err)
			return nil, apperror.Upstream("failed to count existing bookings", err)
		}

		available := block.TotalSlots - int(booked)
		if available < 0 {
			available = 0
		}
		if available > 0 {
			result.AvailableBlocksCount++
		}

		result.Blocks = append(result.Blocks, entity.BlockAvailability{
			TimeBlock:      block,
			BookedSlots:    int(booked),
			AvailableSlots: available,
		})
	}
	result.TotalBlocks = len(result.Blocks)

	if result.AvailableBlocksCount == 0 {
		result.Reason = entity.AvailabilityReasonFullyBooked
		result.Message = fmt.Sprintf("all time blocks on %s are fully booked", weekday)
	}

	return result, nil
}

// today is midnight of the current date in the clinic's timezone.
func (u *availabilityUsecase) today() time.Time {
	now := u.now().In(u.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, u.location)
}
