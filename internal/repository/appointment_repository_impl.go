package repository

import (
	"errors"
	"time"

	"hospital-scheduling/internal/domain/entity"
	domainRepo "hospital-scheduling/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Create(appointment).Error
}

func (r *appointmentRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

// FindAll returns one page of appointments matching filter plus the total match count.
func (r *appointmentRepository) FindAll(db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, int64, error) {
	query := db.Model(&entity.Appointment{})

	if filter != nil {
		if filter.DoctorID > 0 {
			query = query.Where("doctor_id = ?", filter.DoctorID)
		}
		if filter.PatientID > 0 {
			query = query.Where("patient_id = ?", filter.PatientID)
		}
		if filter.Date != nil {
			query = query.Where("appointment_date = ?", filter.Date.Format("2006-01-02"))
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter != nil && filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var appointments []entity.Appointment
	err := query.Order("appointment_date DESC, created_at DESC").Find(&appointments).Error
	if err != nil {
		return nil, 0, err
	}
	return appointments, total, nil
}

func (r *appointmentRepository) CountBooked(db *gorm.DB, doctorID int64, date time.Time, timeBlockID string, statuses []entity.AppointmentStatus) (int64, error) {
	var count int64
	err := db.Model(&entity.Appointment{}).
		Where("doctor_id = ? AND appointment_date = ? AND time_block_id = ?", doctorID, date.Format("2006-01-02"), timeBlockID).
		Where("status IN ?", statuses).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *appointmentRepository) ApplyTransition(db *gorm.DB, id uuid.UUID, from entity.AppointmentStatus, changes map[string]interface{}) (int64, error) {
	result := db.Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(changes)
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) ApplyPaymentTransition(db *gorm.DB, id uuid.UUID, from, to entity.PaymentStatus) (int64, error) {
	result := db.Model(&entity.Appointment{}).
		Where("id = ? AND payment_status = ?", id, from).
		Update("payment_status", to)
	return result.RowsAffected, result.Error
}
