package repository

import (
	"time"

	"hospital-scheduling/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindAll(db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, int64, error)
	CountBooked(db *gorm.DB, doctorID int64, date time.Time, timeBlockID string, statuses []entity.AppointmentStatus) (int64, error)
	// ApplyTransition updates the row only while it is still in status from and returns rows affected.
	ApplyTransition(db *gorm.DB, id uuid.UUID, from entity.AppointmentStatus, changes map[string]interface{}) (int64, error)
	// ApplyPaymentTransition updates payment_status only while it is still from and returns rows affected.
	ApplyPaymentTransition(db *gorm.DB, id uuid.UUID, from, to entity.PaymentStatus) (int64, error)
}
