package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents where an appointment is in its lifecycle
type AppointmentStatus string

const (
	AppointmentStatusScheduled      AppointmentStatus = "SCHEDULED"
	AppointmentStatusInConsultation AppointmentStatus = "IN_CONSULTATION"
	AppointmentStatusCompleted      AppointmentStatus = "COMPLETED"
	AppointmentStatusCancelled      AppointmentStatus = "CANCELLED"
	AppointmentStatusNoShow         AppointmentStatus = "NO_SHOW"
)

// PaymentStatus is tracked alongside the appointment but never gates its status.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusProcessing PaymentStatus = "PROCESSING"
	PaymentStatusCompleted  PaymentStatus = "COMPLETED"
	PaymentStatusFailed     PaymentStatus = "FAILED"
	PaymentStatusRefunded   PaymentStatus = "REFUNDED"
)

// CapacityConsumingStatuses are the statuses counted against a time block's capacity.
// COMPLETED, CANCELLED and NO_SHOW appointments free their slot.
var CapacityConsumingStatuses = []AppointmentStatus{
	AppointmentStatusScheduled,
	AppointmentStatusInConsultation,
}

// Appointment is a booking of one patient into one doctor's time block on one date
type Appointment struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID          int64             `gorm:"not null;index" json:"patient_id"`
	DoctorID           int64             `gorm:"not null;index:idx_appointments_slot,priority:1" json:"doctor_id"`
	SpecialtyID        int64             `gorm:"not null;index" json:"specialty_id"`
	AppointmentDate    time.Time         `gorm:"type:date;not null;index:idx_appointments_slot,priority:2" json:"appointment_date"`
	TimeBlockID        string            `gorm:"type:varchar(50);not null;index:idx_appointments_slot,priority:3" json:"time_block_id"`
	Reason             string            `gorm:"type:text;not null" json:"reason"`
	Status             AppointmentStatus `gorm:"type:varchar(20);not null;default:'SCHEDULED';index" json:"status"`
	PaymentStatus      PaymentStatus     `gorm:"type:varchar(20);not null;default:'PENDING'" json:"payment_status"`
	CancellationReason *string           `gorm:"type:text" json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// OccupiesSlot reports whether the appointment already sits in the given slot
func (a *Appointment) OccupiesSlot(doctorID int64, date time.Time, timeBlockID string) bool {
	return a.DoctorID == doctorID &&
		a.TimeBlockID == timeBlockID &&
		a.AppointmentDate.Format("2006-01-02") == date.Format("2006-01-02")
}

// ConsumesCapacity reports whether the appointment counts against its block's capacity
func (a *Appointment) ConsumesCapacity() bool {
	for _, s := range CapacityConsumingStatuses {
		if a.Status == s {
			return true
		}
	}
	return false
}
