package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateAppointmentRequest struct {
	PatientID       int64  `json:"patient_id" validate:"required,gt=0"`
	DoctorID        int64  `json:"doctor_id" validate:"required,gt=0"`
	SpecialtyID     int64  `json:"specialty_id" validate:"required,gt=0"`
	AppointmentDate string `json:"appointment_date" validate:"required,date"`
	TimeBlockID     string `json:"time_block_id" validate:"required,max=50"`
	Reason          string `json:"reason" validate:"required,min=5,max=500"`
	PaymentStatus   string `json:"payment_status" validate:"omitempty,oneof=PENDING PROCESSING COMPLETED FAILED REFUNDED"`
}

type RescheduleAppointmentRequest struct {
	AppointmentDate string `json:"appointment_date" validate:"required,date"`
	TimeBlockID     string `json:"time_block_id" validate:"required,max=50"`
	// DoctorID is optional. Zero keeps the current doctor.
	DoctorID int64 `json:"doctor_id" validate:"omitempty,gt=0"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required,oneof=PENDING PROCESSING COMPLETED FAILED REFUNDED"`
}

// Response DTOs

type AppointmentResponse struct {
	ID                 uuid.UUID `json:"id"`
	PatientID          int64     `json:"patient_id"`
	DoctorID           int64     `json:"doctor_id"`
	SpecialtyID        int64     `json:"specialty_id"`
	AppointmentDate    string    `json:"appointment_date"`
	TimeBlockID        string    `json:"time_block_id"`
	Reason             string    `json:"reason"`
	Status             string    `json:"status"`
	PaymentStatus      string    `json:"payment_status"`
	CancellationReason *string   `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int64                 `json:"total"`
}
