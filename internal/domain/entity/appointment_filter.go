package entity

import "time"

// AppointmentFilter is a domain-level filter for listing appointments.
// Used by repository layer to avoid coupling with delivery DTOs.
type AppointmentFilter struct {
	DoctorID  int64
	PatientID int64
	Date      *time.Time
	Status    AppointmentStatus
	Limit     int
	Offset    int
}
