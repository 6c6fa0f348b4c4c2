package dto

import "github.com/shopspring/decimal"

type SpecialtyResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type SpecialtyListResponse struct {
	Specialties []SpecialtyResponse `json:"specialties"`
	Total       int                 `json:"total"`
}

type DoctorResponse struct {
	ID              int64              `json:"id"`
	FullName        string             `json:"full_name"`
	SpecialtyID     int64              `json:"specialty_id"`
	Specialty       *SpecialtyResponse `json:"specialty,omitempty"`
	LicenseNumber   string             `json:"license_number,omitempty"`
	ConsultationFee decimal.Decimal    `json:"consultation_fee"`
	IsActive        bool               `json:"is_active"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}
