package repository

import (
	"context"

	"hospital-scheduling/internal/domain/entity"

	"gorm.io/gorm"
)

// CatalogProvider supplies specialties, doctors and weekly templates.
// Implementations may be local tables or a remote catalog service.
type CatalogProvider interface {
	ListSpecialties(ctx context.Context) ([]entity.Specialty, error)
	ListDoctorsBySpecialty(ctx context.Context, specialtyID int64) ([]entity.Doctor, error)
	// GetDoctor returns nil, nil when the doctor does not exist.
	GetDoctor(ctx context.Context, doctorID int64) (*entity.Doctor, error)
	GetDoctorAvailabilityTemplate(ctx context.Context, doctorID int64) (entity.AvailabilityTemplate, error)
}

type SpecialtyRepository interface {
	Create(db *gorm.DB, specialty *entity.Specialty) error
	FindAll(db *gorm.DB) ([]entity.Specialty, error)
}

type DoctorRepository interface {
	Create(db *gorm.DB, doctor *entity.Doctor) error
	FindByID(db *gorm.DB, id int64) (*entity.Doctor, error)
	FindActiveBySpecialty(db *gorm.DB, specialtyID int64) ([]entity.Doctor, error)
}

type AvailabilityRepository interface {
	CreateTimeBlock(db *gorm.DB, block *entity.TimeBlock) error
	CreateAvailability(db *gorm.DB, rows []entity.DoctorAvailability) error
	FindByDoctorID(db *gorm.DB, doctorID int64) ([]entity.DoctorAvailability, error)
}
