package repository

import (
	"context"

	"hospital-scheduling/internal/domain/entity"
	domainRepo "hospital-scheduling/internal/domain/repository"

	"gorm.io/gorm"
)

// databaseCatalogProvider serves the catalog from the service's own tables.
type databaseCatalogProvider struct {
	db               *gorm.DB
	specialtyRepo    domainRepo.SpecialtyRepository
	doctorRepo       domainRepo.DoctorRepository
	availabilityRepo domainRepo.AvailabilityRepository
}

func NewDatabaseCatalogProvider(
	db *gorm.DB,
	specialtyRepo domainRepo.SpecialtyRepository,
	doctorRepo domainRepo.DoctorRepository,
	availabilityRepo domainRepo.AvailabilityRepository,
) domainRepo.CatalogProvider {
	return &databaseCatalogProvider{
		db:               db,
		specialtyRepo:    specialtyRepo,
		doctorRepo:       doctorRepo,
		availabilityRepo: availabilityRepo,
	}
}

func (p *databaseCatalogProvider) ListSpecialties(ctx context.Context) ([]entity.Specialty, error) {
	return p.specialtyRepo.FindAll(p.db.WithContext(ctx))
}

func (p *databaseCatalogProvider) ListDoctorsBySpecialty(ctx context.Context, specialtyID int64) ([]entity.Doctor, error) {
	return p.doctorRepo.FindActiveBySpecialty(p.db.WithContext(ctx), specialtyID)
}

func (p *databaseCatalogProvider) GetDoctor(ctx context.Context, doctorID int64) (*entity.Doctor, error) {
	return p.doctorRepo.FindByID(p.db.WithContext(ctx), doctorID)
}

func (p *databaseCatalogProvider) GetDoctorAvailabilityTemplate(ctx context.Context, doctorID int64) (entity.AvailabilityTemplate, error) {
	rows, err := p.availabilityRepo.FindByDoctorID(p.db.WithContext(ctx), doctorID)
	if err != nil {
		return nil, err
	}
	return entity.TemplateFromRows(rows), nil
}
