package repository

import (
	"errors"

	"hospital-scheduling/internal/domain/entity"
	domainRepo "hospital-scheduling/internal/domain/repository"

	"gorm.io/gorm"
)

type specialtyRepository struct{}

func NewSpecialtyRepository() domainRepo.SpecialtyRepository {
	return &specialtyRepository{}
}

func (r *specialtyRepository) Create(db *gorm.DB, specialty *entity.Specialty) error {
	return db.Create(specialty).Error
}

func (r *specialtyRepository) FindAll(db *gorm.DB) ([]entity.Specialty, error) {
	var specialties []entity.Specialty
	err := db.Order("name ASC").Find(&specialties).Error
	if err != nil {
		return nil, err
	}
	return specialties, nil
}

type doctorRepository struct{}

func NewDoctorRepository() domainRepo.DoctorRepository {
	return &doctorRepository{}
}

func (r *doctorRepository) Create(db *gorm.DB, doctor *entity.Doctor) error {
	return db.Omit("Specialty").Create(doctor).Error
}

func (r *doctorRepository) FindByID(db *gorm.DB, id int64) (*entity.Doctor, error) {
	var doctor entity.Doctor
	err := db.Preload("Specialty").Where("id = ?", id).First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doctor, nil
}

func (r *doctorRepository) FindActiveBySpecialty(db *gorm.DB, specialtyID int64) ([]entity.Doctor, error) {
	var doctors []entity.Doctor
	err := db.Where("specialty_id = ? AND is_active = ?", specialtyID, true).
		Order("full_name ASC").
		Find(&doctors).Error
	if err != nil {
		return nil, err
	}
	return doctors, nil
}

type availabilityRepository struct{}

func NewAvailabilityRepository() domainRepo.AvailabilityRepository {
	return &availabilityRepository{}
}

func (r *availabilityRepository) CreateTimeBlock(db *gorm.DB, block *entity.TimeBlock) error {
	return db.Create(block).Error
}

func (r *availabilityRepository) CreateAvailability(db *gorm.DB, rows []entity.DoctorAvailability) error {
	if len(rows) == 0 {
		return nil
	}
	return db.Omit("TimeBlock").Create(&rows).Error
}

func (r *availabilityRepository) FindByDoctorID(db *gorm.DB, doctorID int64) ([]entity.DoctorAvailability, error) {
	var rows []entity.DoctorAvailability
	err := db.Preload("TimeBlock").
		Where("doctor_id = ?", doctorID).
		Order("weekday ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
