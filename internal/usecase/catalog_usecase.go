package usecase

import (
	"context"

	"hospital-scheduling/internal/converter"
	"hospital-scheduling/internal/delivery/dto"
	"hospital-scheduling/internal/domain/repository"
	"hospital-scheduling/pkg/apperror"

	"github.com/sirupsen/logrus"
)

// CatalogUsecase exposes the read-only doctor catalog to API clients
type CatalogUsecase interface {
	ListSpecialties(ctx context.Context) (*dto.SpecialtyListResponse, error)
	ListDoctorsBySpecialty(ctx context.Context, specialtyID int64) (*dto.DoctorListResponse, error)
	GetAvailabilityTemplate(ctx context.Context, doctorID int64) (*dto.AvailabilityTemplateResponse, error)
}

type catalogUsecase struct {
	log     *logrus.Logger
	catalog repository.CatalogProvider
}

func NewCatalogUsecase(log *logrus.Logger, catalog repository.CatalogProvider) CatalogUsecase {
	return &catalogUsecase{
		log:     log,
		catalog: catalog,
	}
}

func (u *catalogUsecase) ListSpecialties(ctx context.Context) (*dto.SpecialtyListResponse, error) {
	specialties, err := u.catalog.ListSpecialties(ctx)
	if err != nil {
		u.log.Warnf("Failed to list specialties: %+v", err)
		return nil, apperror.AsUpstream("failed to list specialties", err)
	}

	return &dto.SpecialtyListResponse{
		Specialties: converter.SpecialtiesToResponses(specialties),
		Total:       len(specialties),
	}, nil
}

func (u *catalogUsecase) ListDoctorsBySpecialty(ctx context.Context, specialtyID int64) (*dto.DoctorListResponse, error) {
	if specialtyID <= 0 {
		return nil, apperror.ValidationField("specialty_id", "specialty_id must be greater than 0")
	}

	doctors, err := u.catalog.ListDoctorsBySpecialty(ctx, specialtyID)
	if err != nil {
		u.log.Warnf("Failed to list doctors for specialty %d: %+v", specialtyID, err)
		return nil, apperror.AsUpstream("failed to list doctors", err)
	}

	return &dto.DoctorListResponse{
		Doctors: converter.DoctorsToResponses(doctors),
		Total:   len(doctors),
	}, nil
}

func (u *catalogUsecase) GetAvailabilityTemplate(ctx context.Context, doctorID int64) (*dto.AvailabilityTemplateResponse, error) {
	if doctorID <= 0 {
		return nil, apperror.ValidationField("doctor_id", "doctor_id must be greater than 0")
	}

	template, err := u.catalog.GetDoctorAvailabilityTemplate(ctx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to load availability template for doctor %d: %+v", doctorID, err)
		return nil, apperror.AsUpstream("failed to load the doctor's availability template", err)
	}

	return converter.TemplateToResponse(doctorID, template), nil
}
