package usecase

import (
	"context"

	"hospital-scheduling/internal/converter"
	"hospital-scheduling/internal/delivery/dto"
	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/internal/domain/repository"
	"hospital-scheduling/internal/service"
	"hospital-scheduling/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AppointmentQueryUsecase interface {
	GetAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)
	ListAppointments(ctx context.Context, filter *entity.AppointmentFilter) (*dto.AppointmentListResponse, error)
	GetAppointmentHistory(ctx context.Context, id uuid.UUID) (*dto.AuditLogListResponse, error)
}

type appointmentQueryUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	auditService    service.AuditService
}

func NewAppointmentQueryUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	auditService service.AuditService,
) AppointmentQueryUsecase {
	return &appointmentQueryUsecase{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		auditService:    auditService,
	}
}

func (u *appointmentQueryUsecase) GetAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentQueryUsecase) ListAppointments(ctx context.Context, filter *entity.AppointmentFilter) (*dto.AppointmentListResponse, error) {
	appointments, total, err := u.appointmentRepo.FindAll(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to list appointments: %+v", err)
		return nil, apperror.Upstream("failed to list appointments", err)
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        total,
	}, nil
}

// GetAppointmentHistory returns the audit trail of an appointment, oldest first
func (u *appointmentQueryUsecase) GetAppointmentHistory(ctx context.Context, id uuid.UUID) (*dto.AuditLogListResponse, error) {
	if _, err := u.find(ctx, id); err != nil {
		return nil, err
	}

	logs, err := u.auditService.History(ctx, id.String())
	if err != nil {
		return nil, apperror.Upstream("failed to load appointment history", err)
	}

	return &dto.AuditLogListResponse{
		AppointmentID: id,
		Logs:          converter.AuditLogsToResponses(logs),
		Total:         len(logs),
	}, nil
}

func (u *appointmentQueryUsecase) find(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, apperror.Upstream("failed to load appointment", err)
	}
	if appointment == nil {
		return nil, apperror.NotFound("appointment not found")
	}
	return appointment, nil
}
