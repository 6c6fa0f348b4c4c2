package service

import (
	"context"

	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AuditService interface {
	// LogTransition records an appointment change. Failures are logged and swallowed.
	LogTransition(ctx context.Context, tx *gorm.DB, action string, appointmentID string, oldValues, newValues entity.JSON)
	History(ctx context.Context, appointmentID string) ([]entity.AuditLog, error)
}

type auditService struct {
	db        *gorm.DB
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(db *gorm.DB, log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		db:        db,
		log:       log,
		auditRepo: auditRepo,
	}
}

func (s *auditService) LogTransition(ctx context.Context, tx *gorm.DB, action string, appointmentID string, oldValues, newValues entity.JSON) {
	if tx == nil {
		tx = s.db.WithContext(ctx)
	}

	auditLog := &entity.AuditLog{
		Actor:      entity.ActorFromContext(ctx).Subject,
		Action:     action,
		EntityType: entity.AuditEntityAppointment,
		EntityID:   appointmentID,
		OldValues:  oldValues,
		NewValues:  newValues,
	}

	if err := s.auditRepo.Create(tx, auditLog); err != nil {
		s.log.Warnf("Failed to create audit log for %s %s: %+v", action, appointmentID, err)
	}
}

func (s *auditService) History(ctx context.Context, appointmentID string) ([]entity.AuditLog, error) {
	logs, err := s.auditRepo.FindByEntity(s.db.WithContext(ctx), entity.AuditEntityAppointment, appointmentID)
	if err != nil {
		s.log.Warnf("Failed to load audit history for %s: %+v", appointmentID, err)
		return nil, err
	}
	return logs, nil
}
