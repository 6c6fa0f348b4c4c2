package dto

import (
	"hospital-scheduling/internal/domain/entity"
	"time"

	"github.com/google/uuid"
)

// Response DTOs

type AuditLogResponse struct {
	ID        uuid.UUID   `json:"id"`
	Actor     string      `json:"actor"`
	Action    string      `json:"action"`
	OldValues entity.JSON `json:"old_values,omitempty"`
	NewValues entity.JSON `json:"new_values,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

type AuditLogListResponse struct {
	AppointmentID uuid.UUID          `json:"appointment_id"`
	Logs          []AuditLogResponse `json:"logs"`
	Total         int                `json:"total"`
}
