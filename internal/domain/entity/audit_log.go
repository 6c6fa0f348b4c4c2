package entity

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// AuditLog records one lifecycle transition of an appointment
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Actor      string    `gorm:"type:varchar(100);not null;index" json:"actor"`
	Action     string    `gorm:"type:varchar(100);not null;index" json:"action"`
	EntityType string    `gorm:"type:varchar(50);not null" json:"entity_type"`
	EntityID   string    `gorm:"type:varchar(64);not null;index" json:"entity_id"`
	OldValues  JSON      `gorm:"type:jsonb" json:"old_values,omitempty"`
	NewValues  JSON      `gorm:"type:jsonb" json:"new_values,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// JSON type for GORM JSONB support
type JSON map[string]interface{}

// Value returns json value, implement driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan scan value into Jsonb, implements sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	result := map[string]interface{}{}
	err := json.Unmarshal(bytes, &result)
	*j = JSON(result)
	return err
}

const AuditEntityAppointment = "appointment"

// Appointment audit actions
const (
	AuditActionAppointmentCreate     = "appointment.create"
	AuditActionAppointmentConfirm    = "appointment.confirm"
	AuditActionAppointmentComplete   = "appointment.complete"
	AuditActionAppointmentCancel     = "appointment.cancel"
	AuditActionAppointmentNoShow     = "appointment.no_show"
	AuditActionAppointmentReschedule = "appointment.reschedule"
	AuditActionPaymentUpdate         = "appointment.payment_update"
)

// AuditActionFor maps a lifecycle transition to its audit action
func AuditActionFor(t Transition) string {
	switch t {
	case TransitionConfirm:
		return AuditActionAppointmentConfirm
	case TransitionComplete:
		return AuditActionAppointmentComplete
	case TransitionCancel:
		return AuditActionAppointmentCancel
	case TransitionNoShow:
		return AuditActionAppointmentNoShow
	case TransitionReschedule:
		return AuditActionAppointmentReschedule
	}
	return "appointment." + string(t)
}
