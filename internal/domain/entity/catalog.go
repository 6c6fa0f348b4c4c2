package entity

import "github.com/shopspring/decimal"

// Specialty is a medical specialty doctors are grouped under
type Specialty struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
}

func (Specialty) TableName() string {
	return "specialties"
}

// Doctor is the catalog view of a practitioner. Read-only to scheduling.
type Doctor struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	FullName        string          `gorm:"type:varchar(255);not null" json:"full_name"`
	SpecialtyID     int64           `gorm:"not null;index" json:"specialty_id"`
	LicenseNumber   string          `gorm:"type:varchar(50);uniqueIndex" json:"license_number,omitempty"`
	ConsultationFee decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"consultation_fee"`
	IsActive        bool            `gorm:"not null;default:true;index" json:"is_active"`

	// Relationships
	Specialty *Specialty `gorm:"foreignKey:SpecialtyID" json:"specialty,omitempty"`
}

func (Doctor) TableName() string {
	return "doctors"
}
