package entity

// TimeBlock is a named interval of a working day with a fixed multi-patient capacity
type TimeBlock struct {
	ID         string `gorm:"type:varchar(50);primaryKey" json:"id"`
	Label      string `gorm:"type:varchar(100);not null" json:"label"`
	StartTime  string `gorm:"type:varchar(5)" json:"start_time,omitempty"` // HH:MM
	EndTime    string `gorm:"type:varchar(5)" json:"end_time,omitempty"`
	TotalSlots int    `gorm:"not null" json:"total_slots"`
	SortOrder  int    `gorm:"not null;default:0" json:"sort_order"`
}

func (TimeBlock) TableName() string {
	return "time_blocks"
}

// DoctorAvailability is one (weekday, time block) pair of a doctor's weekly template
type DoctorAvailability struct {
	ID          int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	DoctorID    int64   `gorm:"not null;uniqueIndex:idx_doctor_weekday_block,priority:1" json:"doctor_id"`
	Weekday     Weekday `gorm:"type:smallint;not null;uniqueIndex:idx_doctor_weekday_block,priority:2" json:"weekday"`
	TimeBlockID string  `gorm:"type:varchar(50);not null;uniqueIndex:idx_doctor_weekday_block,priority:3" json:"time_block_id"`

	// Relationships
	TimeBlock TimeBlock `gorm:"foreignKey:TimeBlockID" json:"time_block,omitempty"`
}

func (DoctorAvailability) TableName() string {
	return "doctor_availabilities"
}

// AvailabilityTemplate is a doctor's weekly working-hour template keyed by ISO weekday
type AvailabilityTemplate map[Weekday][]TimeBlock

// TemplateFromRows groups availability rows by weekday. Rows must have TimeBlock loaded.
func TemplateFromRows(rows []DoctorAvailability) AvailabilityTemplate {
	template := make(AvailabilityTemplate)
	for _, row := range rows {
		template[row.Weekday] = append(template[row.Weekday], row.TimeBlock)
	}
	return template
}
