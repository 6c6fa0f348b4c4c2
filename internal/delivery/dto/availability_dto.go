package dto

type TimeBlockResponse struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	StartTime  string `json:"start_time,omitempty"`
	EndTime    string `json:"end_time,omitempty"`
	TotalSlots int    `json:"total_slots"`
}

type BlockAvailabilityResponse struct {
	TimeBlockResponse
	BookedSlots    int `json:"booked_slots"`
	AvailableSlots int `json:"available_slots"`
}

type AvailabilityResponse struct {
	DoctorID             int64                       `json:"doctor_id"`
	Date                 string                      `json:"date"`
	Weekday              int                         `json:"weekday"`
	DayName              string                      `json:"day_name"`
	TotalBlocks          int                         `json:"total_blocks"`
	AvailableBlocksCount int                         `json:"available_blocks_count"`
	Blocks               []BlockAvailabilityResponse `json:"blocks"`
	Reason               string                      `json:"reason,omitempty"`
	Message              string                      `json:"message,omitempty"`
}

type WeekdayTemplateResponse struct {
	Weekday int                 `json:"weekday"`
	DayName string              `json:"day_name"`
	Blocks  []TimeBlockResponse `json:"blocks"`
}

type AvailabilityTemplateResponse struct {
	DoctorID int64                     `json:"doctor_id"`
	Days     []WeekdayTemplateResponse `json:"days"`
}
