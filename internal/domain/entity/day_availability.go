package entity

import "time"

// AvailabilityReason explains an empty or exhausted availability result
type AvailabilityReason string

const (
	AvailabilityReasonNoDefinedHours AvailabilityReason = "NO_DEFINED_HOURS"
	AvailabilityReasonFullyBooked    AvailabilityReason = "FULLY_BOOKED"
)

// BlockAvailability is a template block with its remaining capacity on one date
type BlockAvailability struct {
	TimeBlock
	BookedSlots    int
	AvailableSlots int
}

// DayAvailability is the result of an availability query for one doctor and date
type DayAvailability struct {
	DoctorID             int64
	Date                 time.Time
	Weekday              Weekday
	TotalBlocks          int
	AvailableBlocksCount int
	Blocks               []BlockAvailability
	Reason               AvailabilityReason
	Message              string
}

func (d *DayAvailability) DayName() string {
	return d.Weekday.String()
}

// Block finds a block by id
func (d *DayAvailability) Block(id string) (*BlockAvailability, bool) {
	for i := range d.Blocks {
		if d.Blocks[i].ID == id {
			return &d.Blocks[i], true
		}
	}
	return nil, false
}
