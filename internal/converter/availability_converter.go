package converter

import (
	"hospital-scheduling/internal/delivery/dto"
	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/pkg/validator"
)

func TimeBlockToResponse(block entity.TimeBlock) dto.TimeBlockResponse {
	return dto.TimeBlockResponse{
		ID:         block.ID,
		Label:      block.Label,
		StartTime:  block.StartTime,
		EndTime:    block.EndTime,
		TotalSlots: block.TotalSlots,
	}
}

// AvailabilityToResponse converts a DayAvailability to AvailabilityResponse DTO
func AvailabilityToResponse(availability *entity.DayAvailability) *dto.AvailabilityResponse {
	if availability == nil {
		return nil
	}

	blocks := make([]dto.BlockAvailabilityResponse, len(availability.Blocks))
	for i, block := range availability.Blocks {
		blocks[i] = dto.BlockAvailabilityResponse{
			TimeBlockResponse: TimeBlockToResponse(block.TimeBlock),
			BookedSlots:       block.BookedSlots,
			AvailableSlots:    block.AvailableSlots,
		}
	}

	return &dto.AvailabilityResponse{
		DoctorID:             availability.DoctorID,
		Date:                 availability.Date.Format(validator.DateLayout),
		Weekday:              int(availability.Weekday),
		DayName:              availability.DayName(),
		TotalBlocks:          availability.TotalBlocks,
		AvailableBlocksCount: availability.AvailableBlocksCount,
		Blocks:               blocks,
		Reason:               string(availability.Reason),
		Message:              availability.Message,
	}
}

// TemplateToResponse lists the template Monday first. Days without blocks are omitted.
func TemplateToResponse(doctorID int64, template entity.AvailabilityTemplate) *dto.AvailabilityTemplateResponse {
	days := make([]dto.WeekdayTemplateResponse, 0, len(template))
	for day := entity.Monday; day <= entity.Sunday; day++ {
		blocks := template[day]
		if len(blocks) == 0 {
			continue
		}
		responses := make([]dto.TimeBlockResponse, len(blocks))
		for i, block := range blocks {
			responses[i] = TimeBlockToResponse(block)
		}
		days = append(days, dto.WeekdayTemplateResponse{
			Weekday: int(day),
			DayName: day.String(),
			Blocks:  responses,
		})
	}

	return &dto.AvailabilityTemplateResponse{
		DoctorID: doctorID,
		Days:     days,
	}
}
