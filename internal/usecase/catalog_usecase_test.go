package usecase

import (
	"context"
	"errors"
	"testing"

	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/pkg/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestListDoctorsBySpecialty(t *testing.T) {
	catalog := &mockCatalog{}
	catalog.On("ListDoctorsBySpecialty", mock.Anything, int64(3)).Return([]entity.Doctor{
		{ID: 1, FullName: "Dr. Amelia Hart", SpecialtyID: 3, ConsultationFee: decimal.RequireFromString("150000"), IsActive: true},
	}, nil)
	uc := NewCatalogUsecase(quietLogger(), catalog)

	resp, err := uc.ListDoctorsBySpecialty(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "Dr. Amelia Hart", resp.Doctors[0].FullName)
	assert.True(t, resp.Doctors[0].ConsultationFee.Equal(decimal.NewFromInt(150000)))

	_, err = uc.ListDoctorsBySpecialty(context.Background(), 0)
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestListSpecialtiesWrapsRawFailures(t *testing.T) {
	catalog := &mockCatalog{}
	catalog.On("ListSpecialties", mock.Anything).Return(nil, errors.New("connection reset"))
	uc := NewCatalogUsecase(quietLogger(), catalog)

	_, err := uc.ListSpecialties(context.Background())
	assert.True(t, errors.Is(err, apperror.ErrUpstreamUnavailable))
}

func TestGetAvailabilityTemplateListsMondayFirst(t *testing.T) {
	catalog := &mockCatalog{}
	catalog.On("GetDoctorAvailabilityTemplate", mock.Anything, int64(1)).Return(entity.AvailabilityTemplate{
		entity.Sunday: {{ID: "SUN", Label: "Sunday clinic", TotalSlots: 1}},
		entity.Monday: {{ID: "AM", Label: "Morning", TotalSlots: 2}},
	}, nil)
	uc := NewCatalogUsecase(quietLogger(), catalog)

	resp, err := uc.GetAvailabilityTemplate(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, resp.Days, 2)
	assert.Equal(t, "Monday", resp.Days[0].DayName)
	assert.Equal(t, 7, resp.Days[1].Weekday)
	assert.Equal(t, "SUN", resp.Days[1].Blocks[0].ID)
}
