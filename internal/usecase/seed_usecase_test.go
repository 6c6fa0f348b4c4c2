package usecase

import (
	"context"
	"testing"

	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/internal/domain/repository"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPlanSeedIsReproducible(t *testing.T) {
	first := planSeed(gofakeit.New(42), SeedOptions{DoctorsPerSpecialty: 2})
	second := planSeed(gofakeit.New(42), SeedOptions{DoctorsPerSpecialty: 2})

	assert.Equal(t, first, second)
}

func TestPlanSeedShape(t *testing.T) {
	plan := planSeed(gofakeit.New(7), SeedOptions{DoctorsPerSpecialty: 4})

	blockIDs := map[string]bool{}
	for _, b := range plan.timeBlocks {
		blockIDs[b.ID] = true
	}

	licenses := map[string]bool{}
	require.Len(t, plan.specialties, len(seedSpecialties))
	for _, sp := range plan.specialties {
		require.Len(t, sp.doctors, 4)
		for _, d := range sp.doctors {
			assert.False(t, licenses[d.doctor.LicenseNumber], "duplicate license %s", d.doctor.LicenseNumber)
			licenses[d.doctor.LicenseNumber] = true
			assert.True(t, d.doctor.ConsultationFee.IsPositive())

			require.NotEmpty(t, d.availability, d.doctor.FullName)
			seen := map[entity.Weekday]map[string]bool{}
			for _, row := range d.availability {
				assert.True(t, blockIDs[row.TimeBlockID], row.TimeBlockID)
				assert.True(t, row.Weekday >= entity.Monday && row.Weekday <= entity.Saturday)
				if seen[row.Weekday] == nil {
					seen[row.Weekday] = map[string]bool{}
				}
				assert.False(t, seen[row.Weekday][row.TimeBlockID], "duplicate template row")
				seen[row.Weekday][row.TimeBlockID] = true
			}
		}
	}

	result := plan.result()
	assert.Equal(t, len(seedSpecialties)*4, result.Doctors)
	assert.Equal(t, len(seedTimeBlocks), result.TimeBlocks)
}

type seededSpecialties struct {
	repository.SpecialtyRepository
}

func (seededSpecialties) FindAll(*gorm.DB) ([]entity.Specialty, error) {
	return []entity.Specialty{{ID: 1, Name: "Cardiology"}}, nil
}

func TestSeedSkipsPopulatedCatalog(t *testing.T) {
	u := NewSeedUsecase(newTestDB(t), quietLogger(), seededSpecialties{}, nil, nil)

	result, err := u.Seed(context.Background(), SeedOptions{})
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Zero(t, result.Doctors)
}
