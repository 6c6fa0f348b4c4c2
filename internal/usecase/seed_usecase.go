package usecase

import (
	"context"
	"fmt"

	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/internal/domain/repository"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const seedConcurrency = 4

var seedSpecialties = []string{
	"Cardiology",
	"Dermatology",
	"Endocrinology",
	"General Practice",
	"Neurology",
	"Ophthalmology",
	"Orthopedics",
	"Pediatrics",
}

var seedTimeBlocks = []entity.TimeBlock{
	{ID: "MORNING", Label: "Morning clinic", StartTime: "08:00", EndTime: "12:00", TotalSlots: 10, SortOrder: 1},
	{ID: "AFTERNOON", Label: "Afternoon clinic", StartTime: "13:00", EndTime: "16:00", TotalSlots: 8, SortOrder: 2},
	{ID: "EVENING", Label: "Evening clinic", StartTime: "17:00", EndTime: "20:00", TotalSlots: 6, SortOrder: 3},
}

type SeedOptions struct {
	DoctorsPerSpecialty int
	// Seed makes the generated catalog reproducible
	Seed uint64
}

type SeedResult struct {
	Specialties  int  `json:"specialties"`
	Doctors      int  `json:"doctors"`
	TimeBlocks   int  `json:"time_blocks"`
	Availability int  `json:"availability"`
	Skipped      bool `json:"skipped"`
}

// SeedUsecase fills an empty catalog with fake specialties, doctors and weekly templates
type SeedUsecase interface {
	Seed(ctx context.Context, opts SeedOptions) (*SeedResult, error)
}

type seedUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	specialtyRepo    repository.SpecialtyRepository
	doctorRepo       repository.DoctorRepository
	availabilityRepo repository.AvailabilityRepository
}

func NewSeedUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	specialtyRepo repository.SpecialtyRepository,
	doctorRepo repository.DoctorRepository,
	availabilityRepo repository.AvailabilityRepository,
) SeedUsecase {
	return &seedUsecase{
		db:               db,
		log:              log,
		specialtyRepo:    specialtyRepo,
		doctorRepo:       doctorRepo,
		availabilityRepo: availabilityRepo,
	}
}

type seedPlan struct {
	timeBlocks  []entity.TimeBlock
	specialties []seedSpecialtyPlan
}

type seedSpecialtyPlan struct {
	specialty entity.Specialty
	doctors   []seedDoctorPlan
}

type seedDoctorPlan struct {
	doctor       entity.Doctor
	availability []entity.DoctorAvailability
}

func (u *seedUsecase) Seed(ctx context.Context, opts SeedOptions) (*SeedResult, error) {
	db := u.db.WithContext(ctx)

	existing, err := u.specialtyRepo.FindAll(db)
	if err != nil {
		u.log.Warnf("Failed to check existing specialties: %+v", err)
		return nil, err
	}
	if len(existing) > 0 {
		u.log.Infof("Catalog already has %d specialties, skipping seed", len(existing))
		return &SeedResult{Skipped: true}, nil
	}

	plan := planSeed(gofakeit.New(opts.Seed), opts)

	err = db.Transaction(func(tx *gorm.DB) error {
		for i := range plan.timeBlocks {
			if err := u.availabilityRepo.CreateTimeBlock(tx, &plan.timeBlocks[i]); err != nil {
				return fmt.Errorf("time block %s: %w", plan.timeBlocks[i].ID, err)
			}
		}
		for i := range plan.specialties {
			if err := u.specialtyRepo.Create(tx, &plan.specialties[i].specialty); err != nil {
				return fmt.Errorf("specialty %s: %w", plan.specialties[i].specialty.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		u.log.Warnf("Failed to seed time blocks and specialties: %+v", err)
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(seedConcurrency)
	for i := range plan.specialties {
		sp := &plan.specialties[i]
		for j := range sp.doctors {
			doctor := &sp.doctors[j]
			doctor.doctor.SpecialtyID = sp.specialty.ID
			g.Go(func() error {
				return u.seedDoctor(gctx, doctor)
			})
		}
	}
	if err := g.Wait(); err != nil {
		u.log.Warnf("Failed to seed doctors: %+v", err)
		return nil, err
	}

	result := plan.result()
	u.log.Infof("Catalog seeded: %d specialties, %d doctors, %d time blocks, %d availability rows",
		result.Specialties, result.Doctors, result.TimeBlocks, result.Availability)
	return result, nil
}

func (u *seedUsecase) seedDoctor(ctx context.Context, plan *seedDoctorPlan) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := u.doctorRepo.Create(tx, &plan.doctor); err != nil {
			return fmt.Errorf("doctor %s: %w", plan.doctor.FullName, err)
		}
		for i := range plan.availability {
			plan.availability[i].DoctorID = plan.doctor.ID
		}
		if err := u.availabilityRepo.CreateAvailability(tx, plan.availability); err != nil {
			return fmt.Errorf("availability for doctor %d: %w", plan.doctor.ID, err)
		}
		return nil
	})
}

// planSeed builds the whole catalog up front so the same seed always yields the same data
func planSeed(faker *gofakeit.Faker, opts SeedOptions) seedPlan {
	perSpecialty := opts.DoctorsPerSpecialty
	if perSpecialty <= 0 {
		perSpecialty = 3
	}

	plan := seedPlan{timeBlocks: append([]entity.TimeBlock(nil), seedTimeBlocks...)}
	license := 0

	for _, name := range seedSpecialties {
		sp := seedSpecialtyPlan{
			specialty: entity.Specialty{Name: name, Description: name + " outpatient clinic"},
		}
		for i := 0; i < perSpecialty; i++ {
			license++
			fee := decimal.NewFromInt(int64(faker.Number(15, 60) * 10000))
			sp.doctors = append(sp.doctors, seedDoctorPlan{
				doctor: entity.Doctor{
					FullName:        "dr. " + faker.Name(),
					LicenseNumber:   fmt.Sprintf("SIP-%06d", license),
					ConsultationFee: fee,
					IsActive:        faker.Number(1, 10) > 1,
				},
				availability: planWeek(faker),
			})
		}
		plan.specialties = append(plan.specialties, sp)
	}

	return plan
}

// planWeek picks at least one working day from Monday to Saturday and one or more blocks on each
func planWeek(faker *gofakeit.Faker) []entity.DoctorAvailability {
	var rows []entity.DoctorAvailability
	for day := entity.Monday; day <= entity.Saturday; day++ {
		if faker.Bool() && !(len(rows) == 0 && day == entity.Saturday) {
			continue
		}
		for k, block := range seedTimeBlocks {
			if k > 0 && faker.Bool() {
				continue
			}
			rows = append(rows, entity.DoctorAvailability{Weekday: day, TimeBlockID: block.ID})
		}
	}
	return rows
}

func (p seedPlan) result() *SeedResult {
	result := &SeedResult{
		Specialties: len(p.specialties),
		TimeBlocks:  len(p.timeBlocks),
	}
	for _, sp := range p.specialties {
		result.Doctors += len(sp.doctors)
		for _, d := range sp.doctors {
			result.Availability += len(d.availability)
		}
	}
	return result
}
