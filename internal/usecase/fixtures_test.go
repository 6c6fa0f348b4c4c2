package usecase

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/internal/service"
	"hospital-scheduling/pkg/validator"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Monday 2030-01-07 and the days around it
const (
	testMonday  = "2030-01-07"
	testTuesday = "2030-01-08"
	testSunday  = "2030-01-13"
)

var testNow = time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC)

// testUpdatedAt is what the in-memory store stamps on every update
var testUpdatedAt = testNow.Add(time.Minute)

// newTestDB gives usecases a real *gorm.DB handle. The fakes below never touch it.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// memoryAppointments is an in-memory AppointmentRepository with the same
// conditional-update semantics as the database implementation.
type memoryAppointments struct {
	mu    sync.Mutex
	items map[uuid.UUID]entity.Appointment

	countErr  error
	createErr error
	counts    int
}

func newMemoryAppointments() *memoryAppointments {
	return &memoryAppointments{items: map[uuid.UUID]entity.Appointment{}}
}

func (m *memoryAppointments) Create(db *gorm.DB, appointment *entity.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	appointment.CreatedAt = testNow
	appointment.UpdatedAt = testNow
	m.items[appointment.ID] = *appointment
	return nil
}

func (m *memoryAppointments) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *memoryAppointments) FindAll(db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Appointment
	for _, a := range m.items {
		if filter.DoctorID != 0 && a.DoctorID != filter.DoctorID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		out = append(out, a)
	}
	return out, int64(len(out)), nil
}

func (m *memoryAppointments) CountBooked(db *gorm.DB, doctorID int64, date time.Time, timeBlockID string, statuses []entity.AppointmentStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts++
	if m.countErr != nil {
		return 0, m.countErr
	}
	var n int64
	for _, a := range m.items {
		if !a.OccupiesSlot(doctorID, date, timeBlockID) {
			continue
		}
		for _, s := range statuses {
			if a.Status == s {
				n++
				break
			}
		}
	}
	return n, nil
}

func (m *memoryAppointments) ApplyTransition(db *gorm.DB, id uuid.UUID, from entity.AppointmentStatus, changes map[string]interface{}) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok || a.Status != from {
		return 0, nil
	}
	for column, value := range changes {
		switch column {
		case "status":
			a.Status = value.(entity.AppointmentStatus)
		case "cancellation_reason":
			reason := value.(string)
			a.CancellationReason = &reason
		case "doctor_id":
			a.DoctorID = value.(int64)
		case "appointment_date":
			a.AppointmentDate = value.(time.Time)
		case "time_block_id":
			a.TimeBlockID = value.(string)
		}
	}
	a.UpdatedAt = testUpdatedAt
	m.items[id] = a
	return 1, nil
}

func (m *memoryAppointments) ApplyPaymentTransition(db *gorm.DB, id uuid.UUID, from, to entity.PaymentStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok || a.PaymentStatus != from {
		return 0, nil
	}
	a.PaymentStatus = to
	a.UpdatedAt = testUpdatedAt
	m.items[id] = a
	return 1, nil
}

// put stores a fixture appointment directly, bypassing the lifecycle
func (m *memoryAppointments) put(a entity.Appointment) entity.Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.PaymentStatus == "" {
		a.PaymentStatus = entity.PaymentStatusPending
	}
	m.items[a.ID] = a
	return a
}

type memoryAuditLogs struct {
	mu   sync.Mutex
	logs []entity.AuditLog
}

func (m *memoryAuditLogs) Create(db *gorm.DB, log *entity.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	log.ID = uuid.New()
	m.logs = append(m.logs, *log)
	return nil
}

func (m *memoryAuditLogs) FindByEntity(db *gorm.DB, entityType, entityID string) ([]entity.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.AuditLog
	for _, l := range m.logs {
		if l.EntityType == entityType && l.EntityID == entityID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memoryAuditLogs) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.logs))
	for i, l := range m.logs {
		out[i] = l.Action
	}
	return out
}

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) ListSpecialties(ctx context.Context) ([]entity.Specialty, error) {
	args := m.Called(ctx)
	specialties, _ := args.Get(0).([]entity.Specialty)
	return specialties, args.Error(1)
}

func (m *mockCatalog) ListDoctorsBySpecialty(ctx context.Context, specialtyID int64) ([]entity.Doctor, error) {
	args := m.Called(ctx, specialtyID)
	doctors, _ := args.Get(0).([]entity.Doctor)
	return doctors, args.Error(1)
}

func (m *mockCatalog) GetDoctor(ctx context.Context, doctorID int64) (*entity.Doctor, error) {
	args := m.Called(ctx, doctorID)
	doctor, _ := args.Get(0).(*entity.Doctor)
	return doctor, args.Error(1)
}

func (m *mockCatalog) GetDoctorAvailabilityTemplate(ctx context.Context, doctorID int64) (entity.AvailabilityTemplate, error) {
	args := m.Called(ctx, doctorID)
	template, _ := args.Get(0).(entity.AvailabilityTemplate)
	return template, args.Error(1)
}

// harness wires the three scheduling usecases over in-memory storage
type harness struct {
	appointments *memoryAppointments
	audit        *memoryAuditLogs
	catalog      *mockCatalog
	availability AvailabilityUsecase
	lifecycle    AppointmentLifecycleUsecase
	booking      BookingUsecase
	query        AppointmentQueryUsecase
}

func newHarness(t *testing.T, policy BookingPolicy) *harness {
	t.Helper()

	db := newTestDB(t)
	log := quietLogger()
	if policy.Location == nil {
		policy.Location = time.UTC
	}

	h := &harness{
		appointments: newMemoryAppointments(),
		audit:        &memoryAuditLogs{},
		catalog:      &mockCatalog{},
	}

	auditService := service.NewAuditService(db, log, h.audit)

	availability := NewAvailabilityUsecase(db, log, h.catalog, h.appointments, policy.Location).(*availabilityUsecase)
	availability.now = func() time.Time { return testNow }
	h.availability = availability

	h.lifecycle = NewAppointmentLifecycleUsecase(db, log, h.appointments, auditService)

	h.booking = NewBookingUsecase(log, validator.NewValidator(), h.availability, h.lifecycle, h.catalog, service.NewNoopSlotLocker(), policy)
	h.query = NewAppointmentQueryUsecase(db, log, h.appointments, auditService)
	return h
}

// withTemplate makes the catalog return template for doctorID
func (h *harness) withTemplate(doctorID int64, template entity.AvailabilityTemplate) *harness {
	h.catalog.On("GetDoctorAvailabilityTemplate", mock.Anything, doctorID).Return(template, nil)
	return h
}

func mondayAM(slots int) entity.AvailabilityTemplate {
	return entity.AvailabilityTemplate{
		entity.Monday: {{ID: "AM", Label: "Morning", StartTime: "08:00", EndTime: "12:00", TotalSlots: slots}},
	}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation(validator.DateLayout, s, time.UTC)
	require.NoError(t, err)
	return d
}
