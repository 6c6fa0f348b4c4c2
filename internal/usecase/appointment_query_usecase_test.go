package usecase

import (
	"context"
	"errors"
	"testing"

	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAppointment(t *testing.T) {
	h := newHarness(t, BookingPolicy{})
	a := scheduled(t, h)

	resp, err := h.query.GetAppointment(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, resp.ID)
	assert.Equal(t, testMonday, resp.AppointmentDate)

	_, err = h.query.GetAppointment(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestListAppointmentsFilters(t *testing.T) {
	h := newHarness(t, BookingPolicy{})
	scheduled(t, h)
	h.appointments.put(entity.Appointment{DoctorID: 2, AppointmentDate: mustDate(t, testMonday), TimeBlockID: "AM", Status: entity.AppointmentStatusCancelled})

	resp, err := h.query.ListAppointments(context.Background(), &entity.AppointmentFilter{DoctorID: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Total)
	assert.Equal(t, "CANCELLED", resp.Appointments[0].Status)
}

func TestHistoryOfUnknownAppointment(t *testing.T) {
	h := newHarness(t, BookingPolicy{})

	_, err := h.query.GetAppointmentHistory(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestHistoryRecordsActor(t *testing.T) {
	h := newHarness(t, BookingPolicy{})
	a := scheduled(t, h)

	ctx := entity.ContextWithActor(context.Background(), entity.Actor{Subject: "nurse-7", RoleID: entity.RoleIDAdmin})
	_, err := h.lifecycle.Confirm(ctx, a.ID)
	require.NoError(t, err)

	history, err := h.query.GetAppointmentHistory(context.Background(), a.ID)
	require.NoError(t, err)
	require.Len(t, history.Logs, 1)
	assert.Equal(t, "nurse-7", history.Logs[0].Actor)
	assert.Equal(t, "IN_CONSULTATION", history.Logs[0].NewValues["status"])
}
