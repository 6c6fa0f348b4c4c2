package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"hospital-scheduling/internal/converter"
	"hospital-scheduling/internal/delivery/dto"
	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/internal/usecase"
	"hospital-scheduling/pkg/response"
	"hospital-scheduling/pkg/validator"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

type AppointmentHandler struct {
	bookingUsecase   usecase.BookingUsecase
	lifecycleUsecase usecase.AppointmentLifecycleUsecase
	queryUsecase     usecase.AppointmentQueryUsecase
	validator        *validator.CustomValidator
	log              *logrus.Logger
}

func NewAppointmentHandler(
	bookingUsecase usecase.BookingUsecase,
	lifecycleUsecase usecase.AppointmentLifecycleUsecase,
	queryUsecase usecase.AppointmentQueryUsecase,
	validator *validator.CustomValidator,
	log *logrus.Logger,
) *AppointmentHandler {
	return &AppointmentHandler{
		bookingUsecase:   bookingUsecase,
		lifecycleUsecase: lifecycleUsecase,
		queryUsecase:     queryUsecase,
		validator:        validator,
		log:              log,
	}
}

// CreateAppointment validation happens in the booking usecase so that every
// caller gets the same field errors.
func (h *AppointmentHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	appointment, err := h.bookingUsecase.CreateAppointment(r.Context(), &req)
	if err != nil {
		writeError(w, h.log, err, "Failed to create appointment")
		return
	}

	response.Success(w, http.StatusCreated, "Appointment created successfully", appointment)
}

func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := pathUUID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	appointment, err := h.queryUsecase.GetAppointment(r.Context(), appointmentID)
	if err != nil {
		writeError(w, h.log, err, "Failed to get appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment retrieved successfully", appointment)
}

// ListAppointments supports doctor_id, patient_id, date, status, page and per_page query parameters
func (h *AppointmentHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	filter, page, perPage, fieldErrors := parseAppointmentFilter(r)
	if len(fieldErrors) > 0 {
		response.ValidationError(w, fieldErrors)
		return
	}

	appointments, err := h.queryUsecase.ListAppointments(r.Context(), filter)
	if err != nil {
		writeError(w, h.log, err, "Failed to get appointments")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Appointments retrieved successfully",
		appointments.Appointments, response.NewMeta(page, perPage, appointments.Total))
}

func (h *AppointmentHandler) RescheduleAppointment(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := pathUUID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	var req dto.RescheduleAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	appointment, err := h.bookingUsecase.RescheduleAppointment(r.Context(), appointmentID, &req)
	if err != nil {
		writeError(w, h.log, err, "Failed to reschedule appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment rescheduled successfully", appointment)
}

func (h *AppointmentHandler) ConfirmAppointment(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.lifecycleUsecase.Confirm, "Appointment confirmed successfully", "Failed to confirm appointment")
}

func (h *AppointmentHandler) CompleteAppointment(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.lifecycleUsecase.Complete, "Appointment completed successfully", "Failed to complete appointment")
}

func (h *AppointmentHandler) MarkNoShow(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.lifecycleUsecase.MarkNoShow, "Appointment marked as no-show", "Failed to mark appointment as no-show")
}

func (h *AppointmentHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := pathUUID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	var req dto.CancelAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.lifecycleUsecase.Cancel(r.Context(), appointmentID, req.Reason)
	if err != nil {
		writeError(w, h.log, err, "Failed to cancel appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment cancelled successfully", converter.AppointmentToResponse(appointment))
}

func (h *AppointmentHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := pathUUID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	var req dto.UpdatePaymentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.lifecycleUsecase.UpdatePaymentStatus(r.Context(), appointmentID, entity.PaymentStatus(req.PaymentStatus))
	if err != nil {
		writeError(w, h.log, err, "Failed to update payment status")
		return
	}

	response.Success(w, http.StatusOK, "Payment status updated successfully", converter.AppointmentToResponse(appointment))
}

func (h *AppointmentHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, id uuid.UUID) (*entity.Appointment, error),
	successMessage, failureMessage string,
) {
	appointmentID, ok := pathUUID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	appointment, err := op(r.Context(), appointmentID)
	if err != nil {
		writeError(w, h.log, err, failureMessage)
		return
	}

	response.Success(w, http.StatusOK, successMessage, converter.AppointmentToResponse(appointment))
}

func parseAppointmentFilter(r *http.Request) (*entity.AppointmentFilter, int, int, map[string]string) {
	query := r.URL.Query()
	fieldErrors := map[string]string{}
	filter := &entity.AppointmentFilter{}

	parseID := func(name string) int64 {
		raw := query.Get(name)
		if raw == "" {
			return 0
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			fieldErrors[name] = name + " must be a positive integer"
			return 0
		}
		return id
	}
	filter.DoctorID = parseID("doctor_id")
	filter.PatientID = parseID("patient_id")

	if raw := query.Get("date"); raw != "" {
		date, err := time.Parse(validator.DateLayout, raw)
		if err != nil {
			fieldErrors["date"] = "date must be a valid date in YYYY-MM-DD format"
		} else {
			filter.Date = &date
		}
	}

	if raw := query.Get("status"); raw != "" {
		status := entity.AppointmentStatus(raw)
		if !status.IsValid() {
			fieldErrors["status"] = "status must be one of SCHEDULED IN_CONSULTATION COMPLETED CANCELLED NO_SHOW"
		}
		filter.Status = status
	}

	page, perPage := 1, defaultPerPage
	if raw := query.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			fieldErrors["page"] = "page must be at least 1"
		} else {
			page = n
		}
	}
	if raw := query.Get("per_page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPerPage {
			fieldErrors["per_page"] = "per_page must be between 1 and 100"
		} else {
			perPage = n
		}
	}

	filter.Limit = perPage
	filter.Offset = (page - 1) * perPage
	return filter, page, perPage, fieldErrors
}
