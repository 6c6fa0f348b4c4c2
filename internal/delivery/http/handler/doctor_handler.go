package handler

import (
	"net/http"

	"hospital-scheduling/internal/converter"
	"hospital-scheduling/internal/usecase"
	"hospital-scheduling/pkg/response"

	"github.com/sirupsen/logrus"
)

type DoctorHandler struct {
	catalogUsecase      usecase.CatalogUsecase
	availabilityUsecase usecase.AvailabilityUsecase
	log                 *logrus.Logger
}

func NewDoctorHandler(catalogUsecase usecase.CatalogUsecase, availabilityUsecase usecase.AvailabilityUsecase, log *logrus.Logger) *DoctorHandler {
	return &DoctorHandler{
		catalogUsecase:      catalogUsecase,
		availabilityUsecase: availabilityUsecase,
		log:                 log,
	}
}

func (h *DoctorHandler) ListSpecialties(w http.ResponseWriter, r *http.Request) {
	specialties, err := h.catalogUsecase.ListSpecialties(r.Context())
	if err != nil {
		writeError(w, h.log, err, "Failed to get specialties")
		return
	}

	response.Success(w, http.StatusOK, "Specialties retrieved successfully", specialties)
}

func (h *DoctorHandler) ListDoctorsBySpecialty(w http.ResponseWriter, r *http.Request) {
	specialtyID, ok := pathInt64(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid specialty ID")
		return
	}

	doctors, err := h.catalogUsecase.ListDoctorsBySpecialty(r.Context(), specialtyID)
	if err != nil {
		writeError(w, h.log, err, "Failed to get doctors")
		return
	}

	response.Success(w, http.StatusOK, "Doctors retrieved successfully", doctors)
}

func (h *DoctorHandler) GetAvailabilityTemplate(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathInt64(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid doctor ID")
		return
	}

	template, err := h.catalogUsecase.GetAvailabilityTemplate(r.Context(), doctorID)
	if err != nil {
		writeError(w, h.log, err, "Failed to get availability template")
		return
	}

	response.Success(w, http.StatusOK, "Availability template retrieved successfully", template)
}

// GetAvailability returns remaining capacity per time block for ?date=YYYY-MM-DD
func (h *DoctorHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathInt64(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid doctor ID")
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		response.ValidationError(w, map[string]string{"date": "date is required"})
		return
	}

	availability, err := h.availabilityUsecase.GetAvailableBlocks(r.Context(), doctorID, date)
	if err != nil {
		writeError(w, h.log, err, "Failed to get availability")
		return
	}

	message := "Availability retrieved successfully"
	if availability.Message != "" {
		message = availability.Message
	}
	response.Success(w, http.StatusOK, message, converter.AvailabilityToResponse(availability))
}
