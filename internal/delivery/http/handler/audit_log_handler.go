package handler

import (
	"net/http"

	"hospital-scheduling/internal/usecase"
	"hospital-scheduling/pkg/response"

	"github.com/sirupsen/logrus"
)

type AuditLogHandler struct {
	queryUsecase usecase.AppointmentQueryUsecase
	log          *logrus.Logger
}

func NewAuditLogHandler(queryUsecase usecase.AppointmentQueryUsecase, log *logrus.Logger) *AuditLogHandler {
	return &AuditLogHandler{
		queryUsecase: queryUsecase,
		log:          log,
	}
}

// GetAppointmentHistory lists every recorded change of an appointment, oldest first
func (h *AuditLogHandler) GetAppointmentHistory(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := pathUUID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	history, err := h.queryUsecase.GetAppointmentHistory(r.Context(), appointmentID)
	if err != nil {
		writeError(w, h.log, err, "Failed to get appointment history")
		return
	}

	response.Success(w, http.StatusOK, "Appointment history retrieved successfully", history)
}
