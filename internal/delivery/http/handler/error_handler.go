package handler

import (
	"errors"
	"net/http"
	"strconv"

	"hospital-scheduling/pkg/apperror"
	"hospital-scheduling/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// writeError maps a usecase error onto the HTTP response.
// Untyped errors become a 500 with the fallback message.
func writeError(w http.ResponseWriter, log *logrus.Logger, err error, fallback string) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		log.Errorf("%s: %+v", fallback, err)
		response.InternalServerError(w, fallback)
		return
	}

	switch appErr.Kind {
	case apperror.KindValidation:
		if len(appErr.Fields) > 0 {
			response.ValidationError(w, appErr.Fields)
			return
		}
		response.BadRequest(w, appErr.Message)
	case apperror.KindSlotUnavailable, apperror.KindInvalidTransition:
		response.Error(w, http.StatusConflict, appErr.Message, appErr.Kind)
	case apperror.KindNotFound:
		response.NotFound(w, appErr.Message)
	case apperror.KindUpstreamUnavailable:
		log.Errorf("%s: %+v", fallback, err)
		response.ServiceUnavailable(w, appErr.Message)
	default:
		log.Errorf("%s: %+v", fallback, err)
		response.InternalServerError(w, fallback)
	}
}

func pathUUID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func pathInt64(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
