package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hospital-scheduling/config"
	"hospital-scheduling/internal/delivery/dto"
	"hospital-scheduling/internal/delivery/http/handler"
	"hospital-scheduling/internal/delivery/http/middleware"
	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/internal/usecase"
	"hospital-scheduling/pkg/apperror"
	"hospital-scheduling/pkg/jwt"
	"hospital-scheduling/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubLifecycle answers every transition with not found so a 404 proves the
// request got past authentication and role checks.
type stubLifecycle struct {
	usecase.AppointmentLifecycleUsecase
	actor entity.Actor
}

func (s *stubLifecycle) Confirm(ctx context.Context, _ uuid.UUID) (*entity.Appointment, error) {
	s.actor = entity.ActorFromContext(ctx)
	return nil, apperror.NotFound("appointment not found")
}

type historyQuery struct {
	usecase.AppointmentQueryUsecase
}

func (historyQuery) GetAppointmentHistory(context.Context, uuid.UUID) (*dto.AuditLogListResponse, error) {
	return nil, apperror.NotFound("appointment not found")
}

type routerFixture struct {
	router    *mux.Router
	jwt       *jwt.JWTService
	lifecycle *stubLifecycle
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "test-secret", AccessExpiry: time.Minute})
	lifecycle := &stubLifecycle{}
	query := historyQuery{}

	router := NewRouter(
		handler.NewHealthHandler(nil, nil, log),
		handler.NewDoctorHandler(nil, nil, log),
		handler.NewAppointmentHandler(nil, lifecycle, query, validator.NewValidator(), log),
		handler.NewAuditLogHandler(query, log),
		middleware.NewAuthMiddleware(jwtService, nil, log),
		middleware.NewCORSMiddleware("https://clinic.example"),
		0,
	)

	return &routerFixture{router: router.Setup(), jwt: jwtService, lifecycle: lifecycle}
}

func (f *routerFixture) token(t *testing.T, roleID int) string {
	t.Helper()
	token, _, err := f.jwt.GenerateAccessToken("user-42", roleID)
	require.NoError(t, err)
	return token
}

func (f *routerFixture) serve(method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthIsPublic(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.serve(http.MethodGet, "/api/v1/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://clinic.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := newRouterFixture(t)

	for _, path := range []string{
		"/api/v1/specialties",
		"/api/v1/doctors/1/availability?date=2030-01-07",
		"/api/v1/appointments",
	} {
		rec := f.serve(http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := f.serve(http.MethodGet, "/api/v1/specialties", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStaffRoutesRejectPatients(t *testing.T) {
	f := newRouterFixture(t)
	path := "/api/v1/appointments/" + uuid.NewString() + "/confirm"

	rec := f.serve(http.MethodPost, path, f.token(t, entity.RoleIDPatient))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.serve(http.MethodPost, path, f.token(t, entity.RoleIDDoctor))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "user-42", f.lifecycle.actor.Subject)
	assert.Equal(t, entity.RoleIDDoctor, f.lifecycle.actor.RoleID)
}

func TestHistoryIsAdminOnly(t *testing.T) {
	f := newRouterFixture(t)
	path := "/api/v1/appointments/" + uuid.NewString() + "/history"

	rec := f.serve(http.MethodGet, path, f.token(t, entity.RoleIDDoctor))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.serve(http.MethodGet, path, f.token(t, entity.RoleIDAdmin))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPreflightIsAnswered(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.serve(http.MethodOptions, "/api/v1/appointments", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}
