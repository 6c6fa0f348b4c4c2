package handler

import (
	"context"
	"net/http"
	"time"

	"hospital-scheduling/pkg/response"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const readinessTimeout = 2 * time.Second

type HealthHandler struct {
	db          *gorm.DB
	redisClient *redis.Client
	log         *logrus.Logger
}

// NewHealthHandler accepts a nil redisClient when Redis is not configured.
func NewHealthHandler(db *gorm.DB, redisClient *redis.Client, log *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		db:          db,
		redisClient: redisClient,
		log:         log,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "ok", map[string]string{"status": "ok"})
}

// Ready pings every backing store concurrently and fails if any of them is down
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	checks := map[string]string{"database": "ok"}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sqlDB, err := h.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(gctx)
	})

	if h.redisClient != nil {
		checks["redis"] = "ok"
		g.Go(func() error {
			return h.redisClient.Ping(gctx).Err()
		})
	}

	if err := g.Wait(); err != nil {
		h.log.Errorf("Readiness check failed: %+v", err)
		response.ServiceUnavailable(w, "Service is not ready")
		return
	}

	response.Success(w, http.StatusOK, "ready", checks)
}
