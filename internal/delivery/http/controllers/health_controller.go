package controllers

import (
	"context"
	"log/slog"
	"net/http"

	"evently/internal/delivery/http/helpers"
)

// Pinger reports whether the database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	Logger *slog.Logger
	DB     Pinger
}

func NewHealthController(logger *slog.Logger, db Pinger) *HealthController {
	return &HealthController{Logger: logger, DB: db}
}

// Health godoc
// @Summary Liveness and database readiness
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse "data.status: ok"
// @Failure 503 {object} helpers.APIResponse "error.code: service_unavailable"
// @Router /healthz [get]
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if err := c.DB.Ping(r.Context()); err != nil {
		c.Logger.WarnContext(r.Context(), "health check failed", "err", err)
		helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeUnavailable, "database unavailable")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}
