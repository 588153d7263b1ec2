package controllers

import (
	"log/slog"
	"net/http"

	"evently/internal/delivery/http/helpers"
	"evently/internal/domain"
)

type UserController struct {
	Logger  *slog.Logger
	Service domain.UserSyncService
}

func NewUserController(logger *slog.Logger, svc domain.UserSyncService) *UserController {
	return &UserController{Logger: logger, Service: svc}
}

// GetMe godoc
// @Summary Get the current user
// @Description Returns the local user mirrored for the authenticated identity-provider account.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is the user"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me [get]
func (c *UserController) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := resolveCaller(w, r, c.Service, c.Logger)
	if !ok {
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}
