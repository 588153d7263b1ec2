package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"evently/internal/delivery/http/helpers"
	"evently/internal/domain"
)

// CreateCategoryRequest is the request body for POST /categories.
type CreateCategoryRequest struct {
	Name string `json:"name"`
}

// Validate implements Validator.
func (c CreateCategoryRequest) Validate() []string {
	if strings.TrimSpace(c.Name) == "" {
		return []string{"name is required"}
	}
	return nil
}

type CategoryController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewCategoryController(logger *slog.Logger, svc domain.EventService) *CategoryController {
	return &CategoryController{Logger: logger, Service: svc}
}

// ListCategories godoc
// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {object} helpers.APIResponse "data is an array of categories"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /categories [get]
func (c *CategoryController) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := c.Service.ListCategories(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		return
	}
	if categories == nil {
		categories = []*domain.Category{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, categories)
}

// CreateCategory godoc
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param category body CreateCategoryRequest true "Category"
// @Success 201 {object} helpers.APIResponse "data is the created category"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /categories [post]
func (c *CategoryController) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	category, err := c.Service.CreateCategory(r.Context(), req.Name)
	if err != nil {
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &verr):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, verr.Error())
		case errors.Is(err, domain.ErrDuplicateName):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "category already exists")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, category)
}
