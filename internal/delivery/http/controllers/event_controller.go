package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"evently/internal/delivery/http/helpers"
	"evently/internal/delivery/http/middleware"
	"evently/internal/domain"
)

// CreateEventRequest is the request body for POST /events. The caller becomes the
// event's only organizer; an "organizer" field is rejected as unknown.
type CreateEventRequest struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Location      string     `json:"location"`
	ImageURL      string     `json:"image_url"`
	StartDateTime *time.Time `json:"start_date"`
	EndDateTime   *time.Time `json:"end_date_time"`
	Price         string     `json:"price"`
	IsFree        bool       `json:"is_free"`
	URL           string     `json:"url"`
	Category      []string   `json:"category"`
}

// Validate implements Validator. Returns error messages for required and format rules.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	if strings.TrimSpace(c.ImageURL) == "" {
		errs = append(errs, "image_url is required")
	}
	for _, id := range c.Category {
		if _, err := uuid.Parse(id); err != nil {
			errs = append(errs, "category ids must be UUIDs")
			break
		}
	}
	return errs
}

func (c CreateEventRequest) toEvent() *domain.Event {
	event := domain.NewEvent(c.Title, c.ImageURL)
	event.Description = c.Description
	event.Location = c.Location
	event.StartDate = c.StartDateTime
	event.EndDateTime = c.EndDateTime
	event.Price = c.Price
	event.IsFree = c.IsFree
	event.URL = c.URL
	if c.Category != nil {
		event.Category = c.Category
	}
	return event
}

// EventSuccessResponse is the success response envelope for a single event.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListEventsResponse is the data of GET /events.
type ListEventsResponse struct {
	Events     []*domain.Event  `json:"events"`
	Pagination helpers.PageInfo `json:"pagination"`
}

// ListEventsSuccessResponse is the success response envelope for GET /events (200).
type ListEventsSuccessResponse struct {
	Data  ListEventsResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
	Users   domain.UserSyncService
}

func NewEventController(logger *slog.Logger, svc domain.EventService, users domain.UserSyncService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
		Users:   users,
	}
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates an event. title and image_url are required. When start_date or end_date_time are omitted they may default to the creation time. The caller becomes the only organizer; an organizer field is rejected.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, ok := resolveCaller(w, r, c.Users, c.Logger)
	if !ok {
		return
	}
	event := req.toEvent()
	if err := c.Service.CreateEvent(r.Context(), event, user.ID); err != nil {
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &verr):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, verr.Error())
		case errors.Is(err, domain.ErrInvalidReference):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// ListEvents godoc
// @Summary List events
// @Description Paginated list of events, newest first.
// @Tags events
// @Produce json
// @Param page query int false "Page (1-based)" default(1)
// @Param page_size query int false "Page size (max 100)" default(20)
// @Param limit query int false "Alias of page_size"
// @Success 200 {object} controllers.ListEventsSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	params := helpers.PageQuery(r)
	events, total, err := c.Service.ListEvents(r.Context(), params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		return
	}
	if events == nil {
		events = []*domain.Event{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{
		Events:     events,
		Pagination: helpers.NewPageInfo(params, total),
	})
}

// GetEventByID godoc
// @Summary Get an event by ID
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEventByID(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	event, err := c.Service.GetEvent(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Only an organizer of the event may delete it.
// @Tags events
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 204 "No Content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	user, ok := resolveCaller(w, r, c.Users, c.Logger)
	if !ok {
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), eventID, user.ID); err != nil {
		switch {
		case errors.Is(err, domain.ErrEventNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		case errors.Is(err, domain.ErrForbidden):
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "only an organizer can delete this event")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pathUUID reads a UUID path value, writing 400 when it is malformed.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := r.PathValue(name)
	if raw == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing "+name)
		return "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid "+name)
		return "", false
	}
	return id.String(), true
}

// resolveCaller maps the authenticated external id to the local user. A caller
// whose account has not been mirrored yet is rejected with 403.
func resolveCaller(w http.ResponseWriter, r *http.Request, users domain.UserSyncService, logger *slog.Logger) (*domain.User, bool) {
	externalID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return nil, false
	}
	user, err := users.GetByClerkID(r.Context(), externalID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "user is not registered yet")
			return nil, false
		}
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		return nil, false
	}
	return user, true
}
