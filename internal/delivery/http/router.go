package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"evently/internal/delivery/http/controllers"
	"evently/internal/delivery/http/middleware"
	"evently/internal/domain"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Webhook  *controllers.WebhookController
	Event    *controllers.EventController
	Category *controllers.CategoryController
	User     *controllers.UserController
	Health   *controllers.HealthController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Identity provider webhooks
	mux.HandleFunc("POST /api/webhook/clerk", c.Webhook.HandleClerk)

	// Events
	mux.HandleFunc("GET /events", c.Event.ListEvents)
	mux.HandleFunc("POST /events", auth(c.Event.CreateEvent))
	mux.HandleFunc("GET /events/{eventID}", c.Event.GetEventByID)
	mux.HandleFunc("DELETE /events/{eventID}", auth(c.Event.DeleteEvent))

	// Categories
	mux.HandleFunc("GET /categories", c.Category.ListCategories)
	mux.HandleFunc("POST /categories", auth(c.Category.CreateCategory))

	// Users
	mux.HandleFunc("GET /users/me", auth(c.User.GetMe))

	mux.HandleFunc("GET /healthz", c.Health.Health)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
