package controllers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"evently/internal/adapters/svix"
	"evently/internal/delivery/http/helpers"
	"evently/internal/domain"
)

// MaxWebhookBodyBytes caps the raw webhook body that is read and verified.
const MaxWebhookBodyBytes = 1 << 20

// Plain-text bodies returned to the identity provider.
const (
	msgDatabaseUnavailable = "Database unavailable"
	msgSecretMissing       = "Webhook secret is not configured"
	msgMissingHeaders      = "Missing headers"
	msgVerifyFailed        = "Error occurred"
	msgInProgress          = "Delivery in progress"
	msgInvalidPayload      = "Invalid payload"
	msgUnhandledType       = "Unhandled event type"
	msgIdentityProvider    = "Identity provider error"
	msgUserNotFound        = "User not found"
	msgInternal            = "Internal error"
)

// Connector makes sure the database is reachable before a delivery is processed.
type Connector interface {
	Connect(ctx context.Context) (*sql.DB, error)
}

// SignatureVerifier checks a delivery's signature over its raw body.
type SignatureVerifier interface {
	Verify(body []byte, header http.Header) error
}

// WebhookResponse is the body of a processed delivery.
type WebhookResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user,omitempty"`
}

type WebhookController struct {
	Logger   *slog.Logger
	DB       Connector
	Verifier SignatureVerifier
	Deduper  domain.DeliveryDeduper
	Service  domain.UserSyncService
}

// NewWebhookController wires the Clerk webhook endpoint. verifier may be nil, in
// which case every delivery is answered with 500. deduper may be nil.
func NewWebhookController(logger *slog.Logger, db Connector, verifier SignatureVerifier, deduper domain.DeliveryDeduper, svc domain.UserSyncService) *WebhookController {
	return &WebhookController{
		Logger:   logger,
		DB:       db,
		Verifier: verifier,
		Deduper:  deduper,
		Service:  svc,
	}
}

// HandleClerk godoc
// @Summary Receive a Clerk user webhook
// @Description Verifies the Svix signature over the raw body and mirrors user.created, user.updated and user.deleted into the local user table. On create the local id is written back to the user's public metadata. Errors are returned as plain text.
// @Tags webhooks
// @Accept json
// @Produce json
// @Param svix-id header string true "Delivery id"
// @Param svix-timestamp header string true "Delivery timestamp (unix seconds)"
// @Param svix-signature header string true "Space-separated v1 signatures"
// @Param payload body domain.WebhookEvent true "Webhook envelope"
// @Success 200 {object} controllers.WebhookResponse
// @Failure 400 {string} string "Missing headers | Error occurred | Invalid payload | Unhandled event type"
// @Failure 404 {string} string "User not found"
// @Failure 409 {string} string "Delivery in progress"
// @Failure 500 {string} string "Database unavailable | Webhook secret is not configured | Internal error"
// @Failure 502 {string} string "Identity provider error"
// @Router /api/webhook/clerk [post]
func (c *WebhookController) HandleClerk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, err := c.DB.Connect(ctx); err != nil {
		c.Logger.ErrorContext(ctx, "webhook: database unavailable", "err", err)
		helpers.WriteText(w, http.StatusInternalServerError, msgDatabaseUnavailable)
		return
	}
	if c.Verifier == nil {
		c.Logger.ErrorContext(ctx, "webhook: signing secret is not configured")
		helpers.WriteText(w, http.StatusInternalServerError, msgSecretMissing)
		return
	}

	headers := svix.HeadersFrom(r.Header)
	if !headers.Complete() {
		helpers.WriteText(w, http.StatusBadRequest, msgMissingHeaders)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxWebhookBodyBytes))
	if err != nil {
		c.Logger.WarnContext(ctx, "webhook: read body", "svix_id", headers.ID, "err", err)
		helpers.WriteText(w, http.StatusBadRequest, msgVerifyFailed)
		return
	}
	if err := c.Verifier.Verify(body, r.Header); err != nil {
		c.Logger.WarnContext(ctx, "webhook: verification failed", "svix_id", headers.ID, "err", err)
		helpers.WriteText(w, http.StatusBadRequest, msgVerifyFailed)
		return
	}

	claimed := false
	if c.Deduper != nil {
		res, err := c.Deduper.Claim(ctx, headers.ID)
		switch {
		case err != nil:
			// Fail open.
			c.Logger.WarnContext(ctx, "webhook: delivery claim failed", "svix_id", headers.ID, "err", err)
		case res == domain.ClaimDone:
			c.Logger.InfoContext(ctx, "webhook: duplicate delivery", "svix_id", headers.ID)
			helpers.WriteJSON(w, http.StatusOK, WebhookResponse{Message: "Duplicate delivery"})
			return
		case res == domain.ClaimInProgress:
			// Not a success, so the sender keeps retrying until the first attempt settles.
			c.Logger.InfoContext(ctx, "webhook: delivery still in progress", "svix_id", headers.ID)
			helpers.WriteText(w, http.StatusConflict, msgInProgress)
			return
		default:
			claimed = true
		}
	}

	status, user, msg := c.dispatch(ctx, headers.ID, body)
	if claimed {
		c.settleClaim(ctx, headers.ID, status == http.StatusOK)
	}
	if status != http.StatusOK {
		helpers.WriteText(w, status, msg)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, WebhookResponse{Message: "OK", User: user})
}

// settleClaim marks a processed delivery done or releases a failed one so the
// retry is processed again.
func (c *WebhookController) settleClaim(ctx context.Context, deliveryID string, ok bool) {
	ctx = context.WithoutCancel(ctx)
	if ok {
		if err := c.Deduper.Complete(ctx, deliveryID); err != nil {
			c.Logger.WarnContext(ctx, "webhook: complete claim", "svix_id", deliveryID, "err", err)
		}
		return
	}
	if err := c.Deduper.Release(ctx, deliveryID); err != nil {
		c.Logger.WarnContext(ctx, "webhook: release claim", "svix_id", deliveryID, "err", err)
	}
}

// dispatch routes a verified delivery by type and returns the response status,
// the affected user and, on failure, the plain-text message.
func (c *WebhookController) dispatch(ctx context.Context, deliveryID string, body []byte) (int, *domain.User, string) {
	var evt domain.WebhookEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		c.Logger.WarnContext(ctx, "webhook: decode envelope", "svix_id", deliveryID, "err", err)
		return http.StatusBadRequest, nil, msgInvalidPayload
	}
	switch evt.Type {
	case domain.WebhookUserCreated, domain.WebhookUserUpdated, domain.WebhookUserDeleted:
	default:
		c.Logger.InfoContext(ctx, "webhook: unhandled event type", "svix_id", deliveryID, "type", evt.Type)
		return http.StatusBadRequest, nil, msgUnhandledType
	}

	var data domain.ClerkUserData
	if err := json.Unmarshal(evt.Data, &data); err != nil {
		c.Logger.WarnContext(ctx, "webhook: decode user data", "svix_id", deliveryID, "type", evt.Type, "err", err)
		return http.StatusBadRequest, nil, msgInvalidPayload
	}

	var (
		user *domain.User
		err  error
	)
	switch evt.Type {
	case domain.WebhookUserCreated:
		user, err = c.Service.SyncCreated(ctx, data)
	case domain.WebhookUserUpdated:
		user, err = c.Service.SyncUpdated(ctx, data)
	case domain.WebhookUserDeleted:
		user, err = c.Service.SyncDeleted(ctx, data.ID)
	}
	if err != nil {
		status, msg := webhookErrorStatus(err)
		c.Logger.ErrorContext(ctx, "webhook: processing failed",
			"svix_id", deliveryID, "type", evt.Type, "clerk_id", data.ID, "status", status, "err", err)
		return status, nil, msg
	}
	c.Logger.InfoContext(ctx, "webhook processed", "svix_id", deliveryID, "type", evt.Type, "clerk_id", data.ID)
	return http.StatusOK, user, ""
}

func webhookErrorStatus(err error) (int, string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, msgInvalidPayload
	case errors.Is(err, domain.ErrIdentityProvider):
		return http.StatusBadGateway, msgIdentityProvider
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, msgUserNotFound
	default:
		return http.StatusInternalServerError, msgInternal
	}
}
