package domain

import (
	"context"
	"encoding/json"
)

// Webhook event types delivered by the identity provider.
const (
	WebhookUserCreated = "user.created"
	WebhookUserUpdated = "user.updated"
	WebhookUserDeleted = "user.deleted"
)

// WebhookEvent is the envelope of every identity-provider notification.
type WebhookEvent struct {
	Type   string          `json:"type"`
	Object string          `json:"object"`
	Data   json.RawMessage `json:"data"`
}

// ClerkEmailAddress is one entry of a provider user's email list.
type ClerkEmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// ClerkUserData is the user object nested in user.* notifications. Nullable
// provider fields decode to the empty string.
type ClerkUserData struct {
	ID             string              `json:"id"`
	EmailAddresses []ClerkEmailAddress `json:"email_addresses"`
	Username       string              `json:"username"`
	FirstName      string              `json:"first_name"`
	LastName       string              `json:"last_name"`
	ImageURL       string              `json:"image_url"`
}

// FirstEmail returns the first listed email address, or "" when there is none.
func (d ClerkUserData) FirstEmail() string {
	if len(d.EmailAddresses) == 0 {
		return ""
	}
	return d.EmailAddresses[0].EmailAddress
}

// Profile returns the fields an update notification is allowed to change.
func (d ClerkUserData) Profile() UserProfile {
	return UserProfile{
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Username:  d.Username,
		Photo:     d.ImageURL,
	}
}

// ClaimResult is the outcome of claiming a webhook delivery.
type ClaimResult int

const (
	// ClaimAcquired means the caller now owns the delivery and must Complete or Release it.
	ClaimAcquired ClaimResult = iota
	// ClaimInProgress means another attempt holds the claim and has not finished.
	ClaimInProgress
	// ClaimDone means the delivery was already processed.
	ClaimDone
)

// DeliveryDeduper remembers processed webhook deliveries.
type DeliveryDeduper interface {
	Claim(ctx context.Context, deliveryID string) (ClaimResult, error)
	// Complete marks a claimed delivery as processed.
	Complete(ctx context.Context, deliveryID string) error
	// Release forgets deliveryID so a retried delivery is processed again.
	Release(ctx context.Context, deliveryID string) error
}

// Transactor runs fn inside a single database transaction. Repositories called
// with the ctx passed to fn take part in that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
