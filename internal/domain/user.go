package domain

import (
	"context"
	"time"
)

// MetadataUserIDKey is the public-metadata key that holds the local user id
// on the identity provider's side.
const MetadataUserIDKey = "userId"

// User is the local mirror of an identity-provider account.
// swagger:model User
type User struct {
	ID        string    `json:"id"`
	ClerkID   string    `json:"clerk_id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Photo     string    `json:"photo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is set by the repository on create.
func NewUser(clerkID, email, username, firstName, lastName, photo string, createdAt, updatedAt time.Time) *User {
	return &User{
		ClerkID:   clerkID,
		Email:     email,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		Photo:     photo,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// UserProfile is the mutable part of a User that update notifications carry.
type UserProfile struct {
	FirstName string
	LastName  string
	Username  string
	Photo     string
}

// UserRepository defines the interface for user storage. Rows are addressed by
// the external id because that is what every provider notification carries.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByClerkID(ctx context.Context, clerkID string) (*User, error)
	UpdateByClerkID(ctx context.Context, clerkID string, profile UserProfile, updatedAt time.Time) (*User, error)
	DeleteByClerkID(ctx context.Context, clerkID string) (*User, error)
}

// IdentityProvider is the outbound port to the external system of record for users.
type IdentityProvider interface {
	UpdatePublicMetadata(ctx context.Context, externalUserID string, metadata map[string]any) error
}

// TokenVerifier verifies a session token and returns the external user id it was issued for.
type TokenVerifier interface {
	Verify(token string) (externalUserID string, err error)
}

// UserSyncService mirrors identity-provider user lifecycle events into local storage.
type UserSyncService interface {
	SyncCreated(ctx context.Context, data ClerkUserData) (*User, error)
	SyncUpdated(ctx context.Context, data ClerkUserData) (*User, error)
	SyncDeleted(ctx context.Context, clerkID string) (*User, error)
	GetByClerkID(ctx context.Context, clerkID string) (*User, error)
}
