// Package clerk writes back to Clerk users through the Clerk Backend API SDK.
package clerk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	clerksdk "github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/user"

	"evently/internal/domain"
)

// DefaultBaseURL is the public Clerk Backend API.
const DefaultBaseURL = "https://api.clerk.com"

// ErrSecretKeyRequired is returned by NewClient when no secret key is configured.
var ErrSecretKeyRequired = errors.New("clerk: secret key is required")

type sdkClient struct {
	users  *user.Client
	logger *slog.Logger
}

// NewClient returns an IdentityProvider backed by the Clerk Backend API. The
// SDK appends the API version to baseURL.
func NewClient(httpClient *http.Client, baseURL, secretKey string, logger *slog.Logger) (domain.IdentityProvider, error) {
	if strings.TrimSpace(secretKey) == "" {
		return nil, ErrSecretKeyRequired
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	config := &clerksdk.ClientConfig{}
	config.Key = clerksdk.String(secretKey)
	config.URL = clerksdk.String(strings.TrimSuffix(baseURL, "/"))
	config.HTTPClient = httpClient
	return &sdkClient{users: user.NewClient(config), logger: logger}, nil
}

// UpdatePublicMetadata merges metadata into the user's public metadata.
func (c *sdkClient) UpdatePublicMetadata(ctx context.Context, userID string, metadata map[string]any) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	if _, err := c.users.UpdateMetadata(ctx, userID, &user.UpdateMetadataParams{
		PublicMetadata: clerksdk.JSONRawMessage(raw),
	}); err != nil {
		var apiErr *clerksdk.APIErrorResponse
		if errors.As(err, &apiErr) {
			c.logger.WarnContext(ctx, "clerk rejected metadata update",
				"clerk_id", userID, "status", apiErr.HTTPStatusCode, "trace_id", apiErr.TraceID)
		}
		return fmt.Errorf("clerk metadata update: %w", err)
	}
	return nil
}
