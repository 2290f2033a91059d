package sdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// AccountTier is the product tier an account is on.
type AccountTier string

const (
	TierFree AccountTier = "free"
	TierPlus AccountTier = "plus"
	TierPro  AccountTier = "pro"
)

// AccountStatus is the verification state of an account.
type AccountStatus string

const (
	StatusPending  AccountStatus = "pending"
	StatusVerified AccountStatus = "verified"
	StatusDisabled AccountStatus = "disabled"
)

// UserIdentity represents the authenticated principal as reported by the
// account endpoint. Absence of a user is modeled as a nil *UserIdentity,
// never as a zero value.
type UserIdentity struct {
	Username     string        `json:"username"`
	Email        string        `json:"email,omitempty"`
	HasPassword  bool          `json:"has_password"`
	SocialID     string        `json:"social_id,omitempty"`
	Tier         AccountTier   `json:"tier"`
	Subscription string        `json:"subscription,omitempty"`
	Status       AccountStatus `json:"status"`
	FeatureFlags string        `json:"feature_flags,omitempty"`
	DisplayName  string        `json:"display_name,omitempty"`
	Country      string        `json:"country,omitempty"`
	AvatarHash   string        `json:"avatar_hash,omitempty"`
	Rank         int           `json:"rank,omitempty"`
}

// CurrentUser resolves the stored credential into a user identity.
//
// When no credential is stored it returns (nil, nil) without touching the
// network. A backend response of "User does not exist" yields an error
// wrapping ErrCredentialRejected; every other failure (network error,
// timeout, malformed response, unrelated backend error) is returned as-is
// and should be treated as transient. CurrentUser has no side effects.
func (c *Client) CurrentUser(ctx context.Context) (*UserIdentity, error) {
	creds, err := c.store.LoadCredentials()
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	if creds == nil {
		return nil, nil
	}

	var user UserIdentity
	if err := c.do(ctx, http.MethodGet, "/account", nil, &user, creds); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Message == rejectedUserMessage {
			return nil, fmt.Errorf("%w: %s", ErrCredentialRejected, apiErr.Message)
		}
		return nil, err
	}
	return &user, nil
}

// UpdateAccountInput carries the mutable account fields. Nil pointers leave
// the corresponding field unchanged.
type UpdateAccountInput struct {
	DisplayName *string `json:"display_name,omitempty"`
	Country     *string `json:"country,omitempty"`
}

// UpdateAccount patches the authenticated account and returns the updated
// identity.
func (c *Client) UpdateAccount(ctx context.Context, input UpdateAccountInput) (*UserIdentity, error) {
	creds, err := c.store.LoadCredentials()
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	if creds == nil {
		return nil, fmt.Errorf("not logged in")
	}

	var user UserIdentity
	if err := c.do(ctx, http.MethodPatch, "/account", input, &user, creds); err != nil {
		return nil, err
	}
	return &user, nil
}
