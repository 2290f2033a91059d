package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Client provides a high-level interface to the Crest account API.
// It wraps a plain JSON-over-HTTP transport with ergonomic methods.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      CredentialStore
	logger     *zap.Logger
}

// ClientOptions configures SDK client construction.
type ClientOptions struct {
	HTTPClient      *http.Client
	CredentialStore CredentialStore
	Logger          *zap.Logger
}

// ClientOption mutates ClientOptions.
type ClientOption func(*ClientOptions)

// WithHTTPClient overrides the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(opts *ClientOptions) {
		opts.HTTPClient = client
	}
}

// WithCredentialStore sets the credential store backing the client.
// A MemoryStore is used when none is supplied.
func WithCredentialStore(store CredentialStore) ClientOption {
	return func(opts *ClientOptions) {
		opts.CredentialStore = store
	}
}

// WithLogger attaches a structured logger. Logging is disabled by default.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(opts *ClientOptions) {
		opts.Logger = logger
	}
}

// NewClient creates a new Crest SDK client that communicates with the API
// server at baseURL. An http.Client and an in-memory credential store are
// created automatically when none are supplied.
func NewClient(baseURL string, optFns ...ClientOption) *Client {
	opts := ClientOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.CredentialStore == nil {
		opts.CredentialStore = NewMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: opts.HTTPClient,
		store:      opts.CredentialStore,
		logger:     opts.Logger,
	}
}

// CredentialStore returns the store backing this client.
func (c *Client) CredentialStore() CredentialStore {
	return c.store
}

// do issues one JSON request and decodes the response into out (when non-nil).
// Non-2xx responses are decoded into *APIError; a body that does not match
// the error shape still yields an *APIError with the bare status code.
func (c *Client) do(ctx context.Context, method, path string, body, out any, creds *Credentials) error {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if creds != nil && creds.Token != "" {
		tokenType := creds.TokenType
		if tokenType == "" {
			tokenType = "Bearer"
		}
		req.Header.Set("Authorization", tokenType+" "+creds.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
			apiErr.Message = payload.Error
		}
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", path, err)
		}
	}
	return nil
}

// LoginInput carries first-party login parameters.
type LoginInput struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Login exchanges an identifier and password for a credential and persists it
// in the client's credential store.
func (c *Client) Login(ctx context.Context, input LoginInput) (*Credentials, error) {
	if input.Identifier == "" || input.Password == "" {
		return nil, fmt.Errorf("identifier and password are required")
	}

	var payload struct {
		Token     string `json:"token"`
		TokenType string `json:"token_type"`
		Username  string `json:"username"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", input, &payload, nil); err != nil {
		return nil, err
	}

	creds := &Credentials{
		Token:     payload.Token,
		TokenType: payload.TokenType,
		Username:  payload.Username,
	}
	if err := c.store.SaveCredentials(creds); err != nil {
		return nil, fmt.Errorf("failed to save credentials: %w", err)
	}
	return creds, nil
}

// Logout clears the persisted credential and notifies the backend.
// Clearing the local store is authoritative: the backend notification is
// best-effort and its failure is not reported. Logging out without a stored
// credential is a no-op.
func (c *Client) Logout(ctx context.Context) error {
	creds, err := c.store.LoadCredentials()
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}
	if creds == nil {
		return nil
	}

	if err := c.store.DeleteCredentials(); err != nil {
		return fmt.Errorf("failed to delete credentials: %w", err)
	}

	if err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, creds); err != nil {
		c.logger.Debug("logout notification failed", zap.Error(err))
	}
	return nil
}
