package sdk_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/crestapp/crest-go/pkg/sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient builds a client against a throwaway test server, backed by
// an in-memory credential store.
func newTestClient(t *testing.T, handler http.Handler, opts ...sdk.ClientOption) (*sdk.Client, *sdk.MemoryStore) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := sdk.NewMemoryStore()
	opts = append([]sdk.ClientOption{sdk.WithCredentialStore(store)}, opts...)
	return sdk.NewClient(server.URL, opts...), store
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestClient_CurrentUser(t *testing.T) {
	aliceJSON := map[string]any{
		"username":     "alice",
		"email":        "alice@example.com",
		"has_password": true,
		"tier":         "plus",
		"subscription": "annual",
		"status":       "verified",
		"country":      "NL",
		"avatar_hash":  "3f7a",
		"rank":         12,
	}

	tests := []struct {
		name         string
		creds        *sdk.Credentials
		handler      http.HandlerFunc
		wantCalls    int32
		wantUser     string
		wantRejected bool
		wantErr      bool
	}{
		{
			name:  "no credential short-circuits without a network call",
			creds: nil,
			handler: func(w http.ResponseWriter, r *http.Request) {
				t.Error("unexpected request")
			},
			wantCalls: 0,
		},
		{
			name:  "resolved identity",
			creds: &sdk.Credentials{Token: "tok-1"},
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/account", r.URL.Path)
				assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
				assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
				writeJSON(t, w, http.StatusOK, aliceJSON)
			},
			wantCalls: 1,
			wantUser:  "alice",
		},
		{
			name:  "rejected credential",
			creds: &sdk.Credentials{Token: "tok-dead"},
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, http.StatusUnauthorized, map[string]string{"error": "User does not exist"})
			},
			wantCalls:    1,
			wantRejected: true,
			wantErr:      true,
		},
		{
			name:  "unrelated backend error is transient",
			creds: &sdk.Credentials{Token: "tok-1"},
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, http.StatusInternalServerError, map[string]string{"error": "database unavailable"})
			},
			wantCalls: 1,
			wantErr:   true,
		},
		{
			name:  "malformed response body is transient",
			creds: &sdk.Credentials{Token: "tok-1"},
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("not json"))
			},
			wantCalls: 1,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				tt.handler(w, r)
			}))
			if tt.creds != nil {
				require.NoError(t, store.SaveCredentials(tt.creds))
			}

			user, err := client.CurrentUser(context.Background())

			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantRejected, errors.Is(err, sdk.ErrCredentialRejected))
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			if tt.wantUser == "" {
				assert.Nil(t, user)
				return
			}
			require.NotNil(t, user)
			assert.Equal(t, tt.wantUser, user.Username)
			assert.Equal(t, sdk.TierPlus, user.Tier)
			assert.Equal(t, sdk.StatusVerified, user.Status)
			assert.True(t, user.HasPassword)
			assert.Equal(t, 12, user.Rank)
		})
	}
}

func TestClient_CurrentUser_Timeout(t *testing.T) {
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		writeJSON(t, w, http.StatusOK, map[string]any{"username": "alice"})
	}), sdk.WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}))
	require.NoError(t, store.SaveCredentials(&sdk.Credentials{Token: "tok-1"}))

	user, err := client.CurrentUser(context.Background())

	require.Error(t, err)
	assert.False(t, errors.Is(err, sdk.ErrCredentialRejected))
	assert.Nil(t, user)

	// A timeout is transient: the credential must survive.
	creds, err := store.LoadCredentials()
	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.Equal(t, "tok-1", creds.Token)
}

func TestClient_CurrentUser_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // connection refused from here on

	store := sdk.NewMemoryStore()
	require.NoError(t, store.SaveCredentials(&sdk.Credentials{Token: "tok-1"}))
	client := sdk.NewClient(server.URL, sdk.WithCredentialStore(store))

	user, err := client.CurrentUser(context.Background())

	require.Error(t, err)
	assert.False(t, errors.Is(err, sdk.ErrCredentialRejected))
	assert.Nil(t, user)
}

func TestClient_UpdateAccount(t *testing.T) {
	t.Run("not logged in", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("unexpected request")
		}))

		_, err := client.UpdateAccount(context.Background(), sdk.UpdateAccountInput{})
		require.Error(t, err)
	})

	t.Run("patches display name", func(t *testing.T) {
		client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPatch, r.Method)
			assert.Equal(t, "/account", r.URL.Path)

			var payload map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "Alice B", payload["display_name"])

			writeJSON(t, w, http.StatusOK, map[string]any{
				"username":     "alice",
				"display_name": "Alice B",
				"tier":         "free",
				"status":       "verified",
			})
		}))
		require.NoError(t, store.SaveCredentials(&sdk.Credentials{Token: "tok-1"}))

		name := "Alice B"
		user, err := client.UpdateAccount(context.Background(), sdk.UpdateAccountInput{DisplayName: &name})
		require.NoError(t, err)
		assert.Equal(t, "Alice B", user.DisplayName)
	})
}
