package sdk

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// SessionPhase describes one observer's view of the session stream.
type SessionPhase int

const (
	// SessionUnresolved means no refresh has completed yet.
	SessionUnresolved SessionPhase = iota
	// SessionAnonymous means the last refresh found no authenticated user.
	SessionAnonymous
	// SessionIdentified means the last refresh resolved a user identity.
	SessionIdentified
)

func (p SessionPhase) String() string {
	switch p {
	case SessionAnonymous:
		return "anonymous"
	case SessionIdentified:
		return "identified"
	default:
		return "unresolved"
	}
}

// Snapshot is one value of the session stream. User is non-nil exactly when
// Phase is SessionIdentified.
type Snapshot struct {
	Phase SessionPhase
	User  *UserIdentity
}

// refreshKey is the constant singleflight key: there is only ever one
// "current user" to resolve, so all refreshes share it.
const refreshKey = "current-user"

// SessionCache owns the process-wide view of the currently authenticated
// user. It multicasts refresh outcomes to any number of subscribers,
// coalesces concurrent refreshes into a single network call, and clears a
// credential the backend reports as invalid.
//
// A SessionCache is an explicit, constructed component: build one at
// application bootstrap, hand it to consumers, and drive it with Run.
// It needs no teardown beyond cancelling Run's context.
type SessionCache struct {
	client *Client
	store  CredentialStore
	logger *zap.Logger

	group singleflight.Group

	mu      sync.Mutex
	current Snapshot
	subs    map[int]chan Snapshot
	nextSub int
	running bool

	lastToken string
	tokenSeen bool
}

// SessionOptions configures SessionCache construction.
type SessionOptions struct {
	Logger *zap.Logger
}

// SessionOption mutates SessionOptions.
type SessionOption func(*SessionOptions)

// WithSessionLogger attaches a structured logger to the cache.
func WithSessionLogger(logger *zap.Logger) SessionOption {
	return func(opts *SessionOptions) {
		opts.Logger = logger
	}
}

// NewSessionCache creates a session cache backed by the client's credential
// store. The cache starts unresolved; the initial refresh happens in Run.
func NewSessionCache(client *Client, optFns ...SessionOption) *SessionCache {
	opts := SessionOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &SessionCache{
		client:  client,
		store:   client.CredentialStore(),
		logger:  opts.Logger,
		current: Snapshot{Phase: SessionUnresolved},
		subs:    make(map[int]chan Snapshot),
	}
}

// Current returns the most recently published snapshot.
func (c *SessionCache) Current() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Subscribe registers an observer of the session stream. The returned channel
// immediately carries the current snapshot, then one value per completed
// refresh; delivery is latest-wins, so a slow reader never observes a value
// older than the most recent completed refresh. The cancel function
// unregisters the observer and closes the channel; it is safe to call twice.
//
// The channel never carries errors: every failure path resolves to an
// anonymous snapshot.
func (c *SessionCache) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	ch <- c.current
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Refresh resolves the stored credential into a session snapshot and
// publishes it to all subscribers. Concurrent calls are coalesced: while a
// resolution is in flight, additional callers join it and observe its result
// instead of starting another network call. The in-flight call runs under the
// first caller's context.
//
// Refresh never returns an error. An explicitly rejected credential triggers
// a corrective logout; every failure publishes an anonymous snapshot.
func (c *SessionCache) Refresh(ctx context.Context) Snapshot {
	v, _, _ := c.group.Do(refreshKey, func() (any, error) {
		snap := c.resolve(ctx)
		c.publish(snap)
		return snap, nil
	})
	return v.(Snapshot)
}

// Run seeds the cache with exactly one startup refresh, then re-checks the
// credential on every navigation-start event: a refresh is triggered only
// when the stored token differs from the value observed at the previous
// check, including present/absent transitions. Run blocks until ctx is done
// or nav is closed.
func (c *SessionCache) Run(ctx context.Context, nav <-chan struct{}) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("session cache is already running")
	}
	c.running = true
	c.mu.Unlock()

	c.observeToken()
	c.Refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-nav:
			if !ok {
				return nil
			}
			if c.observeToken() {
				c.Refresh(ctx)
			}
		}
	}
}

func (c *SessionCache) resolve(ctx context.Context) Snapshot {
	user, err := c.client.CurrentUser(ctx)
	switch {
	case err == nil && user != nil:
		return Snapshot{Phase: SessionIdentified, User: user}
	case err == nil:
		return Snapshot{Phase: SessionAnonymous}
	case errors.Is(err, ErrCredentialRejected):
		c.logger.Info("stored credential rejected by server, logging out", zap.Error(err))
		if logoutErr := c.client.Logout(ctx); logoutErr != nil {
			c.logger.Warn("corrective logout failed", zap.Error(logoutErr))
		}
		return Snapshot{Phase: SessionAnonymous}
	default:
		// Transient failures look like "not logged in" until the next
		// successful refresh; a broken network must never be mistaken
		// for a live session.
		c.logger.Debug("identity refresh failed", zap.Error(err))
		return Snapshot{Phase: SessionAnonymous}
	}
}

func (c *SessionCache) publish(snap Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = snap
	for _, ch := range c.subs {
		// Drain the stale value so the send below cannot block. Publishes
		// are serialized by mu, so the 1-slot buffer is free after the drain.
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

// observeToken records the store's current token and reports whether it
// changed since the previous observation. A store read failure is treated as
// an absent credential.
func (c *SessionCache) observeToken() bool {
	var token string
	creds, err := c.store.LoadCredentials()
	if err != nil {
		c.logger.Debug("credential check failed", zap.Error(err))
	} else if creds != nil {
		token = creds.Token
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	changed := !c.tokenSeen || token != c.lastToken
	c.tokenSeen = true
	c.lastToken = token
	return changed
}
