package session

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/swiftchat-web/gateway"
	apperrors "github.com/jrsteele09/swiftchat-web/internal/errors"
	"github.com/jrsteele09/swiftchat-web/internal/metrics"
	"github.com/jrsteele09/swiftchat-web/tokens"
	"github.com/jrsteele09/swiftchat-web/users"
	"github.com/rs/zerolog/log"
)

// API is the part of the backend the controller drives. *gateway.Client satisfies it.
type API interface {
	Login(ctx context.Context, email, password string) (*gateway.AuthResponse, error)
	ExchangeOAuthCode(ctx context.Context, provider, code, state string) (*gateway.AuthResponse, error)
	VerifyEmail(ctx context.Context, token string) (*gateway.Ack, error)
	GetCurrentUser(ctx context.Context) (*users.User, error)
}

// UserStore is satisfied by *users.Store
type UserStore interface {
	gateway.UserStore
	HasRole(ctx context.Context, roleID string) bool
	IsAdmin(ctx context.Context) bool
	IsModerator(ctx context.Context) bool
}

// Controller is the single authority over one browser context's session.
// Concurrent logins are not serialized; the mutex only guards the in-memory fields.
type Controller struct {
	id             string
	tokens         gateway.TokenStore
	users          UserStore
	api            API
	metrics        metrics.Recorder
	resolveTimeout time.Duration
	now            func() time.Time

	mu    sync.RWMutex
	state State
	user  *users.User
	// gen moves on every login attempt, logout and startup outcome
	gen uint64

	resolveOnce sync.Once
	resolved    chan struct{}
}

type ControllerOption func(*Controller)

func WithRecorder(r metrics.Recorder) ControllerOption {
	return func(c *Controller) {
		if r != nil {
			c.metrics = r
		}
	}
}

// WithResolveTimeout bounds the startup check
func WithResolveTimeout(d time.Duration) ControllerOption {
	return func(c *Controller) {
		if d > 0 {
			c.resolveTimeout = d
		}
	}
}

func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

func NewController(id string, tokenStore gateway.TokenStore, userStore UserStore, api API, opts ...ControllerOption) *Controller {
	c := &Controller{
		id:             id,
		tokens:         tokenStore,
		users:          userStore,
		api:            api,
		metrics:        metrics.Noop{},
		resolveTimeout: gateway.DefaultTimeout,
		now:            time.Now,
		state:          StateUnresolved,
		resolved:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) ID() string {
	return c.id
}

func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// User returns a copy of the resolved user, or nil
func (c *Controller) User() *users.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

// Start kicks off the startup check in the background. Only the first call has any effect.
func (c *Controller) Start(ctx context.Context) {
	c.resolveOnce.Do(func() {
		go c.resolve(context.WithoutCancel(ctx))
	})
}

// Resolve runs the startup check and waits for it to finish
func (c *Controller) Resolve(ctx context.Context) State {
	c.Start(ctx)
	<-c.resolved
	return c.State()
}

// AwaitResolved waits up to wait for the session to leave StateUnresolved
// and reports whether it did.
func (c *Controller) AwaitResolved(ctx context.Context, wait time.Duration) bool {
	if c.State() != StateUnresolved {
		return true
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-c.resolved:
	case <-timer.C:
	case <-ctx.Done():
	}
	return c.State() != StateUnresolved
}

func (c *Controller) resolve(ctx context.Context) {
	defer close(c.resolved)

	ctx, cancel := context.WithTimeout(ctx, c.resolveTimeout)
	defer cancel()

	c.mu.RLock()
	state, gen := c.state, c.gen
	c.mu.RUnlock()
	if state != StateUnresolved {
		return
	}

	pair := c.tokens.Get(ctx)
	if pair == nil {
		c.settle(ctx, gen, nil, nil)
		return
	}

	if pair.Expired(c.now()) {
		log.Info().Str("browser", c.id).Msg("session: stored access token has expired")
		c.settle(ctx, gen, pair, nil)
		return
	}

	user, err := c.api.GetCurrentUser(ctx)
	if err != nil {
		log.Info().Err(err).Str("browser", c.id).Msg("session: stored credential rejected")
		c.settle(ctx, gen, pair, nil)
		return
	}
	c.settle(ctx, gen, pair, user)
}

// settle applies the startup result for the checked credential unless a login
// or logout got there first. A nil user means the credential is unusable and
// both stores are cleared.
func (c *Controller) settle(ctx context.Context, gen uint64, checked *tokens.Pair, user *users.User) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateUnresolved {
		return
	}
	superseded := c.gen != gen
	c.gen++

	// A login in flight has replaced the credential; the result no longer applies
	if superseded && !samePair(c.tokens.Get(ctx), checked) {
		c.transitionLocked(StateAnonymous, nil)
		return
	}

	if user == nil {
		c.tokens.Clear(ctx)
		c.users.Clear(ctx)
		c.transitionLocked(StateAnonymous, nil)
		return
	}

	c.users.Save(ctx, user)
	c.transitionLocked(StateAuthenticated, user)
}

func samePair(a, b *tokens.Pair) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Login authenticates with email and password. On failure the stores keep
// their previous contents and the state does not change.
func (c *Controller) Login(ctx context.Context, email, password string) (*users.User, error) {
	return c.authenticate(ctx, "login", func() (*gateway.AuthResponse, error) {
		return c.api.Login(ctx, email, password)
	})
}

// ExchangeOAuthCode completes a provider login with the same contract as Login
func (c *Controller) ExchangeOAuthCode(ctx context.Context, provider, code, state string) (*users.User, error) {
	return c.authenticate(ctx, "oauth_callback", func() (*gateway.AuthResponse, error) {
		return c.api.ExchangeOAuthCode(ctx, provider, code, state)
	})
}

// VerifyEmail confirms an email address. When the backend logs the user in
// as part of verification the session becomes authenticated.
func (c *Controller) VerifyEmail(ctx context.Context, token string) (*gateway.Ack, error) {
	if token == "" {
		return nil, apperrors.ErrMissingVerifyToken
	}

	var ack *gateway.Ack
	_, err := c.authenticate(ctx, "verify_email", func() (*gateway.AuthResponse, error) {
		var err error
		ack, err = c.api.VerifyEmail(ctx, token)
		if err != nil {
			return nil, err
		}
		if ack.Session == nil {
			return nil, nil
		}
		pair := ack.Session.Pair()
		c.tokens.Save(ctx, pair)
		return ack.Session, nil
	})
	if err != nil {
		return nil, err
	}
	return ack, nil
}

// authenticate runs call and adopts the session it returns. A nil response
// with no error means there is nothing to adopt.
func (c *Controller) authenticate(ctx context.Context, op string, call func() (*gateway.AuthResponse, error)) (*users.User, error) {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	prevTokens := c.tokens.Get(ctx)
	prevUser := c.users.Get(ctx)

	resp, err := call()
	if err != nil {
		log.Debug().Err(err).Str("browser", c.id).Str("operation", op).Msg("session: authentication failed")
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}

	user, err := c.adopt(ctx, resp)
	if err != nil {
		log.Warn().Err(err).Str("browser", c.id).Str("operation", op).Msg("session: restoring previous session")
		c.restore(ctx, gen, prevTokens, prevUser)
		return nil, err
	}
	return user, nil
}

func (c *Controller) adopt(ctx context.Context, resp *gateway.AuthResponse) (*users.User, error) {
	if !c.tokens.Get(ctx).Valid() {
		return nil, apperrors.ErrNoToken
	}

	user := resp.User
	if user == nil {
		fetched, err := c.api.GetCurrentUser(ctx)
		if err != nil {
			return nil, err
		}
		user = fetched
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// The startup check may have cleared the stores while the user was fetched
	if !c.tokens.Get(ctx).Valid() {
		return nil, apperrors.ErrNoToken
	}

	c.users.Save(ctx, user)
	c.transitionLocked(StateAuthenticated, user)
	return user, nil
}

// restore puts back the stores as they were before attempt gen. If the
// session moved on since then, the newer outcome stands and only a
// half-written login is removed.
func (c *Controller) restore(ctx context.Context, gen uint64, prevTokens *tokens.Pair, prevUser *users.User) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen != gen {
		if c.state != StateAuthenticated {
			c.tokens.Clear(ctx)
			c.users.Clear(ctx)
		}
		return
	}

	if prevTokens == nil {
		c.tokens.Clear(ctx)
	} else {
		c.tokens.Save(ctx, *prevTokens)
	}

	if prevUser == nil {
		c.users.Clear(ctx)
	} else {
		c.users.Save(ctx, prevUser)
	}
}

// Logout forgets the session locally; no backend call is made
func (c *Controller) Logout(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.tokens.Clear(ctx)
	c.users.Clear(ctx)
	c.transitionLocked(StateAnonymous, nil)
}

// RefreshUser re-reads the current user from the backend. A 401 ends the session.
func (c *Controller) RefreshUser(ctx context.Context) (*users.User, error) {
	if c.State() != StateAuthenticated {
		return nil, apperrors.ErrNotAuthenticated
	}

	user, err := c.api.GetCurrentUser(ctx)
	if err != nil {
		if gateway.IsUnauthorized(err) {
			log.Info().Str("browser", c.id).Msg("session: backend rejected credential")
			c.Logout(ctx)
		}
		return nil, err
	}

	c.users.Save(ctx, user)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateAuthenticated {
		c.user = user
	}
	return user, nil
}

func (c *Controller) HasRole(ctx context.Context, roleID string) bool {
	return c.users.HasRole(ctx, roleID)
}

func (c *Controller) IsAdmin(ctx context.Context) bool {
	return c.users.IsAdmin(ctx)
}

func (c *Controller) IsModerator(ctx context.Context) bool {
	return c.users.IsModerator(ctx)
}

// Snapshot is the auth context exposed to pages
type Snapshot struct {
	User            *users.User `json:"user"`
	IsLoading       bool        `json:"isLoading"`
	IsAuthenticated bool        `json:"isAuthenticated"`
	IsAdmin         bool        `json:"isAdmin"`
	IsModerator     bool        `json:"isModerator"`
}

func (c *Controller) Snapshot(ctx context.Context) Snapshot {
	state := c.State()
	user := c.User()
	authenticated := state == StateAuthenticated && user != nil
	return Snapshot{
		User:            user,
		IsLoading:       state == StateUnresolved,
		IsAuthenticated: authenticated,
		IsAdmin:         authenticated && c.IsAdmin(ctx),
		IsModerator:     authenticated && c.IsModerator(ctx),
	}
}

func (c *Controller) transitionLocked(to State, user *users.User) {
	from := c.state
	c.state = to
	c.user = user

	if from != to {
		c.metrics.RecordSessionTransition(from.String(), to.String())
		log.Info().Str("browser", c.id).Str("from", from.String()).Str("to", to.String()).Msg("session: state changed")
	}
}
