// Package session owns the client's authentication state.
//
// A Controller starts Initializing, resolves exactly once into Authenticated
// or Anonymous, and afterwards only moves between those two through Login,
// Logout and AuthLost. It is the only writer of Session; everything else
// reads snapshots via Current or Subscribe.
package session

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/dmitrijs2005/elibrary/internal/client/api"
	"github.com/dmitrijs2005/elibrary/internal/client/models"
	"github.com/dmitrijs2005/elibrary/internal/client/tokens"
	"github.com/dmitrijs2005/elibrary/internal/logging"
)

var (
	ErrNotInitialized     = errors.New("session is still initializing")
	ErrAlreadyInitialized = errors.New("session already initialized")
	ErrNoRole             = errors.New("login requires a role")
)

// Session is a value snapshot of the authentication state.
type Session struct {
	Authenticated bool
	Role          models.Role
	Initializing  bool
	// Unverified marks a session inferred from local credentials because the
	// server could not be reached during initialization.
	Unverified bool
	User       *models.User
}

// Anonymous reports a resolved, signed-out session.
func (s Session) Anonymous() bool {
	return !s.Initializing && !s.Authenticated
}

func (s Session) clone() Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Store is the credential and flag storage the controller relies on.
type Store interface {
	Access(ctx context.Context) (string, bool)
	Clear(ctx context.Context) error
	SaveSession(ctx context.Context, snap tokens.Snapshot) error
	LoadSession(ctx context.Context) (tokens.Snapshot, bool)
}

// Identity is the server side of the session: who am I, and sign me out.
type Identity interface {
	Me(ctx context.Context) (*models.User, error)
	Logout(ctx context.Context) error
}

type Controller struct {
	store    Store
	identity Identity
	log      logging.Logger

	mu      sync.Mutex
	state   Session
	started bool
	done    bool
	ready   chan struct{}
	subs    map[chan Session]struct{}
}

func NewController(store Store, identity Identity, log logging.Logger) *Controller {
	return &Controller{
		store:    store,
		identity: identity,
		log:      log.With("component", "session"),
		state:    Session{Initializing: true},
		ready:    make(chan struct{}),
		subs:     map[chan Session]struct{}{},
	}
}

// Init resolves the initial state. Only the first call does any work; later
// calls return ErrAlreadyInitialized.
func (c *Controller) Init(ctx context.Context) (Session, error) {
	c.mu.Lock()
	if c.started {
		s := c.state.clone()
		c.mu.Unlock()
		return s, ErrAlreadyInitialized
	}
	c.started = true
	c.mu.Unlock()

	next := c.resolve(ctx)

	c.mu.Lock()
	c.done = true
	c.setLocked(next)
	s := c.state.clone()
	c.mu.Unlock()
	close(c.ready)

	c.log.Info(ctx, "session initialized", "authenticated", s.Authenticated, "role", s.Role, "unverified", s.Unverified)
	return s, nil
}

func (c *Controller) resolve(ctx context.Context) Session {
	if snap, ok := c.store.LoadSession(ctx); ok {
		c.log.Debug(ctx, "session restored from tab flags", "role", snap.Role)
		return Session{Authenticated: true, Role: snap.Role, User: snap.Student}
	}

	if _, ok := c.store.Access(ctx); !ok {
		return Session{}
	}

	user, err := c.identity.Me(ctx)
	switch {
	case err == nil:
		if user == nil || user.Role == models.RoleNone {
			c.log.Warn(ctx, "identity check returned no role, signing out")
			c.clear(ctx)
			return Session{}
		}
		c.save(ctx, user.Role, user)
		return Session{Authenticated: true, Role: user.Role, User: user}
	case rejected(err):
		c.log.Info(ctx, "stored credentials rejected", "error", err)
		c.clear(ctx)
		return Session{}
	default:
		c.log.Warn(ctx, "identity check failed, keeping local credentials", "error", err)
		return c.inferLocal(ctx)
	}
}

// rejected reports whether the server refused the credentials: 401, 403, or
// a success=false answer.
func rejected(err error) bool {
	if errors.Is(err, api.ErrUnauthorized) {
		return true
	}
	if !errors.Is(err, api.ErrRejected) {
		return false
	}
	status := api.StatusOf(err)
	return status == http.StatusForbidden || (status >= 200 && status < 300)
}

// inferLocal derives a session from the stored access token alone.
func (c *Controller) inferLocal(ctx context.Context) Session {
	access, ok := c.store.Access(ctx)
	if !ok {
		return Session{}
	}
	claims, err := tokens.Inspect(access)
	if err != nil {
		c.log.Debug(ctx, "cannot read role from stored token", "error", err)
		return Session{}
	}
	role, err := models.ParseRole(claims.Role)
	if err != nil || role == models.RoleNone {
		return Session{}
	}
	return Session{Authenticated: true, Role: role, Unverified: true}
}

// Ready is closed once Init has resolved the session.
func (c *Controller) Ready() <-chan struct{} {
	return c.ready
}

func (c *Controller) Current() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Login records a successful sign-in. Tokens must already be stored.
func (c *Controller) Login(ctx context.Context, role models.Role, user *models.User) error {
	if role == models.RoleNone {
		return ErrNoRole
	}
	c.mu.Lock()
	if !c.done {
		c.mu.Unlock()
		return ErrNotInitialized
	}
	c.mu.Unlock()

	c.save(ctx, role, user)

	c.mu.Lock()
	c.setLocked(Session{Authenticated: true, Role: role, User: user})
	c.mu.Unlock()

	c.log.Info(ctx, "signed in", "role", role, "user", user.DisplayName())
	return nil
}

// Logout tells the server best-effort, then clears local credentials and
// goes Anonymous whatever the server said.
func (c *Controller) Logout(ctx context.Context) error {
	c.mu.Lock()
	if !c.done {
		c.mu.Unlock()
		return ErrNotInitialized
	}
	c.mu.Unlock()

	if err := c.identity.Logout(ctx); err != nil {
		c.log.Warn(ctx, "server logout failed", "error", err)
	}
	c.clear(ctx)

	c.mu.Lock()
	c.setLocked(Session{})
	c.mu.Unlock()

	c.log.Info(ctx, "signed out")
	return nil
}

// AuthLost handles a hard logout reported by the request client. It is
// ignored while initializing; Init decides the outcome itself.
func (c *Controller) AuthLost(ctx context.Context, ev api.AuthLost) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.done {
		c.log.Debug(ctx, "auth lost during initialization", "cause", ev.Cause)
		return
	}
	if !c.state.Authenticated {
		return
	}
	c.log.Warn(ctx, "session lost", "cause", ev.Cause, "redirect", ev.Redirect)
	c.setLocked(Session{})
}

// Subscribe returns a channel that always holds the latest state, starting
// with the current one. Slow readers only miss intermediate states.
func (c *Controller) Subscribe() (<-chan Session, func()) {
	ch := make(chan Session, 1)

	c.mu.Lock()
	c.subs[ch] = struct{}{}
	ch <- c.state.clone()
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, ch)
			c.mu.Unlock()
		})
	}
}

func (c *Controller) setLocked(s Session) {
	c.state = s
	for ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s.clone()
	}
}

func (c *Controller) save(ctx context.Context, role models.Role, user *models.User) {
	snap := tokens.Snapshot{Role: role}
	if role == models.RoleStudent {
		snap.Student = user
	}
	if err := c.store.SaveSession(ctx, snap); err != nil {
		c.log.Warn(ctx, "saving session flags failed", "error", err)
	}
}

func (c *Controller) clear(ctx context.Context) {
	if err := c.store.Clear(ctx); err != nil {
		c.log.Warn(ctx, "clearing credentials failed", "error", err)
	}
}
