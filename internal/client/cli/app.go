package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/elibrary/internal/client/api"
	"github.com/dmitrijs2005/elibrary/internal/client/config"
	"github.com/dmitrijs2005/elibrary/internal/client/services"
	"github.com/dmitrijs2005/elibrary/internal/client/session"
	"github.com/dmitrijs2005/elibrary/internal/client/storage"
	"github.com/dmitrijs2005/elibrary/internal/client/tokens"
	"github.com/dmitrijs2005/elibrary/internal/logging"
	"github.com/google/uuid"
)

// screen is the CLI counterpart of the page the user is on.
type screen int32

const (
	screenHome screen = iota
	screenLoginSelector
	screenLogin
	screenRegister
)

type App struct {
	config *config.Config
	log    logging.Logger
	out    io.Writer
	reader *bufio.Reader

	store       *tokens.Store
	client      *api.Client
	session     *session.Controller
	auth        services.AuthService
	content     services.ContentService
	discussions services.DiscussionService
	admin       services.AdminService
	student     services.StudentService

	screen  atomic.Int32
	expired atomic.Bool
	closers []func() error
}

// NewApp opens credential storage and wires the services for cfg.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	durable, tab, closers, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store := tokens.NewStore(log, durable, tab)
	a := newApp(cfg, log, store, os.Stdin, os.Stdout)
	a.closers = closers
	return a, nil
}

func newApp(cfg *config.Config, log logging.Logger, store *tokens.Store, in io.Reader, out io.Writer) *App {
	a := &App{
		config: cfg,
		log:    log,
		out:    &syncWriter{w: out},
		reader: bufio.NewReader(in),
		store:  store,
	}
	a.client = api.New(cfg.BaseURL, store, log,
		api.WithTimeouts(cfg.RequestTimeout, cfg.UploadTimeout),
		api.WithLoginScreen(a.onLoginScreen),
		api.WithAuthLost(a.authLost),
	)
	a.auth = services.NewAuthService(a.client, store)
	a.content = services.NewContentService(a.client)
	a.discussions = services.NewDiscussionService(a.client)
	a.admin = services.NewAdminService(a.client)
	a.student = services.NewStudentService(a.client)
	a.session = session.NewController(store, a.auth, log)
	return a
}

// openStorage picks the durable and tab-scoped backends. With a Redis URL
// both live in Redis, the tab scope under a per-process prefix with a TTL;
// otherwise durable credentials go to sqlite and the tab scope stays in
// memory.
func openStorage(ctx context.Context, cfg *config.Config) (storage.Backend, storage.Backend, []func() error, error) {
	if cfg.RedisURL != "" {
		rc, err := storage.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		durable := storage.NewRedis("redis", rc, "elibrary:", 0)
		tab := storage.NewRedis("redis-session", rc, "elibrary:session:"+uuid.NewString()+":", cfg.SessionTTL)
		return durable, tab, []func() error{rc.Close}, nil
	}

	db, err := storage.OpenSQLite(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open %s: %w", cfg.DatabaseDSN, err)
	}
	return storage.NewSQLite("sqlite", db), storage.NewMemory("session"), []func() error{db.Close}, nil
}

// Run resolves the session and then serves the REPL until the user exits.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	fmt.Fprintln(a.out, "Welcome to the college e-library CLI (type 'help' for commands)")
	s, err := a.session.Init(ctx)
	if err != nil && !errors.Is(err, session.ErrAlreadyInitialized) {
		return err
	}
	a.greet(s)

	stop := a.followSession()
	defer stop()

	runREPL(ctx, a, a.status, a.reader)
	return nil
}

// followSession announces sessions that end because the server rejected
// the credentials, whichever goroutine's request noticed it.
func (a *App) followSession() func() {
	ch, unsubscribe := a.session.Subscribe()
	done := make(chan struct{})

	go func() {
		prev := <-ch
		for {
			select {
			case <-done:
				return
			case s := <-ch:
				if s.Authenticated {
					a.expired.Store(false)
				} else if prev.Authenticated && a.expired.Swap(false) {
					fmt.Fprintln(a.out, "Your session has expired. Please log in again ('login student' or 'login admin').")
				}
				prev = s
			}
		}
	}()

	return func() {
		unsubscribe()
		close(done)
	}
}

func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) current() session.Session {
	return a.session.Current()
}

func (a *App) greet(s session.Session) {
	switch {
	case s.Authenticated && s.Unverified:
		fmt.Fprintf(a.out, "Server unreachable; continuing as %s from saved credentials.\n", s.Role)
	case s.Authenticated:
		fmt.Fprintf(a.out, "Welcome back, %s (%s).\n", displayName(s), s.Role)
	default:
		a.setScreen(screenLoginSelector)
		fmt.Fprintln(a.out, "Not logged in. Use 'login student', 'login admin' or 'register'.")
	}
}

func (a *App) status() string {
	s := a.current()
	switch {
	case s.Initializing:
		return "(...)"
	case !s.Authenticated:
		return ""
	case s.Unverified:
		return fmt.Sprintf("(%s %s offline)", s.Role, displayName(s))
	default:
		return fmt.Sprintf("(%s %s)", s.Role, displayName(s))
	}
}

func displayName(s session.Session) string {
	if name := s.User.DisplayName(); name != "" {
		return name
	}
	return s.Role.String()
}

func (a *App) setScreen(s screen) {
	a.screen.Store(int32(s))
}

func (a *App) onLoginScreen() bool {
	switch screen(a.screen.Load()) {
	case screenLoginSelector, screenLogin:
		return true
	}
	return false
}

// authLost is the request client's hard-logout callback. The notice is
// printed by followSession once the session state changes.
func (a *App) authLost(ctx context.Context, ev api.AuthLost) {
	if ev.Redirect {
		a.setScreen(screenLoginSelector)
		if a.current().Authenticated {
			a.expired.Store(true)
		}
	}
	a.session.AuthLost(ctx, ev)
}

// syncWriter serializes writes from the REPL and polling goroutines.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
