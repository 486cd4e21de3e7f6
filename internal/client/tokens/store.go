// Package tokens is the single owner of persisted credentials.
//
// A Store consults a ranked list of storage backends: the durable backend
// first, then the tab-scoped one. Tokens are always written to the durable
// backend; reads fall back to the tab-scoped backend so credentials placed
// there by an older client are still honoured. Session flags derived from a
// validated login (logged-in marker, role, student snapshot) live only in the
// tab-scoped backend.
package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/elibrary/internal/client/models"
	"github.com/dmitrijs2005/elibrary/internal/client/storage"
	"github.com/dmitrijs2005/elibrary/internal/common"
	"github.com/dmitrijs2005/elibrary/internal/logging"
)

var ErrEmptyToken = errors.New("empty token")

// Snapshot is the session state cached in tab-scoped storage.
type Snapshot struct {
	Role    models.Role
	Student *models.User
}

type Store struct {
	durable storage.Backend
	session storage.Backend
	ranked  []storage.Backend
	log     logging.Logger
}

func NewStore(log logging.Logger, durable, session storage.Backend) *Store {
	return &Store{
		durable: durable,
		session: session,
		ranked:  []storage.Backend{durable, session},
		log:     log.With("component", "tokens"),
	}
}

// Backends returns the lookup order by backend name.
func (s *Store) Backends() []string {
	names := make([]string, 0, len(s.ranked))
	for _, b := range s.ranked {
		names = append(names, b.Name())
	}
	return names
}

// Set replaces both tokens in durable storage in one write.
func (s *Store) Set(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken == "" || refreshToken == "" {
		return ErrEmptyToken
	}
	err := s.durable.SetMany(ctx, map[string]string{
		common.AccessTokenKey:  accessToken,
		common.RefreshTokenKey: refreshToken,
	})
	if err != nil {
		return fmt.Errorf("store tokens in %s: %w", s.durable.Name(), err)
	}
	return nil
}

// Access returns the access token, or ok=false when none is stored.
func (s *Store) Access(ctx context.Context) (string, bool) {
	return s.lookup(ctx, common.AccessTokenKey)
}

// Refresh returns the refresh token, or ok=false when none is stored.
func (s *Store) Refresh(ctx context.Context) (string, bool) {
	return s.lookup(ctx, common.RefreshTokenKey)
}

// lookup never fails: a backend error or an empty value counts as absent.
func (s *Store) lookup(ctx context.Context, key string) (string, bool) {
	for _, b := range s.ranked {
		v, ok, err := b.Get(ctx, key)
		if err != nil {
			s.log.Warn(ctx, "storage read failed, treating as absent", "backend", b.Name(), "key", key, "error", err)
			continue
		}
		if ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// Clear removes tokens from every backend and session flags from the
// tab-scoped backend. It attempts every deletion even if one fails and is
// safe to call on an empty store.
func (s *Store) Clear(ctx context.Context) error {
	var errs []error
	for _, b := range s.ranked {
		if err := b.Delete(ctx, common.AccessTokenKey, common.RefreshTokenKey); err != nil {
			errs = append(errs, fmt.Errorf("clear tokens in %s: %w", b.Name(), err))
		}
	}
	if err := s.session.Delete(ctx, common.LoggedInKey, common.RoleKey, common.StudentKey); err != nil {
		errs = append(errs, fmt.Errorf("clear session in %s: %w", s.session.Name(), err))
	}
	return errors.Join(errs...)
}

// SaveSession records a validated login in tab-scoped storage. The student
// snapshot is only kept for the student role.
func (s *Store) SaveSession(ctx context.Context, snap Snapshot) error {
	if snap.Role == models.RoleNone {
		return fmt.Errorf("save session: %w", errors.New("role is required"))
	}
	values := map[string]string{
		common.LoggedInKey: "true",
		common.RoleKey:     string(snap.Role),
	}
	if snap.Role == models.RoleStudent && snap.Student != nil {
		b, err := json.Marshal(snap.Student)
		if err != nil {
			return fmt.Errorf("encode student snapshot: %w", err)
		}
		values[common.StudentKey] = string(b)
	}
	if err := s.session.SetMany(ctx, values); err != nil {
		return fmt.Errorf("save session in %s: %w", s.session.Name(), err)
	}
	return nil
}

// LoadSession returns the cached session, ok=false when there is none or it
// cannot be trusted. A malformed student snapshot is dropped but does not
// invalidate the role.
func (s *Store) LoadSession(ctx context.Context) (Snapshot, bool) {
	loggedIn, ok, err := s.session.Get(ctx, common.LoggedInKey)
	if err != nil || !ok || loggedIn != "true" {
		return Snapshot{}, false
	}
	rawRole, ok, err := s.session.Get(ctx, common.RoleKey)
	if err != nil || !ok {
		return Snapshot{}, false
	}
	role, err := models.ParseRole(rawRole)
	if err != nil || role == models.RoleNone {
		s.log.Warn(ctx, "ignoring cached session with bad role", "role", rawRole)
		return Snapshot{}, false
	}

	snap := Snapshot{Role: role}
	if role != models.RoleStudent {
		return snap, true
	}
	raw, ok, err := s.session.Get(ctx, common.StudentKey)
	if err != nil || !ok {
		return snap, true
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		s.log.Warn(ctx, "ignoring malformed student snapshot", "error", err)
		return snap, true
	}
	snap.Student = &u
	return snap, true
}
