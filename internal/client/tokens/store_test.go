package tokens

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/elibrary/internal/client/models"
	"github.com/dmitrijs2005/elibrary/internal/client/storage"
	"github.com/dmitrijs2005/elibrary/internal/common"
	"github.com/dmitrijs2005/elibrary/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenBackend fails every call.
type brokenBackend struct{}

var errBroken = errors.New("disk on fire")

func (brokenBackend) Name() string { return "broken" }
func (brokenBackend) Get(context.Context, string) (string, bool, error) {
	return "", false, errBroken
}
func (brokenBackend) SetMany(context.Context, map[string]string) error { return errBroken }
func (brokenBackend) Delete(context.Context, ...string) error           { return errBroken }

func newStore() (*Store, *storage.Memory, *storage.Memory) {
	durable := storage.NewMemory("durable")
	session := storage.NewMemory("session")
	return NewStore(logging.Discard(), durable, session), durable, session
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	pairs := [][2]string{
		{"a", "r"},
		{"eyJhbGciOiJIUzI1NiJ9.x.y", "6f1c0e"},
		{"tok with spaces", "ünïcode"},
	}

	for _, p := range pairs {
		s, _, _ := newStore()
		require.NoError(t, s.Set(ctx, p[0], p[1]))

		access, ok := s.Access(ctx)
		require.True(t, ok)
		assert.Equal(t, p[0], access)

		refresh, ok := s.Refresh(ctx)
		require.True(t, ok)
		assert.Equal(t, p[1], refresh)
	}
}

func TestStore_SetWritesOnlyDurable(t *testing.T) {
	s, durable, session := newStore()
	require.NoError(t, s.Set(context.Background(), "a", "r"))

	assert.Equal(t, 2, durable.Len())
	assert.Equal(t, 0, session.Len())
}

func TestStore_SetRejectsEmpty(t *testing.T) {
	s, durable, _ := newStore()
	require.ErrorIs(t, s.Set(context.Background(), "", "r"), ErrEmptyToken)
	require.ErrorIs(t, s.Set(context.Background(), "a", ""), ErrEmptyToken)
	assert.Equal(t, 0, durable.Len())
}

func TestStore_LookupPrefersDurableThenFallsBack(t *testing.T) {
	ctx := context.Background()
	s, durable, session := newStore()

	require.NoError(t, session.SetMany(ctx, map[string]string{common.AccessTokenKey: "tab"}))
	access, ok := s.Access(ctx)
	require.True(t, ok)
	assert.Equal(t, "tab", access, "falls back to tab-scoped storage")

	require.NoError(t, durable.SetMany(ctx, map[string]string{common.AccessTokenKey: "disk"}))
	access, ok = s.Access(ctx)
	require.True(t, ok)
	assert.Equal(t, "disk", access, "durable wins")

	assert.Equal(t, []string{"durable", "session"}, s.Backends())
}

func TestStore_BrokenBackendReadsAsAbsent(t *testing.T) {
	ctx := context.Background()
	session := storage.NewMemory("session")
	s := NewStore(logging.Discard(), brokenBackend{}, session)

	_, ok := s.Access(ctx)
	assert.False(t, ok)

	require.NoError(t, session.SetMany(ctx, map[string]string{common.RefreshTokenKey: "r"}))
	refresh, ok := s.Refresh(ctx)
	assert.True(t, ok)
	assert.Equal(t, "r", refresh)

	require.ErrorIs(t, s.Set(ctx, "a", "r"), errBroken)
}

func TestStore_EmptyValueIsAbsent(t *testing.T) {
	ctx := context.Background()
	s, durable, _ := newStore()
	require.NoError(t, durable.SetMany(ctx, map[string]string{common.AccessTokenKey: ""}))

	_, ok := s.Access(ctx)
	assert.False(t, ok)
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, durable, session := newStore()

	require.NoError(t, s.Clear(ctx), "clear on empty store")

	require.NoError(t, s.Set(ctx, "a", "r"))
	require.NoError(t, session.SetMany(ctx, map[string]string{common.AccessTokenKey: "tab", common.RefreshTokenKey: "tab-r"}))
	require.NoError(t, s.SaveSession(ctx, Snapshot{Role: models.RoleStudent, Student: &models.User{Name: "Asha"}}))

	for i := 0; i < 2; i++ {
		require.NoError(t, s.Clear(ctx))

		_, ok := s.Access(ctx)
		assert.False(t, ok)
		_, ok = s.Refresh(ctx)
		assert.False(t, ok)
		_, ok = s.LoadSession(ctx)
		assert.False(t, ok)
		assert.Equal(t, 0, durable.Len())
		assert.Equal(t, 0, session.Len())
	}
}

func TestStore_ClearReportsButContinues(t *testing.T) {
	ctx := context.Background()
	session := storage.NewMemory("session")
	require.NoError(t, session.SetMany(ctx, map[string]string{common.AccessTokenKey: "a", common.RoleKey: "admin"}))
	s := NewStore(logging.Discard(), brokenBackend{}, session)

	err := s.Clear(ctx)
	require.ErrorIs(t, err, errBroken)
	assert.Equal(t, 0, session.Len(), "tab-scoped storage still cleared")
}

func TestStore_SessionSnapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("student keeps identity", func(t *testing.T) {
		s, _, _ := newStore()
		student := &models.User{ID: "s1", Name: "Asha", Role: models.RoleStudent, RollNo: "21CS001"}
		require.NoError(t, s.SaveSession(ctx, Snapshot{Role: models.RoleStudent, Student: student}))

		snap, ok := s.LoadSession(ctx)
		require.True(t, ok)
		assert.Equal(t, models.RoleStudent, snap.Role)
		require.NotNil(t, snap.Student)
		assert.Equal(t, *student, *snap.Student)
	})

	t.Run("admin has no identity snapshot", func(t *testing.T) {
		s, _, session := newStore()
		require.NoError(t, s.SaveSession(ctx, Snapshot{Role: models.RoleAdmin, Student: &models.User{Name: "x"}}))

		snap, ok := s.LoadSession(ctx)
		require.True(t, ok)
		assert.Equal(t, models.RoleAdmin, snap.Role)
		assert.Nil(t, snap.Student)
		_, has, _ := session.Get(ctx, common.StudentKey)
		assert.False(t, has)
	})

	t.Run("role required", func(t *testing.T) {
		s, _, _ := newStore()
		require.Error(t, s.SaveSession(ctx, Snapshot{}))
	})

	t.Run("malformed values are absent", func(t *testing.T) {
		s, _, session := newStore()
		require.NoError(t, session.SetMany(ctx, map[string]string{common.LoggedInKey: "yes", common.RoleKey: "student"}))
		_, ok := s.LoadSession(ctx)
		assert.False(t, ok)

		require.NoError(t, session.SetMany(ctx, map[string]string{common.LoggedInKey: "true", common.RoleKey: "wizard"}))
		_, ok = s.LoadSession(ctx)
		assert.False(t, ok)

		require.NoError(t, session.SetMany(ctx, map[string]string{common.RoleKey: "student", common.StudentKey: "{broken"}))
		snap, ok := s.LoadSession(ctx)
		assert.True(t, ok)
		assert.Equal(t, models.RoleStudent, snap.Role)
		assert.Nil(t, snap.Student)
	})
}
