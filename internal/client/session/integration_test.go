package session

import (
	"context"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/elibrary/internal/client/api"
	"github.com/dmitrijs2005/elibrary/internal/client/models"
	"github.com/dmitrijs2005/elibrary/internal/client/services"
	"github.com/dmitrijs2005/elibrary/internal/client/storage"
	"github.com/dmitrijs2005/elibrary/internal/client/tokens"
	"github.com/dmitrijs2005/elibrary/internal/logging"
	"github.com/dmitrijs2005/elibrary/internal/testserver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wired struct {
	srv   *testserver.Server
	store *tokens.Store
	auth  services.AuthService
	ctrl  *Controller
}

func wire(t *testing.T) *wired {
	t.Helper()
	w := &wired{srv: testserver.Start()}
	t.Cleanup(w.srv.Close)

	w.store = tokens.NewStore(logging.Discard(), storage.NewMemory("durable"), storage.NewMemory("session"))
	client := api.New(w.srv.BaseURL(), w.store, logging.Discard())
	w.auth = services.NewAuthService(client, w.store)
	w.ctrl = NewController(w.store, w.auth, logging.Discard())
	client.SetAuthLost(w.ctrl.AuthLost)
	return w
}

func TestWired_ExpiredAccessIsRefreshedDuringInit(t *testing.T) {
	w := wire(t)
	ctx := context.Background()
	u := w.srv.AddStudent(models.User{Name: "Asha", Email: "asha@example.com"}, "pw")
	pair, err := w.srv.Issue(u.ID)
	require.NoError(t, err)
	require.NoError(t, w.store.Set(ctx, pair.AccessToken, pair.RefreshToken))
	w.srv.ExpireAccessTokens()

	s, err := w.ctrl.Init(ctx)
	require.NoError(t, err)
	assert.True(t, s.Authenticated)
	assert.Equal(t, models.RoleStudent, s.Role)
	assert.Equal(t, 1, w.srv.Hits(http.MethodPost, "/auth/refresh"))
}

func TestWired_FailedRefreshDuringInitIsAnonymous(t *testing.T) {
	w := wire(t)
	ctx := context.Background()
	u := w.srv.AddStudent(models.User{Name: "Asha", Email: "asha@example.com"}, "pw")
	pair, err := w.srv.Issue(u.ID)
	require.NoError(t, err)
	require.NoError(t, w.store.Set(ctx, pair.AccessToken, pair.RefreshToken))
	w.srv.ExpireAccessTokens()
	w.srv.FailRefresh(true)

	s, err := w.ctrl.Init(ctx)
	require.NoError(t, err)
	assert.True(t, s.Anonymous())
	_, ok := w.store.Access(ctx)
	assert.False(t, ok)
}

func TestWired_ExpiryAfterLoginSignsOut(t *testing.T) {
	w := wire(t)
	ctx := context.Background()
	w.srv.AddAdmin("root", "pw")

	_, err := w.ctrl.Init(ctx)
	require.NoError(t, err)
	user, err := w.auth.LoginAdmin(ctx, "root", []byte("pw"))
	require.NoError(t, err)
	require.NoError(t, w.ctrl.Login(ctx, user.Role, user))

	w.srv.ExpireAccessTokens()
	w.srv.RevokeRefreshTokens()

	_, err = w.auth.Me(ctx)
	require.ErrorIs(t, err, api.ErrUnauthorized)
	assert.True(t, w.ctrl.Current().Anonymous())
}
