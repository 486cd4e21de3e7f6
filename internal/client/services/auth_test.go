package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/elibrary/internal/client/api"
	"github.com/dmitrijs2005/elibrary/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginStudent_StoresTokensAndWipesPassword(t *testing.T) {
	d := &fakeDoer{Success: true, Data: models.LoginResult{
		User:      models.User{ID: "s1", Name: "Asha", Role: models.RoleStudent},
		TokenPair: models.TokenPair{AccessToken: "a1", RefreshToken: "r1"},
	}}
	tok := &fakeTokens{}
	svc := NewAuthService(d, tok)

	pw := []byte("secret")
	u, err := svc.LoginStudent(context.Background(), "asha@example.com", pw)
	require.NoError(t, err)
	assert.Equal(t, "Asha", u.Name)
	assert.Equal(t, "a1", tok.Access)
	assert.Equal(t, "r1", tok.Refresh)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0}, pw)

	req := d.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/auth/login/student", req.Path)
	assert.Equal(t, map[string]string{"email": "asha@example.com", "password": "secret"}, req.Body)
}

func TestLoginAdmin_Path(t *testing.T) {
	d := &fakeDoer{Success: true, Data: models.LoginResult{
		User:      models.User{ID: "a1", Username: "root", Role: models.RoleAdmin},
		TokenPair: models.TokenPair{AccessToken: "a", RefreshToken: "r"},
	}}
	svc := NewAuthService(d, &fakeTokens{})

	u, err := svc.LoginAdmin(context.Background(), "root", []byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.Equal(t, "/auth/login/admin", d.last().Path)
}

func TestLogin_Failures(t *testing.T) {
	t.Run("rejected", func(t *testing.T) {
		tok := &fakeTokens{}
		svc := NewAuthService(&fakeDoer{Success: false, Message: "Your account is pending approval"}, tok)

		_, err := svc.LoginStudent(context.Background(), "x", []byte("y"))
		require.Error(t, err)
		assert.ErrorIs(t, err, api.ErrRejected)
		assert.Equal(t, "Your account is pending approval", api.MessageOf(err))
		assert.Zero(t, tok.Calls)
	})

	t.Run("missing tokens", func(t *testing.T) {
		tok := &fakeTokens{}
		svc := NewAuthService(&fakeDoer{Success: true, Data: models.LoginResult{User: models.User{ID: "s1"}}}, tok)

		_, err := svc.LoginStudent(context.Background(), "x", []byte("y"))
		assert.ErrorIs(t, err, ErrMissingTokens)
		assert.Zero(t, tok.Calls)
	})

	t.Run("store failure", func(t *testing.T) {
		boom := errors.New("disk full")
		svc := NewAuthService(&fakeDoer{Success: true, Data: models.LoginResult{
			TokenPair: models.TokenPair{AccessToken: "a", RefreshToken: "r"},
		}}, &fakeTokens{Err: boom})

		_, err := svc.LoginStudent(context.Background(), "x", []byte("y"))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("transport", func(t *testing.T) {
		netErr := &api.Error{Kind: api.KindNetwork}
		svc := NewAuthService(&fakeDoer{Err: netErr}, &fakeTokens{})

		_, err := svc.LoginStudent(context.Background(), "x", []byte("y"))
		assert.ErrorIs(t, err, api.ErrUnavailable)
	})
}

func TestRegister_ReturnsServerMessage(t *testing.T) {
	d := &fakeDoer{Success: true, Message: "Registration successful"}
	svc := NewAuthService(d, &fakeTokens{})

	reg := models.Registration{Name: "Ravi", Email: "ravi@example.com", Password: "pw", RollNo: "21CS07"}
	msg, err := svc.Register(context.Background(), reg)
	require.NoError(t, err)
	assert.Equal(t, "Registration successful", msg)
	assert.Equal(t, "/auth/register", d.last().Path)
	assert.Equal(t, reg, d.last().Body)
}

func TestMeAndLogout(t *testing.T) {
	d := &fakeDoer{Success: true, Data: models.User{ID: "s1", Role: models.RoleStudent}}
	svc := NewAuthService(d, &fakeTokens{})

	u, err := svc.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "s1", u.ID)
	assert.Equal(t, http.MethodGet, d.last().Method)

	require.NoError(t, svc.Logout(context.Background()))
	assert.Equal(t, "/auth/logout", d.last().Path)

	d.Success, d.Message = false, "already logged out"
	err = svc.Logout(context.Background())
	assert.ErrorIs(t, err, api.ErrRejected)
}
