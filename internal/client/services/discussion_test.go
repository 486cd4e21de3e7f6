package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/elibrary/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscussionPost(t *testing.T) {
	d := &fakeDoer{Success: true, Data: models.Message{ID: "m1", Text: "hello"}}
	svc := NewDiscussionService(d)

	m, err := svc.Post(context.Background(), "  hello ")
	require.NoError(t, err)
	assert.Equal(t, "m1", m.ID)
	assert.Equal(t, map[string]string{"text": "hello"}, d.last().Body)

	_, err = svc.Post(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Len(t, d.Requests, 1)
}

func TestDiscussionListAndDelete(t *testing.T) {
	d := &fakeDoer{Success: true, Data: []models.Message{{ID: "m1"}, {ID: "m2"}}}
	svc := NewDiscussionService(d)

	msgs, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, msgs, 2)

	require.NoError(t, svc.Delete(context.Background(), "m2"))
	assert.Equal(t, http.MethodDelete, d.last().Method)
	assert.Equal(t, "/discussions/m2", d.last().Path)
}

func TestStudentProfile(t *testing.T) {
	d := &fakeDoer{Success: true, Data: models.User{ID: "s1", Mobile: "999"}}
	svc := NewStudentService(d)

	u, err := svc.UpdateProfile(context.Background(), models.ProfileUpdate{Mobile: "999"})
	require.NoError(t, err)
	assert.Equal(t, "999", u.Mobile)
	assert.Equal(t, http.MethodPut, d.last().Method)

	_, err = svc.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/students/profile", d.last().Path)
}
