package services

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/elibrary/internal/client/api"
	"github.com/dmitrijs2005/elibrary/internal/client/models"
)

// StudentService reads and edits the signed-in student's profile.
type StudentService interface {
	Profile(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error)
}

type studentService struct {
	doer Doer
}

func NewStudentService(doer Doer) StudentService {
	return &studentService{doer: doer}
}

func (s *studentService) Profile(ctx context.Context) (*models.User, error) {
	u, err := call[models.User](ctx, s.doer, &api.Request{Method: http.MethodGet, Path: "/students/profile"})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *studentService) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error) {
	u, err := call[models.User](ctx, s.doer, &api.Request{Method: http.MethodPut, Path: "/students/profile", Body: upd})
	if err != nil {
		return nil, err
	}
	return &u, nil
}
