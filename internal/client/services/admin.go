package services

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/elibrary/internal/client/api"
	"github.com/dmitrijs2005/elibrary/internal/client/models"
)

// AdminService holds the moderation endpoints.
type AdminService interface {
	Students(ctx context.Context, q models.StudentQuery) ([]models.User, error)
	Pending(ctx context.Context) ([]models.User, error)
	Approve(ctx context.Context, id string) error
	Reject(ctx context.Context, id string) error
	Block(ctx context.Context, id string) error
	Unblock(ctx context.Context, id string) error
	DeleteContent(ctx context.Context, kind models.ContentKind, id string) error
	DeleteDiscussion(ctx context.Context, id string) error
	Stats(ctx context.Context) (models.DashboardStats, error)
}

type adminService struct {
	doer Doer
}

func NewAdminService(doer Doer) AdminService {
	return &adminService{doer: doer}
}

func (s *adminService) Students(ctx context.Context, q models.StudentQuery) ([]models.User, error) {
	return s.list(ctx, &api.Request{Method: http.MethodGet, Path: "/admin/students", Query: q})
}

func (s *adminService) Pending(ctx context.Context) ([]models.User, error) {
	return s.list(ctx, &api.Request{Method: http.MethodGet, Path: "/admin/students/pending"})
}

func (s *adminService) list(ctx context.Context, req *api.Request) ([]models.User, error) {
	users, err := call[[]models.User](ctx, s.doer, req)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (s *adminService) Approve(ctx context.Context, id string) error {
	return s.moderate(ctx, http.MethodPut, id, "approve")
}

// Reject deletes a pending registration.
func (s *adminService) Reject(ctx context.Context, id string) error {
	return s.moderate(ctx, http.MethodDelete, id, "reject")
}

func (s *adminService) Block(ctx context.Context, id string) error {
	return s.moderate(ctx, http.MethodPut, id, "block")
}

func (s *adminService) Unblock(ctx context.Context, id string) error {
	return s.moderate(ctx, http.MethodPut, id, "unblock")
}

func (s *adminService) moderate(ctx context.Context, method, id, action string) error {
	_, err := exec(ctx, s.doer, &api.Request{Method: method, Path: "/admin/students/" + escape(id) + "/" + action})
	return err
}

func (s *adminService) DeleteContent(ctx context.Context, kind models.ContentKind, id string) error {
	_, err := exec(ctx, s.doer, &api.Request{Method: http.MethodDelete, Path: "/admin/" + string(kind) + "/" + escape(id)})
	return err
}

func (s *adminService) DeleteDiscussion(ctx context.Context, id string) error {
	_, err := exec(ctx, s.doer, &api.Request{Method: http.MethodDelete, Path: "/admin/discussions/" + escape(id)})
	return err
}

func (s *adminService) Stats(ctx context.Context) (models.DashboardStats, error) {
	stats, err := call[models.DashboardStats](ctx, s.doer, &api.Request{Method: http.MethodGet, Path: "/admin/dashboard/stats"})
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = models.DashboardStats{}
	}
	return stats, nil
}
