package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/elibrary/internal/client/api"
	"github.com/dmitrijs2005/elibrary/internal/client/models"
)

var ErrEmptyMessage = errors.New("message text is empty")

// DiscussionService reads and writes the shared discussion board.
type DiscussionService interface {
	List(ctx context.Context) ([]models.Message, error)
	Post(ctx context.Context, text string) (*models.Message, error)
	Delete(ctx context.Context, id string) error
}

type discussionService struct {
	doer Doer
}

func NewDiscussionService(doer Doer) DiscussionService {
	return &discussionService{doer: doer}
}

func (s *discussionService) List(ctx context.Context) ([]models.Message, error) {
	msgs, err := call[[]models.Message](ctx, s.doer, &api.Request{Method: http.MethodGet, Path: "/discussions"})
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	return msgs, nil
}

func (s *discussionService) Post(ctx context.Context, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	m, err := call[models.Message](ctx, s.doer, &api.Request{
		Method: http.MethodPost,
		Path:   "/discussions",
		Body:   map[string]string{"text": text},
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *discussionService) Delete(ctx context.Context, id string) error {
	_, err := exec(ctx, s.doer, &api.Request{Method: http.MethodDelete, Path: "/discussions/" + escape(id)})
	return err
}
