package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/elibrary/internal/client/api"
	"github.com/dmitrijs2005/elibrary/internal/client/models"
	"github.com/dmitrijs2005/elibrary/internal/filex"
)

// ContentService reads and uploads books, notes and past-year papers.
type ContentService interface {
	List(ctx context.Context, kind models.ContentKind, filter models.Filter) ([]models.Item, error)
	Get(ctx context.Context, kind models.ContentKind, id string) (*models.Item, error)
	Upload(ctx context.Context, kind models.ContentKind, up models.Upload) (*models.Item, error)
	// Download fetches the item and writes its file under dest, returning the
	// path written.
	Download(ctx context.Context, kind models.ContentKind, id, dest string) (string, error)
}

type contentService struct {
	doer Doer
}

func NewContentService(doer Doer) ContentService {
	return &contentService{doer: doer}
}

func (s *contentService) List(ctx context.Context, kind models.ContentKind, filter models.Filter) ([]models.Item, error) {
	items, err := call[[]models.Item](ctx, s.doer, &api.Request{
		Method: http.MethodGet,
		Path:   "/content/" + string(kind),
		Query:  filter,
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Item{}
	}
	return items, nil
}

func (s *contentService) Get(ctx context.Context, kind models.ContentKind, id string) (*models.Item, error) {
	it, err := call[models.Item](ctx, s.doer, &api.Request{
		Method: http.MethodGet,
		Path:   "/content/" + string(kind) + "/" + escape(id),
	})
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *contentService) Upload(ctx context.Context, kind models.ContentKind, up models.Upload) (*models.Item, error) {
	if err := up.Validate(); err != nil {
		return nil, err
	}
	it, err := call[models.Item](ctx, s.doer, &api.Request{
		Method: http.MethodPost,
		Path:   "/content/" + string(kind),
		Form: &api.Form{
			Fields: map[string]string{
				"name":       up.Name,
				"category":   up.Category,
				"department": strings.ToUpper(up.Department),
				"year":       up.Year,
			},
			FileField: "file",
			FileName:  up.FileName,
			Content:   up.Content,
		},
	})
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *contentService) Download(ctx context.Context, kind models.ContentKind, id, dest string) (string, error) {
	it, err := s.Get(ctx, kind, id)
	if err != nil {
		return "", err
	}
	data, err := it.Payload()
	if err != nil {
		return "", err
	}
	path, err := filex.Target(dest, it.FileName)
	if err != nil {
		return "", err
	}
	if err := filex.WriteAtomic(path, data); err != nil {
		return "", fmt.Errorf("save %s: %w", it.Name, err)
	}
	return path, nil
}
