package services

import (
	"context"
	"net/url"

	"github.com/dmitrijs2005/elibrary/internal/client/api"
)

// Doer sends one API request. *api.Client implements it.
type Doer interface {
	Do(ctx context.Context, req *api.Request) (*api.Envelope, error)
}

func call[T any](ctx context.Context, d Doer, req *api.Request) (T, error) {
	env, err := d.Do(ctx, req)
	if err != nil {
		var zero T
		return zero, err
	}
	return api.Decode[T](env)
}

// exec runs a request whose data is irrelevant and returns the server message.
func exec(ctx context.Context, d Doer, req *api.Request) (string, error) {
	env, err := d.Do(ctx, req)
	if err != nil {
		return "", err
	}
	if err := env.Err(); err != nil {
		return "", err
	}
	return env.Message, nil
}

func escape(id string) string {
	return url.PathEscape(id)
}
