package services

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/elibrary/internal/client/api"
)

// fakeDoer records requests and answers with a canned envelope.
type fakeDoer struct {
	Data    any
	Success bool
	Message string
	Err     error

	Requests []*api.Request
}

func (f *fakeDoer) Do(_ context.Context, req *api.Request) (*api.Envelope, error) {
	f.Requests = append(f.Requests, req)
	if f.Err != nil {
		return nil, f.Err
	}
	env := &api.Envelope{Success: f.Success, Message: f.Message, Status: 200, Method: req.Method, Path: req.Path}
	if f.Data != nil {
		b, err := json.Marshal(f.Data)
		if err != nil {
			return nil, err
		}
		env.Data = b
	}
	return env, nil
}

func (f *fakeDoer) last() *api.Request {
	if len(f.Requests) == 0 {
		return nil
	}
	return f.Requests[len(f.Requests)-1]
}

type fakeTokens struct {
	Access, Refresh string
	Err             error
	Calls           int
}

func (f *fakeTokens) Set(_ context.Context, a, r string) error {
	f.Calls++
	if f.Err != nil {
		return f.Err
	}
	f.Access, f.Refresh = a, r
	return nil
}
