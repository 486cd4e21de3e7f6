package api

import (
	"encoding/json"
	"fmt"
)

// Envelope is the response shape shared by every endpoint:
// {success, data?, message?}.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`

	Status int    `json:"-"`
	Method string `json:"-"`
	Path   string `json:"-"`
}

// Err converts success=false into a KindBusiness error carrying the server
// message verbatim. It returns nil for successful envelopes.
func (e *Envelope) Err() error {
	if e.Success {
		return nil
	}
	return &Error{Kind: KindBusiness, Status: e.Status, Message: e.Message, Method: e.Method, Path: e.Path}
}

// Decode checks success and unmarshals the data field into T.
func Decode[T any](env *Envelope) (T, error) {
	var out T
	if err := env.Err(); err != nil {
		return out, err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, &Error{
			Kind:   KindUnexpected,
			Status: env.Status,
			Method: env.Method,
			Path:   env.Path,
			Err:    fmt.Errorf("decode data: %w", err),
		}
	}
	return out, nil
}
