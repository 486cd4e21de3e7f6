// Package storage provides the named key/value backends the token store
// reads and writes. A backend models one storage scope: the sqlite and redis
// backends are durable, the memory backend lives as long as the process.
package storage

import "context"

// Backend is a small string key/value store.
//
// Get reports ok=false for an absent key. SetMany replaces all given keys
// as one unit: either every value is written or none is. Delete ignores
// keys that do not exist.
type Backend interface {
	Name() string
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	SetMany(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
}
