// Package kv provides the key/value persistence backend behind the task
// cache: a get/set/remove contract with in-memory, file, Redis and Postgres
// implementations.
package kv

import "context"

// Store is a string key/value store. Get reports a miss with found == false;
// an error means the backend itself failed.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Null is the store used when no persistence backend is available: every
// read misses and writes are dropped. The cache on top of it behaves as
// permanently empty.
type Null struct{}

func (Null) Get(ctx context.Context, key string) (string, bool, error) { return "", false, nil }
func (Null) Set(ctx context.Context, key, value string) error          { return nil }
func (Null) Delete(ctx context.Context, key string) error              { return nil }
