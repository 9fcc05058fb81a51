// Package tasksync is the local-first synchronization core of a todo client.
// It keeps a per-owner task list usable with zero connectivity: reads merge
// the remote task service with a local cache, and mutations commit locally
// before they are confirmed remotely.
//
// View-layer code builds a client once and calls it per operation:
//
//	client := tasksync.New(ctx, session.Static{ID: ownerID})
//	tasks, err := client.FetchTasks(ctx)
package tasksync

import (
	"context"
	"time"

	"tasksync/internal/cache"
	"tasksync/internal/config"
	"tasksync/internal/engine"
	"tasksync/internal/feed"
	"tasksync/internal/gateway"
	"tasksync/internal/kv"
	"tasksync/internal/session"
	"tasksync/pkg/logger"
)

// New builds a client bound to the given session provider, wired from
// environment configuration.
func New(ctx context.Context, provider session.Provider) *engine.Client {
	return engine.NewClient(NewEngine(ctx), provider)
}

// NewEngine builds the reconciliation engine from environment configuration,
// for callers that thread owner ids explicitly.
func NewEngine(ctx context.Context) *engine.Engine {
	cfg := config.Get()

	gw := gateway.New(cfg.TasksAPIURL, cfg.TasksAPIToken,
		time.Duration(cfg.HTTPTimeoutSec)*time.Second)

	var publisher feed.Publisher = feed.Nop{}
	if k := feed.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic); k != nil {
		publisher = k
	}

	store := cache.New(newBackend(ctx, cfg), cfg.CacheKey)
	return engine.New(store, gw, publisher)
}

// newBackend picks the persistence backend: Postgres when a database URL is
// configured, otherwise the cache file, otherwise Redis, otherwise process
// memory. A configured backend that cannot be reached degrades to the null
// store (cache permanently empty) instead of failing, matching the policy
// everywhere else in this module: storage trouble never breaks the app.
func newBackend(ctx context.Context, cfg *config.Config) kv.Store {
	switch {
	case cfg.DatabaseURL != "":
		backend, err := kv.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Warn(ctx, "postgres backend unavailable; cache disabled", "error", err)
			return kv.Null{}
		}
		return backend
	case cfg.CacheFile != "":
		return kv.NewFile(cfg.CacheFile)
	case cfg.RedisURL != "":
		backend, err := kv.NewRedis(ctx, cfg.RedisURL, cfg.RedisPoolSize)
		if err != nil {
			logger.Warn(ctx, "redis backend unavailable; cache disabled", "error", err)
			return kv.Null{}
		}
		return backend
	default:
		return kv.NewMemory()
	}
}
