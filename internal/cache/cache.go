// Package cache is the local task cache: the full task collection, across
// all owners, serialized as one JSON document under a single key of the
// configured kv backend. Reads never fail (corrupt or missing data is
// treated as empty) and write failures are logged and swallowed, so a broken
// backend degrades the app to memory-only instead of breaking it.
package cache

import (
	"context"
	"encoding/json"

	"tasksync/internal/kv"
	"tasksync/internal/models"
	"tasksync/pkg/logger"
)

type Store struct {
	backend kv.Store
	key     string
}

func New(backend kv.Store, key string) *Store {
	return &Store{backend: backend, key: key}
}

// ReadAll returns every cached record across all owners. Backend errors and
// corrupt JSON yield an empty slice, never an error.
func (s *Store) ReadAll(ctx context.Context) []models.Task {
	raw, found, err := s.backend.Get(ctx, s.key)
	if err != nil {
		logger.Warn(ctx, "cache read failed", "error", err)
		return nil
	}
	if !found || raw == "" {
		return nil
	}
	var tasks []models.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		logger.Warn(ctx, "cache contains invalid JSON; treating as empty", "error", err)
		return nil
	}
	return tasks
}

// WriteAll replaces the entire cached collection. Failures are logged and
// swallowed.
func (s *Store) WriteAll(ctx context.Context, tasks []models.Task) {
	if tasks == nil {
		tasks = []models.Task{}
	}
	b, err := json.Marshal(tasks)
	if err != nil {
		logger.Error(ctx, "cache marshal failed", "error", err)
		return
	}
	if err := s.backend.Set(ctx, s.key, string(b)); err != nil {
		logger.Warn(ctx, "cache write failed", "error", err)
	}
}

// Upsert replaces the record with a matching id, or appends it.
func (s *Store) Upsert(ctx context.Context, task models.Task) {
	tasks := s.ReadAll(ctx)
	replaced := false
	for i := range tasks {
		if tasks[i].ID == task.ID {
			tasks[i] = task
			replaced = true
			break
		}
	}
	if !replaced {
		tasks = append(tasks, task)
	}
	s.WriteAll(ctx, tasks)
}

// RemoveByID drops the record with the given id, if present.
func (s *Store) RemoveByID(ctx context.Context, id string) {
	s.RemoveWhere(ctx, func(t models.Task) bool { return t.ID == id })
}

// RemoveWhere drops every record matching the predicate.
func (s *Store) RemoveWhere(ctx context.Context, match func(models.Task) bool) {
	tasks := s.ReadAll(ctx)
	kept := tasks[:0]
	for _, t := range tasks {
		if !match(t) {
			kept = append(kept, t)
		}
	}
	s.WriteAll(ctx, kept)
}

// ReplaceForOwner swaps in the given set for one owner while leaving records
// belonging to other owners untouched.
func (s *Store) ReplaceForOwner(ctx context.Context, tasks []models.Task, ownerID string) {
	if ownerID == "" {
		return
	}
	all := s.ReadAll(ctx)
	kept := all[:0]
	for _, t := range all {
		if !t.BelongsTo(ownerID) {
			kept = append(kept, t)
		}
	}
	s.WriteAll(ctx, append(kept, tasks...))
}
