// Package engine reconciles the local task cache with the remote task
// service and is the API surface of this module. Reads degrade to
// cache-only when the remote is unreachable; mutations commit locally first
// and converge to the remote outcome when one arrives.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/singleflight"

	"tasksync/internal/adapter"
	"tasksync/internal/cache"
	"tasksync/internal/feed"
	"tasksync/internal/models"
	"tasksync/pkg/logger"
)

var (
	// ErrUnauthenticated is returned when no owner id can be resolved.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrNotFound is returned when an id has no record in the owner's set.
	ErrNotFound = errors.New("task not found")
)

// Remote is the gateway contract the engine depends on.
type Remote interface {
	List(ctx context.Context, ownerID string) ([]models.Task, error)
	Create(ctx context.Context, task models.Task) (models.Task, error)
	Update(ctx context.Context, task models.Task) error
	Delete(ctx context.Context, id string) error
}

type Engine struct {
	cache  *cache.Store
	remote Remote
	feed   feed.Publisher
	now    func() time.Time

	fetchGroup singleflight.Group
}

func New(store *cache.Store, remote Remote, publisher feed.Publisher) *Engine {
	if publisher == nil {
		publisher = feed.Nop{}
	}
	return &Engine{
		cache:  store,
		remote: remote,
		feed:   publisher,
		now:    time.Now,
	}
}

// FetchTasks returns the owner's reconciled task list, newest update first.
// Concurrent calls for the same owner share one reconciliation pass.
func (e *Engine) FetchTasks(ctx context.Context, ownerID string) ([]models.Task, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}
	v, err, _ := e.fetchGroup.Do(ownerID, func() (interface{}, error) {
		return e.reconcile(logger.WithOwner(context.WithoutCancel(ctx), ownerID), ownerID), nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Task), nil
}

// reconcile merges the cached and remote record sets for one owner and
// persists the merged view.
func (e *Engine) reconcile(ctx context.Context, ownerID string) []models.Task {
	local := ownedOnly(e.cache.ReadAll(ctx), ownerID)

	remote, err := e.remote.List(ctx, ownerID)
	if err != nil {
		// Degrade-to-offline: the cache is authoritative until the service
		// is reachable again.
		logger.Warn(ctx, "remote list failed; serving cached tasks", "error", err)
		return sortByUpdated(local)
	}

	// Drop temporary records whose name matches a remote record: the task
	// was created offline and has since synced under a confirmed id.
	remoteNames := make(map[string]struct{}, len(remote))
	for _, r := range remote {
		remoteNames[adapter.NormalizeName(r.Name)] = struct{}{}
	}
	pruned := make([]models.Task, 0, len(local))
	for _, t := range local {
		if t.Temporary {
			if _, dup := remoteNames[adapter.NormalizeName(t.Name)]; dup {
				continue
			}
		}
		pruned = append(pruned, t)
	}

	if len(remote) == 0 {
		return sortByUpdated(pruned)
	}

	// Ordered merge by id: remote entries first and winning, local-only
	// entries (not-yet-synced) appended after.
	merged := make([]models.Task, 0, len(remote)+len(pruned))
	seen := make(map[string]struct{}, len(remote))
	for _, r := range remote {
		merged = append(merged, r)
		seen[r.ID] = struct{}{}
	}
	for _, t := range pruned {
		if _, ok := seen[t.ID]; !ok {
			merged = append(merged, t)
		}
	}
	e.cache.ReplaceForOwner(ctx, merged, ownerID)
	return sortByUpdated(merged)
}

// FetchByID returns one task from the owner's reconciled set.
func (e *Engine) FetchByID(ctx context.Context, id, ownerID string) (models.Task, error) {
	tasks, err := e.FetchTasks(ctx, ownerID)
	if err != nil {
		return models.Task{}, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Create makes a task visible locally before any network round trip, then
// tries to confirm it remotely. With an unreachable service the temporary
// record is the result; a later FetchTasks reconciles it away once the
// remote copy appears.
func (e *Engine) Create(ctx context.Context, patch models.TaskPatch, ownerID string) (models.Task, error) {
	if ownerID == "" {
		return models.Task{}, ErrUnauthenticated
	}
	ctx = logger.WithOwner(ctx, ownerID)

	temp := adapter.NewTemporary(patch, ownerID, e.now().UTC())
	e.cache.Upsert(ctx, temp)
	e.publish(ctx, "create", temp)

	confirmed, err := e.remote.Create(ctx, temp)
	if err != nil {
		logger.Warn(ctx, "remote create failed; keeping temporary task", "error", err, "id", temp.ID)
		return temp, nil
	}

	// The service does not echo every field back; carry them over from the
	// optimistic record.
	if confirmed.Description == "" {
		confirmed.Description = temp.Description
	}
	confirmed.Priority = temp.Priority
	if confirmed.CreatedAt.IsZero() {
		confirmed.CreatedAt = temp.CreatedAt
	}
	confirmed.UpdatedAt = e.now().UTC()
	confirmed.Temporary = false

	e.cache.RemoveByID(ctx, temp.ID)
	e.cache.Upsert(ctx, confirmed)
	e.publish(ctx, "create", confirmed)
	return confirmed, nil
}

// Update merges a patch over the owner's record, persists locally, then
// propagates best-effort. Local persistence succeeds even when the remote
// call fails.
func (e *Engine) Update(ctx context.Context, id string, patch models.TaskPatch, ownerID string) (models.Task, error) {
	if ownerID == "" {
		return models.Task{}, ErrUnauthenticated
	}
	ctx = logger.WithOwner(ctx, ownerID)

	task, ok := e.lookup(ctx, id, ownerID)
	if !ok {
		return models.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	adapter.ApplyPatch(&task, patch)
	task.UpdatedAt = e.now().UTC()
	e.cache.Upsert(ctx, task)
	e.publish(ctx, "update", task)

	if task.Temporary {
		// The service has never seen this id; the pending create will carry
		// the new state on the next reconciliation.
		logger.Debug(ctx, "skipping remote update for temporary task", "id", id)
		return task, nil
	}
	if err := e.remote.Update(ctx, task); err != nil {
		logger.Warn(ctx, "remote update failed; local copy kept", "error", err, "id", id)
	}
	return task, nil
}

// Delete removes the record locally first, then best-effort remotely. A
// remote failure does not resurrect the record.
func (e *Engine) Delete(ctx context.Context, id, ownerID string) error {
	if ownerID == "" {
		return ErrUnauthenticated
	}
	ctx = logger.WithOwner(ctx, ownerID)

	task, ok := e.lookup(ctx, id, ownerID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	e.cache.RemoveByID(ctx, id)
	e.publish(ctx, "delete", task)

	if task.Temporary {
		return nil
	}
	if err := e.remote.Delete(ctx, id); err != nil {
		logger.Warn(ctx, "remote delete failed; local removal stands", "error", err, "id", id)
	}
	return nil
}

// ClearForOwner removes every cached record for one owner. Used on logout.
func (e *Engine) ClearForOwner(ctx context.Context, ownerID string) {
	if ownerID == "" {
		return
	}
	e.cache.RemoveWhere(ctx, func(t models.Task) bool { return t.BelongsTo(ownerID) })
}

func (e *Engine) lookup(ctx context.Context, id, ownerID string) (models.Task, bool) {
	for _, t := range ownedOnly(e.cache.ReadAll(ctx), ownerID) {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

func (e *Engine) publish(ctx context.Context, action string, t models.Task) {
	e.feed.Publish(ctx, models.TaskEvent{
		Action:     action,
		ID:         t.ID,
		OwnerID:    t.OwnerValue(),
		Name:       t.Name,
		Temporary:  t.Temporary,
		OccurredAt: e.now().UTC(),
	})
}

func ownedOnly(tasks []models.Task, ownerID string) []models.Task {
	owned := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.BelongsTo(ownerID) {
			owned = append(owned, t)
		}
	}
	return owned
}

func sortByUpdated(tasks []models.Task) []models.Task {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].UpdatedAt.After(tasks[j].UpdatedAt)
	})
	return tasks
}
