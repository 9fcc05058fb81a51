// Package adapter maps between the canonical task record and the remote
// service's wire shape. All functions are pure apart from NewTemporary's id
// generation.
package adapter

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"tasksync/internal/models"
)

// DefaultName replaces a blank title so the record stays displayable.
const DefaultName = "Untitled task"

// TempIDPrefix marks locally generated ids of not-yet-confirmed records.
const TempIDPrefix = "temp-"

// ToApp builds a canonical Task from a remote record. The owner id is
// stamped on all three owner fields the service understands; fallbackID is
// used when the remote record carries no id of its own. Timestamps pass
// through untouched.
func ToApp(r models.RemoteTask, ownerID, fallbackID string) models.Task {
	id := r.ID
	if id == "" {
		id = fallbackID
	}
	status := models.StatusTodo
	if r.Completed {
		status = models.StatusDone
	}
	name := strings.TrimSpace(r.Title)
	if name == "" {
		name = DefaultName
	}
	return models.Task{
		ID:          id,
		Name:        name,
		Description: r.Description,
		Status:      status,
		Priority:    models.PriorityMedium,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		UserID:      ownerID,
		Owner:       ownerID,
		OwnerID:     ownerID,
	}
}

// ToRemote is the inverse projection for outbound calls.
func ToRemote(t models.Task) models.RemoteTask {
	return models.RemoteTask{
		ID:          t.ID,
		Title:       t.Name,
		Description: t.Description,
		Completed:   t.Status == models.StatusDone,
		UserID:      t.UserID,
		Owner:       t.Owner,
		OwnerID:     t.OwnerID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// NewTemporary builds a Local-Temporary record from a create request: fresh
// temp id, defaults filled, both timestamps set to now.
func NewTemporary(p models.TaskPatch, ownerID string, now time.Time) models.Task {
	t := models.Task{
		ID:        TempIDPrefix + uuid.New().String(),
		Name:      DefaultName,
		Status:    models.StatusTodo,
		Priority:  models.PriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    ownerID,
		Owner:     ownerID,
		OwnerID:   ownerID,
		Temporary: true,
	}
	ApplyPatch(&t, p)
	return t
}

// ApplyPatch merges the non-nil fields of a patch into a task. A blank name
// falls back to the placeholder rather than going empty.
func ApplyPatch(t *models.Task, p models.TaskPatch) {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			name = DefaultName
		}
		t.Name = name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
}

// NormalizeName is the duplicate-suppression key: trimmed and case-folded.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
