package models

import "time"

// Status is the completion state of a task.
type Status string

const (
	StatusTodo Status = "TODO"
	StatusDone Status = "DONE"
)

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Task is the canonical task record kept in the local cache and handed to
// callers. The three owner fields mirror what the remote service historically
// accepted; the adapter stamps the same owner id on all of them, and owner
// matching checks all three.
type Task struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	UserID      string    `json:"user_id,omitempty"`
	Owner       string    `json:"owner,omitempty"`
	OwnerID     string    `json:"userId,omitempty"`
	Temporary   bool      `json:"isTemp,omitempty"`
}

// BelongsTo reports whether the task is owned by the given owner id.
// Any of the three owner fields may carry the id.
func (t Task) BelongsTo(ownerID string) bool {
	if ownerID == "" {
		return false
	}
	return t.UserID == ownerID || t.Owner == ownerID || t.OwnerID == ownerID
}

// OwnerValue returns the first non-empty owner field.
func (t Task) OwnerValue() string {
	if t.UserID != "" {
		return t.UserID
	}
	if t.Owner != "" {
		return t.Owner
	}
	return t.OwnerID
}

// RemoteTask is the wire shape of the remote task service.
type RemoteTask struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	UserID      string    `json:"user_id,omitempty"`
	Owner       string    `json:"owner,omitempty"`
	OwnerID     string    `json:"userId,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

// BelongsTo reports whether the remote record is owned by the given owner id.
func (r RemoteTask) BelongsTo(ownerID string) bool {
	if ownerID == "" {
		return false
	}
	return r.UserID == ownerID || r.Owner == ownerID || r.OwnerID == ownerID
}

// TaskPatch carries a partial update. Nil fields are left untouched.
type TaskPatch struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
}

// TaskEvent is the change-feed payload published after a locally-committed
// mutation (create/update/delete).
type TaskEvent struct {
	Action     string    `json:"action"` // create, update, delete
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	Name       string    `json:"name,omitempty"`
	Temporary  bool      `json:"temporary,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
