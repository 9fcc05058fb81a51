package engine

import (
	"context"

	"tasksync/internal/models"
	"tasksync/internal/session"
)

// Client binds an Engine to a session provider so view-layer code does not
// thread owner ids by hand. Every call resolves the owner fresh; a provider
// that cannot resolve one yields ErrUnauthenticated.
type Client struct {
	engine  *Engine
	session session.Provider
}

func NewClient(e *Engine, p session.Provider) *Client {
	return &Client{engine: e, session: p}
}

func (c *Client) FetchTasks(ctx context.Context) ([]models.Task, error) {
	ownerID, ok := c.session.OwnerID(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	return c.engine.FetchTasks(ctx, ownerID)
}

func (c *Client) FetchByID(ctx context.Context, id string) (models.Task, error) {
	ownerID, ok := c.session.OwnerID(ctx)
	if !ok {
		return models.Task{}, ErrUnauthenticated
	}
	return c.engine.FetchByID(ctx, id, ownerID)
}

func (c *Client) Create(ctx context.Context, patch models.TaskPatch) (models.Task, error) {
	ownerID, ok := c.session.OwnerID(ctx)
	if !ok {
		return models.Task{}, ErrUnauthenticated
	}
	return c.engine.Create(ctx, patch, ownerID)
}

func (c *Client) Update(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	ownerID, ok := c.session.OwnerID(ctx)
	if !ok {
		return models.Task{}, ErrUnauthenticated
	}
	return c.engine.Update(ctx, id, patch, ownerID)
}

func (c *Client) Delete(ctx context.Context, id string) error {
	ownerID, ok := c.session.OwnerID(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	return c.engine.Delete(ctx, id, ownerID)
}

// Logout clears the owner's cached records. Safe to call when nobody is
// authenticated.
func (c *Client) Logout(ctx context.Context) {
	if ownerID, ok := c.session.OwnerID(ctx); ok {
		c.engine.ClearForOwner(ctx, ownerID)
	}
}
