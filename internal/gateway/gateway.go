// Package gateway is the only component that talks to the remote task
// service. Failures come back as typed errors; the reconciliation engine
// decides whether to degrade to cache-only behavior, not this layer.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tasksync/internal/adapter"
	"tasksync/internal/models"
)

// ErrRemoteUnavailable wraps any transport, status or decode failure. The
// engine treats it as "remote unreachable" and serves the cache.
var ErrRemoteUnavailable = errors.New("remote task service unavailable")

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New builds a client for the task service at baseURL. token, when
// non-empty, is sent as a bearer Authorization header on mutations.
func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		token:   token,
	}
}

// List fetches the remote records owned by ownerID. The service may respond
// with a bare JSON array or a {"data": [...]} envelope; records are filtered
// by owner on this side regardless, since older deployments ignore the query
// parameter.
func (c *Client) List(ctx context.Context, ownerID string) ([]models.Task, error) {
	u := c.baseURL + "/tasks"
	if ownerID != "" {
		u += "?user_id=" + url.QueryEscape(ownerID)
	}
	body, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	remotes, err := decodeList(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	var tasks []models.Task
	for _, r := range remotes {
		if !r.BelongsTo(ownerID) {
			continue
		}
		tasks = append(tasks, adapter.ToApp(r, ownerID, ""))
	}
	return tasks, nil
}

// Create attempts a remote creation. An error means no confirmed record was
// produced and the caller must keep its temporary one.
func (c *Client) Create(ctx context.Context, task models.Task) (models.Task, error) {
	payload := adapter.ToRemote(task)
	payload.ID = "" // the service assigns confirmed ids
	body, err := c.do(ctx, http.MethodPost, c.baseURL+"/tasks", payload)
	if err != nil {
		return models.Task{}, err
	}
	var created models.RemoteTask
	if err := json.Unmarshal(body, &created); err != nil {
		return models.Task{}, fmt.Errorf("%w: decode create response: %v", ErrRemoteUnavailable, err)
	}
	if created.ID == "" {
		return models.Task{}, fmt.Errorf("%w: create response carried no id", ErrRemoteUnavailable)
	}
	return adapter.ToApp(created, task.OwnerValue(), ""), nil
}

// Update propagates a task's current state. Best-effort from the caller's
// point of view; the error is for logging.
func (c *Client) Update(ctx context.Context, task models.Task) error {
	_, err := c.do(ctx, http.MethodPatch, c.baseURL+"/tasks/"+url.PathEscape(task.ID), adapter.ToRemote(task))
	return err
}

// Delete removes a remote record. Best-effort, like Update.
func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, c.baseURL+"/tasks/"+url.PathEscape(id), nil)
	return err
}

func (c *Client) do(ctx context.Context, method, u string, payload interface{}) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: marshal request: %v", ErrRemoteUnavailable, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrRemoteUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s %s returned %d", ErrRemoteUnavailable, method, u, resp.StatusCode)
	}
	return b, nil
}

// decodeList accepts both response shapes the service has used over time.
func decodeList(body []byte) ([]models.RemoteTask, error) {
	var remotes []models.RemoteTask
	if err := json.Unmarshal(body, &remotes); err == nil {
		return remotes, nil
	}
	var envelope struct {
		Data []models.RemoteTask `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}
