package taskserver

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tasksync/internal/cache"
	"tasksync/internal/engine"
	"tasksync/internal/gateway"
	"tasksync/internal/kv"
	"tasksync/internal/models"
)

func newStack(t *testing.T, secret, token string) (*Server, *engine.Engine, func()) {
	t.Helper()
	srv := New(secret)
	ts := httptest.NewServer(srv.Router())
	gw := gateway.New(ts.URL, token, 2*time.Second)
	e := engine.New(cache.New(kv.NewMemory(), "cached_tasks"), gw, nil)
	return srv, e, ts.Close
}

func TestEndToEndLifecycle(t *testing.T) {
	ctx := context.Background()
	srv, e, done := newStack(t, "", "")
	defer done()

	srv.Seed(models.RemoteTask{Title: "Seeded", UserID: "u1"})
	srv.Seed(models.RemoteTask{Title: "Foreign", UserID: "u2"})

	// Create through the full stack.
	name := "Buy milk"
	created, err := e.Create(ctx, models.TaskPatch{Name: &name}, "u1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Temporary {
		t.Fatal("create against a live server must confirm")
	}

	tasks, err := e.FetchTasks(ctx, "u1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks, want 2 (seeded + created): %+v", len(tasks), tasks)
	}
	for _, task := range tasks {
		if !task.BelongsTo("u1") {
			t.Errorf("foreign task leaked through the server filter: %+v", task)
		}
	}

	// Update propagates to the server.
	done2 := models.StatusDone
	if _, err := e.Update(ctx, created.ID, models.TaskPatch{Status: &done2}, "u1"); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := e.FetchByID(ctx, created.ID, "u1")
	if err != nil {
		t.Fatalf("fetch by id: %v", err)
	}
	if got.Status != models.StatusDone {
		t.Errorf("remote echo lost the update: %+v", got)
	}

	// Delete removes it everywhere.
	if err := e.Delete(ctx, created.ID, "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	tasks, _ = e.FetchTasks(ctx, "u1")
	for _, task := range tasks {
		if task.ID == created.ID {
			t.Fatalf("deleted task came back: %+v", task)
		}
	}
}

func TestAuthRequiredForMutations(t *testing.T) {
	ctx := context.Background()
	_, e, done := newStack(t, "server-secret", "") // no client token
	defer done()

	name := "Offline-ish"
	created, err := e.Create(ctx, models.TaskPatch{Name: &name}, "u1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !created.Temporary {
		t.Fatal("rejected create must fall back to a temporary record")
	}
}

func TestAuthAcceptsValidToken(t *testing.T) {
	ctx := context.Background()
	secret := "server-secret"
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "u1",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}

	_, e, done := newStack(t, secret, token)
	defer done()

	name := "Authorized"
	created, err := e.Create(ctx, models.TaskPatch{Name: &name}, "u1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Temporary {
		t.Fatal("authorized create must confirm")
	}
}
