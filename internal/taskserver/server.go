// Package taskserver is an in-memory stand-in for the remote task service,
// used by the dev script and the integration tests. It speaks the same wire
// shape the gateway expects: a /tasks resource with owner-filtered list,
// create, patch and delete.
package taskserver

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"tasksync/internal/models"
)

type Server struct {
	mu     sync.Mutex
	tasks  map[string]models.RemoteTask
	order  []string
	secret string
}

// New builds a server. With a non-empty secret, mutations require a valid
// bearer token; list stays public like the real service.
func New(secret string) *Server {
	return &Server{
		tasks:  make(map[string]models.RemoteTask),
		secret: secret,
	}
}

// Router mounts the task resource on a fresh gin engine.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "OK") })
	router.GET("/tasks", s.list)

	api := router.Group("")
	if s.secret != "" {
		api.Use(s.auth())
	}
	{
		api.POST("/tasks", s.create)
		api.PATCH("/tasks/:id", s.update)
		api.DELETE("/tasks/:id", s.delete)
	}
	return router
}

// Seed inserts a record directly, for tests and dev fixtures.
func (s *Server) Seed(t models.RemoteTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if _, exists := s.tasks[t.ID]; !exists {
		s.order = append(s.order, t.ID)
	}
	s.tasks[t.ID] = t
}

func (s *Server) list(c *gin.Context) {
	owner := c.Query("user_id")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.RemoteTask, 0, len(s.order))
	for _, id := range s.order {
		t := s.tasks[id]
		if owner != "" && !t.BelongsTo(owner) {
			continue
		}
		out = append(out, t)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) create(c *gin.Context) {
	var body models.RemoteTask
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if strings.TrimSpace(body.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}
	body.ID = uuid.New().String()
	now := time.Now().UTC()
	body.CreatedAt = now
	body.UpdatedAt = now

	s.mu.Lock()
	s.tasks[body.ID] = body
	s.order = append(s.order, body.ID)
	s.mu.Unlock()

	c.JSON(http.StatusCreated, body)
}

func (s *Server) update(c *gin.Context) {
	id := c.Param("id")
	var body struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Completed   *bool   `json:"completed"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	if body.Title != nil {
		t.Title = *body.Title
	}
	if body.Description != nil {
		t.Description = *body.Description
	}
	if body.Completed != nil {
		t.Completed = *body.Completed
	}
	t.UpdatedAt = time.Now().UTC()
	s.tasks[id] = t
	c.JSON(http.StatusOK, t)
}

func (s *Server) delete(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	delete(s.tasks, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(auth, prefix) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		tokenStr := strings.TrimSpace(auth[len(prefix):])
		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(s.secret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}
