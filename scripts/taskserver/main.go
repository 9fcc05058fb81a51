// Taskserver runs the fake remote task service for local development.
// Run from project root: go run ./scripts/taskserver
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tasksync/internal/config"
	"tasksync/internal/taskserver"
	"tasksync/pkg/logger"
)

func main() {
	config.LoadEnvFile(".env")
	ctx := context.Background()
	cfg := config.Get()

	srv := taskserver.New(cfg.JWTSecret)
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      srv.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	go func() {
		logger.Info(ctx, "Task server listening", "port", cfg.HTTPPort, "auth", cfg.JWTSecret != "")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "Shutting down task server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Server shutdown error", "error", err)
	}
}
