package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"imagesearch/common/config"
	"imagesearch/common/relay"
	"imagesearch/services/relay/docs"
)

// @title          Image Search Relay
// @version        1.0
// @description    Relays image classification and search requests to the backend

// @license.name MIT
// @license.url  https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api

func main() {
	cfg, err := config.Load()
	logger := cfg.NewLogger("relay")
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	gin.SetMode(cfg.GinMode)
	docs.SwaggerInfo.Host = hostFromAddr(cfg.ServerAddr)

	r, err := relay.New(cfg.BackendURL, cfg.BackendAPIKey,
		relay.WithTimeout(cfg.RequestTimeout),
		relay.WithLogger(logger),
	)
	if err != nil {
		logger.Error("failed to create relay", "error", err)
		os.Exit(1)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: relay.NewRouter(r, cfg.AllowOrigins),
	}

	// Start server in a goroutine
	go func() {
		logger.Info("starting relay server", "addr", cfg.ServerAddr, "backend", cfg.BackendURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down relay server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("relay server exited")
}

func hostFromAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
