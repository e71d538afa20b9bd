package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"imagesearch/common/client"
	"imagesearch/common/config"
	"imagesearch/common/webui"
)

func main() {
	cfg, err := config.Load()
	logger := cfg.NewLogger("web-client")
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	gin.SetMode(cfg.GinMode)

	backend := client.New(cfg.RelayURL, client.WithTimeout(cfg.RequestTimeout))
	server := webui.NewServer(backend, webui.NewStore(cfg.SessionTTL, cfg.SessionMax), logger)

	stopSweep := make(chan struct{})
	go server.Sweep(time.Minute, stopSweep)

	// Create HTTP server
	srv := &http.Server{
		Addr:    cfg.WebAddr,
		Handler: server.NewRouter(),
	}

	// Start server in a goroutine
	go func() {
		logger.Info("starting web client", "addr", cfg.WebAddr, "relay", cfg.RelayURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down web client")
	close(stopSweep)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("web client exited")
}
