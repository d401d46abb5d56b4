package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"plate-lookup-service/internal/adapters/primary/http/handlers"
	"plate-lookup-service/internal/adapters/primary/http/middleware"
	"plate-lookup-service/internal/app"
	"plate-lookup-service/internal/config"
	"plate-lookup-service/internal/core/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	app.InitLogger(cfg)

	// ============================================================================
	// Hexagonal Architecture Wiring
	// ============================================================================

	// Secondary Adapters (Output Ports)
	clients, err := app.NewClients(context.Background(), cfg)
	if err != nil {
		log.Fatalf("init clients: %v", err)
	}
	defer clients.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := clients.Detector.Ping(pingCtx); err != nil {
		log.WithError(err).Warn("plate detector is not reachable yet")
	} else {
		log.Info("plate detector reachable")
	}
	pingCancel()

	// Core Services (Application Layer)
	pipelineSvc, err := app.NewPipeline(cfg, clients)
	if err != nil {
		log.Fatalf("init pipeline: %v", err)
	}
	imageSvc := services.NewImageService(clients.Store)

	// Primary Adapter (HTTP Handlers)
	h := handlers.New(imageSvc, pipelineSvc, clients.Detector)

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())

	api := router.Group("/api/v1/lpr")
	h.RegisterRoutes(api)

	router.GET("/healthz", h.Health)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	baseCtx, cancelRequests := context.WithCancel(context.Background())
	defer cancelRequests()
	srv := newHTTPServer(baseCtx, addr, router)

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	// In-flight pipeline runs stop scheduling work and return their partial reports.
	cancelRequests()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

// newHTTPServer creates a server whose request contexts derive from baseCtx.
func newHTTPServer(baseCtx context.Context, addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
}
