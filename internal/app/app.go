package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"detectserver/internal/config"
	"detectserver/internal/logger"
	"detectserver/internal/routes"
	"detectserver/internal/services"
	"detectserver/internal/services/ai"
	"detectserver/internal/services/websocket"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config     *config.Config
	logger     *logger.Logger
	detector   ai.Detector
	hubService *websocket.HubService
	manager    *services.Manager
	router     *gin.Engine
}

// NewApp loads configuration and the detection model once. A model that
// fails to load aborts startup.
func NewApp() (*App, error) {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init logger")
	}

	detector, err := ai.NewDetector(cfg, log)
	if err != nil {
		log.Error("Failed to load detection model: %v", err)
		log.Close()
		return nil, errors.Wrap(err, "load detector")
	}

	var (
		hub  *websocket.HubService
		feed services.EventPublisher
	)
	if cfg.FeedEnabled {
		hub = websocket.NewHubService(log)
		feed = hub
	}

	mng := services.NewManager(detector, feed, cfg, log)

	return &App{
		config:     cfg,
		logger:     log,
		detector:   detector,
		hubService: hub,
		manager:    mng,
		router:     routes.SetupRoutes(mng, hub, cfg, log),
	}, nil
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	if a.hubService != nil {
		go a.hubService.Run(hubCtx)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.config.Port),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	a.logger.Info("Object detection server listening on :%d (backend %s, model %s)",
		a.config.Port, a.config.DetectorBackend, a.config.ModelPath)

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "serve http")
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down")
	// stop the feed first so open websocket handlers return
	stopHub()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown http")
	}
	return nil
}

func (a *App) close() {
	if err := a.detector.Close(); err != nil {
		a.logger.Error("Error releasing detector: %v", err)
	}
	a.logger.Close()
}
