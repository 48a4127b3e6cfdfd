package routes

import (
	"detectserver/internal/config"
	"detectserver/internal/handlers"
	"detectserver/internal/logger"
	"detectserver/internal/middleware"
	"detectserver/internal/services"
	feed "detectserver/internal/services/websocket"

	"github.com/gin-gonic/gin"
)

// SetupRoutes builds the gin engine. hub may be nil, which leaves the
// detection feed unmounted.
func SetupRoutes(manager *services.Manager, hub *feed.HubService, cfg *config.Config, logger *logger.Logger) *gin.Engine {
	if cfg.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		gin.Recovery(),
	)
	router.MaxMultipartMemory = cfg.MaxUploadBytes()

	router.GET("/healthcheck", handlers.HealthcheckHandler())

	router.POST("/img_object_detection_to_json", handlers.DetectToJSONHandler(manager, cfg, logger))
	router.POST("/img_object_detection_to_img", handlers.DetectToImageHandler(manager, cfg, logger))
	router.POST("/img_object_detection_to_crop", handlers.DetectToCropHandler(manager, cfg, logger))

	if hub != nil {
		router.GET("/ws/detections", handlers.DetectionFeedHandler(hub, logger))
	}

	if cfg.ExposeLogs {
		router.GET("/logs/:level", handlers.ShowLogsHandler(cfg))
	}

	return router
}
