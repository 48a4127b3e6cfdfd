package handlers

import (
	"context"
	"net/http"

	"detectserver/internal/config"
	"detectserver/internal/logger"
	"detectserver/internal/middleware"
	"detectserver/internal/services"

	"github.com/gin-gonic/gin"
)

const classNameField = "class_name"

func requestContext(c *gin.Context) context.Context {
	return services.WithRequestID(c.Request.Context(), middleware.GetRequestID(c))
}

// DetectToJSONHandler answers with the detected objects as JSON.
func DetectToJSONHandler(manager *services.Manager, cfg *config.Config, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := readUpload(c, cfg.MaxUploadBytes())
		if err != nil {
			rejectUpload(c, logger, err)
			return
		}

		resp, err := manager.DetectToJSON(requestContext(c), data)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		respondJSON(c, http.StatusOK, resp)
	}
}

// DetectToImageHandler answers with the upload annotated with every detection.
func DetectToImageHandler(manager *services.Manager, cfg *config.Config, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := readUpload(c, cfg.MaxUploadBytes())
		if err != nil {
			rejectUpload(c, logger, err)
			return
		}

		img, err := manager.DetectToImage(requestContext(c), data)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.Data(http.StatusOK, contentTypeJPEG, img)
	}
}

// DetectToCropHandler answers with the first detected instance of class_name,
// taken from the form or the query string.
func DetectToCropHandler(manager *services.Manager, cfg *config.Config, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := readUpload(c, cfg.MaxUploadBytes())
		if err != nil {
			rejectUpload(c, logger, err)
			return
		}

		className := c.PostForm(classNameField)
		if className == "" {
			className = c.Query(classNameField)
		}
		if className == "" {
			respondDetail(c, http.StatusUnprocessableEntity, "field required: "+classNameField)
			return
		}

		img, err := manager.CropToImage(requestContext(c), data, className)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.Data(http.StatusOK, contentTypeJPEG, img)
	}
}
