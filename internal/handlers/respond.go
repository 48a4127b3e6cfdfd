package handlers

import (
	"encoding/json"
	"net/http"

	"detectserver/internal/detection"
	"detectserver/internal/dto"
	"detectserver/internal/logger"
	"detectserver/internal/middleware"
	"detectserver/internal/services/codec"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

const (
	contentTypeJSON = "application/json"
	contentTypeJPEG = "image/jpeg"
)

// respondJSON writes body with a bare application/json content type.
func respondJSON(c *gin.Context, status int, body interface{}) {
	data, err := json.Marshal(body)
	if err != nil {
		c.Data(http.StatusInternalServerError, contentTypeJSON, []byte(`{"detail":"failed to encode response"}`))
		return
	}
	c.Data(status, contentTypeJSON, data)
}

func respondDetail(c *gin.Context, status int, detail string) {
	respondJSON(c, status, dto.ErrorResponse{Detail: detail})
}

// respondError maps a pipeline error to its status code and logs it with the
// request id.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	status, detail := classify(err)

	entry := log.WithFields(map[string]interface{}{
		"request_id": middleware.GetRequestID(c),
		"status":     status,
	})
	if status >= http.StatusInternalServerError {
		entry.Error("Detection failed: %v", err)
	} else {
		entry.Warning("Detection rejected: %v", err)
	}

	respondDetail(c, status, detail)
}

func classify(err error) (int, string) {
	var (
		decodeErr   *codec.DecodeError
		notFoundErr *detection.NotFoundError
		schemaErr   *detection.SchemaError
		tooLarge    *http.MaxBytesError
	)

	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "upload exceeds the size limit"
	case errors.As(err, &decodeErr):
		return http.StatusBadRequest, decodeErr.Error()
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound, notFoundErr.Error()
	case errors.As(err, &schemaErr):
		return http.StatusInternalServerError, schemaErr.Error()
	default:
		return http.StatusInternalServerError, "object detection failed"
	}
}
