package handlers

import (
	"net/http"

	"detectserver/internal/dto"

	"github.com/gin-gonic/gin"
)

func HealthcheckHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		respondJSON(c, http.StatusOK, dto.HealthResponse{Healthcheck: "Everything OK!"})
	}
}
