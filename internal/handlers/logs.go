package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"detectserver/internal/config"

	"github.com/gin-gonic/gin"
)

var logFiles = map[string]string{
	"info":    "info.log",
	"warning": "warning.log",
	"error":   "error.log",
}

// ShowLogsHandler serves one of the per-level log files named by :level.
func ShowLogsHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		filename, ok := logFiles[c.Param("level")]
		if !ok {
			respondDetail(c, http.StatusNotFound, "unknown log level: "+c.Param("level"))
			return
		}

		filePath := filepath.Join(cfg.LogDirectory, filename)
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			respondDetail(c, http.StatusNotFound, "log file not found: "+filename)
			return
		}

		c.Header("Content-Type", "text/plain; charset=utf-8")
		c.Header("Cache-Control", "no-cache")
		c.File(filePath)
	}
}
