package handlers

import (
	"net/http"
	"time"

	"detectserver/internal/logger"
	"detectserver/internal/middleware"
	feed "detectserver/internal/services/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	viewerReadTimeout = 60 * time.Second
	pingInterval      = 30 * time.Second
)

var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// DetectionFeedHandler upgrades the request and streams detection events to
// the viewer until it disconnects.
func DetectionFeedHandler(hub *feed.HubService, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		connection, err := Upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warning("WebSocket upgrade error (request %s): %v", middleware.GetRequestID(c), err)
			return
		}
		connection.SetReadLimit(512)
		connection.SetReadDeadline(time.Now().Add(viewerReadTimeout))
		connection.SetPongHandler(func(appData string) error {
			connection.SetReadDeadline(time.Now().Add(viewerReadTimeout))
			return nil
		})

		if !hub.Register(connection) {
			connection.Close()
			return
		}
		defer hub.Unregister(connection)

		stop := make(chan struct{})
		defer close(stop)
		go keepAlive(connection, stop)

		// viewers only listen; reading keeps control frames flowing
		for {
			if _, _, err := connection.ReadMessage(); err != nil {
				return
			}
			connection.SetReadDeadline(time.Now().Add(viewerReadTimeout))
		}
	}
}

// keepAlive pings the viewer so its pongs extend the read deadline.
func keepAlive(connection *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := connection.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}
