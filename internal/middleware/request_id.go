package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "request_id"
)

// maxRequestIDLength bounds client-supplied ids echoed back in headers and logs.
const maxRequestIDLength = 128

// RequestID tags every request with an id, reusing a sane client-supplied one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = newRequestID()
		}

		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the id assigned by RequestID, or "" outside it.
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

func newRequestID() string {
	id, err := uuid.NewV4()
	if err != nil {
		// entropy failure; a time-based id is still unique enough for tracing
		return uuid.Must(uuid.NewV1()).String()
	}
	return id.String()
}
