package dto

import (
	"encoding/json"
	"time"
)

// DetectionEvent summarizes one successful detection run for feed viewers.
type DetectionEvent struct {
	RequestID string    `json:"request_id"`
	Endpoint  string    `json:"endpoint"`
	Names     string    `json:"names"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

// MarshalJSON writes the timestamp as RFC 3339 in UTC with milliseconds.
func (e DetectionEvent) MarshalJSON() ([]byte, error) {
	type Alias DetectionEvent
	return json.Marshal(&struct {
		Timestamp string `json:"timestamp"`
		Alias
	}{
		Timestamp: e.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Alias:     (Alias)(e),
	})
}
