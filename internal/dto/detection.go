package dto

import "detectserver/internal/detection"

// DetectionResponse is the body of the JSON detection endpoint.
type DetectionResponse struct {
	DetectObjectsNames string             `json:"detect_objects_names"`
	DetectObjects      []detection.Record `json:"detect_objects"`
}

type HealthResponse struct {
	Healthcheck string `json:"healthcheck"`
}

// ErrorResponse carries the message of a failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
