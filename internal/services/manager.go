package services

import (
	"context"
	"image"
	"time"

	"detectserver/internal/config"
	"detectserver/internal/detection"
	"detectserver/internal/dto"
	"detectserver/internal/logger"
	"detectserver/internal/services/ai"
	"detectserver/internal/services/codec"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Endpoint names reported in detection events.
const (
	EndpointJSON  = "img_object_detection_to_json"
	EndpointImage = "img_object_detection_to_img"
	EndpointCrop  = "img_object_detection_to_crop"
)

// EventPublisher receives a summary of every successful detection.
type EventPublisher interface {
	Publish(event dto.DetectionEvent)
}

type requestIDKey struct{}

// WithRequestID attaches the request id reported in detection events.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Manager runs uploads through decode, detection, normalization and rendering.
type Manager struct {
	detector    ai.Detector
	feed        EventPublisher
	annotate    detection.AnnotateOptions
	jpegQuality int
	logger      *logger.Logger
}

// NewManager builds a Manager around a loaded detector. feed may be nil.
func NewManager(detector ai.Detector, feed EventPublisher, config *config.Config, logger *logger.Logger) *Manager {
	return &Manager{
		detector:    detector,
		feed:        feed,
		annotate:    detection.AnnotateOptions{ShowConfidence: config.ShowConfidence},
		jpegQuality: config.JPEGQuality,
		logger:      logger,
	}
}

// DetectToJSON returns the sorted names summary and the records in detector order.
func (m *Manager) DetectToJSON(ctx context.Context, data []byte) (dto.DetectionResponse, error) {
	img, set, err := m.detect(ctx, data)
	if err != nil {
		return dto.DetectionResponse{}, err
	}
	img.Close()

	m.publish(ctx, EndpointJSON, set)
	return dto.DetectionResponse{
		DetectObjectsNames: set.Names(),
		DetectObjects:      set.Records(),
	}, nil
}

// DetectToImage returns the upload as JPEG with every detection drawn on it.
func (m *Manager) DetectToImage(ctx context.Context, data []byte) ([]byte, error) {
	img, set, err := m.detect(ctx, data)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	annotated, err := detection.Annotate(img, set, m.annotate)
	if err != nil {
		return nil, errors.Wrap(err, "annotate image")
	}
	defer annotated.Close()

	encoded, err := codec.EncodeJPEG(annotated, m.jpegQuality)
	if err != nil {
		return nil, errors.Wrap(err, "encode annotated image")
	}

	m.publish(ctx, EndpointImage, set)
	return encoded, nil
}

// CropToImage returns the first detection named className as JPEG.
func (m *Manager) CropToImage(ctx context.Context, data []byte, className string) ([]byte, error) {
	img, set, err := m.detect(ctx, data)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	crop, err := detection.CropByClass(img, set, className)
	defer crop.Close()
	if err != nil {
		return nil, err
	}
	if crop.Empty() {
		return nil, errors.Errorf("detected %s has an empty box", className)
	}

	encoded, err := codec.EncodeJPEG(crop, m.jpegQuality)
	if err != nil {
		return nil, errors.Wrap(err, "encode crop")
	}

	m.publish(ctx, EndpointCrop, set)
	return encoded, nil
}

// detect decodes data and runs the detector on it. The caller owns the
// returned Mat only when err is nil.
func (m *Manager) detect(ctx context.Context, data []byte) (gocv.Mat, detection.Set, error) {
	img, err := codec.Decode(data)
	if err != nil {
		img.Close()
		return gocv.Mat{}, detection.Set{}, err
	}

	start := time.Now()
	raw, err := m.detector.Predict(ctx, img)
	if err != nil {
		img.Close()
		return gocv.Mat{}, detection.Set{}, errors.Wrap(err, "run detector")
	}

	set, err := detection.NormalizeWithin(raw, m.detector.Labels(), image.Rect(0, 0, img.Cols(), img.Rows()))
	if err != nil {
		img.Close()
		return gocv.Mat{}, detection.Set{}, errors.Wrap(err, "normalize detections")
	}

	m.logger.Debug("Detected %d object(s) in %dx%d image in %v", set.Len(), img.Cols(), img.Rows(), time.Since(start))
	return img, set, nil
}

func (m *Manager) publish(ctx context.Context, endpoint string, set detection.Set) {
	if m.feed == nil {
		return
	}
	m.feed.Publish(dto.DetectionEvent{
		RequestID: requestID(ctx),
		Endpoint:  endpoint,
		Names:     set.Names(),
		Count:     set.Len(),
		Timestamp: time.Now(),
	})
}
