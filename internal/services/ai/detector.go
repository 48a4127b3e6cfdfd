package ai

import (
	"context"

	"detectserver/internal/config"
	"detectserver/internal/detection"
	"detectserver/internal/logger"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Detector runs a model on one image and reports raw boxes in pixel space of
// that image, in the model's emission order.
type Detector interface {
	Predict(ctx context.Context, img gocv.Mat) ([]detection.RawBox, error)
	Labels() detection.LabelTable
	Close() error
}

// NewDetector loads the backend selected by cfg. The returned detector is
// safe for concurrent use.
func NewDetector(cfg *config.Config, logger *logger.Logger) (Detector, error) {
	var (
		d   Detector
		err error
	)

	switch cfg.DetectorBackend {
	case config.BackendONNX:
		labels := COCOLabels()
		if cfg.LabelsPath != "" {
			if labels, err = LoadLabels(cfg.LabelsPath); err != nil {
				return nil, err
			}
		}
		d, err = NewONNXDetector(ONNXConfig{
			ModelPath:           cfg.ModelPath,
			LibraryPath:         cfg.OnnxRuntimeLib,
			InputSize:           cfg.InputSize,
			ConfidenceThreshold: cfg.ConfidenceThreshold,
			NMSThreshold:        cfg.NMSThreshold,
			Labels:              labels,
		})

	case config.BackendOpenCV:
		labels := COCOPaperLabels()
		if cfg.LabelsPath != "" {
			if labels, err = LoadLabels(cfg.LabelsPath); err != nil {
				return nil, err
			}
		}
		d, err = NewOpenCVDetector(OpenCVConfig{
			ModelPath:           cfg.ModelPath,
			ConfigPath:          cfg.ConfigPath,
			ConfidenceThreshold: cfg.ConfidenceThreshold,
			Labels:              labels,
		})

	default:
		return nil, errors.Errorf("unknown detector backend %q", cfg.DetectorBackend)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Detection backend %s ready: %s (%d labels)", cfg.DetectorBackend, cfg.ModelPath, len(d.Labels()))
	return Serialize(d), nil
}

// clampBox converts corner coordinates to a RawBox clipped to a width x height image.
func clampBox(x1, y1, x2, y2, score float32, classID int, width, height int) detection.RawBox {
	w, h := float32(width), float32(height)
	x1 = min(max(x1, 0), w)
	y1 = min(max(y1, 0), h)
	x2 = min(max(x2, x1), w)
	y2 = min(max(y2, y1), h)
	return detection.RawBox{x1, y1, x2, y2, score, float32(classID)}
}
