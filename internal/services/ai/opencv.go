package ai

import (
	"context"
	"image"
	"os"

	"detectserver/internal/detection"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ssdRowSize is the width of one SSD output row:
// image_id, label, confidence, x1, y1, x2, y2 (coordinates normalized).
const ssdRowSize = 7

// OpenCVConfig configures an SSD detector served by the OpenCV DNN module.
type OpenCVConfig struct {
	ModelPath           string
	ConfigPath          string
	ConfidenceThreshold float32
	Labels              detection.LabelTable
}

// OpenCVDetector runs an SSD network (e.g. ssd_mobilenet COCO) through gocv.
// SetInput and Forward mutate the net, so it must not run concurrently.
type OpenCVDetector struct {
	net        gocv.Net
	confidence float32
	labels     detection.LabelTable
}

// NewOpenCVDetector loads the network from the model and optional config file.
func NewOpenCVDetector(cfg OpenCVConfig) (*OpenCVDetector, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, errors.Errorf("model file not found: %s", cfg.ModelPath)
	}
	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); os.IsNotExist(err) {
			return nil, errors.Errorf("config file not found: %s", cfg.ConfigPath)
		}
	}

	net := gocv.ReadNet(cfg.ModelPath, cfg.ConfigPath)
	if net.Empty() {
		return nil, errors.Errorf("failed to load network from %s", cfg.ModelPath)
	}

	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if errBackend != nil || errTarget != nil {
		net.Close()
		return nil, errors.New("failed to set preferable backend or target")
	}

	return &OpenCVDetector{
		net:        net,
		confidence: cfg.ConfidenceThreshold,
		labels:     cfg.Labels,
	}, nil
}

// Predict runs the network on img and returns boxes scaled to img.
func (d *OpenCVDetector) Predict(ctx context.Context, img gocv.Mat) ([]detection.RawBox, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if img.Empty() {
		return nil, errors.New("cannot run detection on an empty image")
	}

	blob := gocv.BlobFromImage(img, 1.0/127.5, image.Pt(300, 300), gocv.NewScalar(127.5, 127.5, 127.5, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")

	output := d.net.Forward("")
	defer output.Close()

	values, err := output.DataPtrFloat32()
	if err != nil {
		return nil, errors.Wrap(err, "read network output")
	}

	return decodeSSD(values, img.Cols(), img.Rows(), d.confidence), nil
}

// Labels returns the label table the network indexes into.
func (d *OpenCVDetector) Labels() detection.LabelTable {
	return d.labels
}

// Close releases the network.
func (d *OpenCVDetector) Close() error {
	return d.net.Close()
}

// decodeSSD converts flat SSD rows into boxes scaled to a width x height image.
// Rows keep the network's order.
func decodeSSD(values []float32, width, height int, threshold float32) []detection.RawBox {
	rows := len(values) / ssdRowSize

	boxes := make([]detection.RawBox, 0, rows)
	for i := 0; i < rows; i++ {
		row := values[i*ssdRowSize : (i+1)*ssdRowSize]

		confidence := row[2]
		if confidence < threshold {
			continue
		}

		boxes = append(boxes, clampBox(
			row[3]*float32(width),
			row[4]*float32(height),
			row[5]*float32(width),
			row[6]*float32(height),
			min(confidence, 1),
			int(row[1]),
			width, height,
		))
	}
	return boxes
}
