package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSSD(t *testing.T) {
	values := []float32{
		0, 18, 0.9, 0.1, 0.2, 0.5, 0.6,
		0, 1, 0.3, 0.0, 0.0, 1.0, 1.0,
		0, 3, 0.75, -0.1, 0.5, 1.2, 1.0,
	}

	boxes := decodeSSD(values, 200, 100, 0.5)
	require.Len(t, boxes, 2)

	assert.InDeltaSlice(t, []float32{20, 20, 100, 60, 0.9, 18}, []float32(boxes[0]), 1e-4)
	// clamped to the image
	assert.InDeltaSlice(t, []float32{0, 50, 200, 100, 0.75, 3}, []float32(boxes[1]), 1e-4)
}

func TestDecodeSSD_IgnoresPartialRow(t *testing.T) {
	values := []float32{0, 1, 0.9, 0, 0, 1, 1, 0, 2}
	assert.Len(t, decodeSSD(values, 10, 10, 0.5), 1)
}

func TestNewOpenCVDetector_MissingModel(t *testing.T) {
	_, err := NewOpenCVDetector(OpenCVConfig{ModelPath: "does-not-exist.pb"})
	assert.Error(t, err)
}
