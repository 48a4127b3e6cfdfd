package ai

import (
	"context"

	"detectserver/internal/detection"

	"gocv.io/x/gocv"
)

// concurrentSafe is implemented by detectors that allow parallel Predict calls.
type concurrentSafe interface {
	ConcurrentSafe() bool
}

// Serialized lets one Predict call at a time reach the wrapped detector.
type Serialized struct {
	detector Detector
	slot     chan struct{}
}

// Serialize wraps d unless it declares itself safe for concurrent use.
func Serialize(d Detector) Detector {
	if cs, ok := d.(concurrentSafe); ok && cs.ConcurrentSafe() {
		return d
	}
	return &Serialized{detector: d, slot: make(chan struct{}, 1)}
}

// Predict waits for the detector to be free, or for ctx to end.
func (s *Serialized) Predict(ctx context.Context, img gocv.Mat) ([]detection.RawBox, error) {
	select {
	case s.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-s.slot }()

	return s.detector.Predict(ctx, img)
}

func (s *Serialized) Labels() detection.LabelTable {
	return s.detector.Labels()
}

func (s *Serialized) Close() error {
	s.slot <- struct{}{}
	defer func() { <-s.slot }()
	return s.detector.Close()
}

// ConcurrentSafe reports true: the wrapper does the serializing.
func (s *Serialized) ConcurrentSafe() bool {
	return true
}
