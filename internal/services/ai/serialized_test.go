package ai

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"detectserver/internal/detection"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

type slowDetector struct {
	active  atomic.Int32
	maxSeen atomic.Int32
	closed  atomic.Bool
}

func (d *slowDetector) Predict(ctx context.Context, img gocv.Mat) ([]detection.RawBox, error) {
	n := d.active.Add(1)
	defer d.active.Add(-1)
	for {
		cur := d.maxSeen.Load()
		if n <= cur || d.maxSeen.CompareAndSwap(cur, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	return []detection.RawBox{{0, 0, 1, 1, 0.5, 0}}, nil
}

func (d *slowDetector) Labels() detection.LabelTable { return detection.LabelTable{0: "person"} }

func (d *slowDetector) Close() error {
	d.closed.Store(true)
	return nil
}

type parallelDetector struct{ slowDetector }

func (d *parallelDetector) ConcurrentSafe() bool { return true }

func TestSerialize_OneCallAtATime(t *testing.T) {
	inner := &slowDetector{}
	d := Serialize(inner)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			boxes, err := d.Predict(context.Background(), gocv.NewMat())
			assert.NoError(t, err)
			assert.Len(t, boxes, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), inner.maxSeen.Load())
	assert.Equal(t, "person", d.Labels()[0])

	require.NoError(t, d.Close())
	assert.True(t, inner.closed.Load())
}

func TestSerialize_HonorsContext(t *testing.T) {
	s := Serialize(&slowDetector{}).(*Serialized)
	s.slot <- struct{}{} // hold the detector

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.Predict(ctx, gocv.NewMat())
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	<-s.slot
}

func TestSerialize_SkipsConcurrentSafe(t *testing.T) {
	inner := &parallelDetector{}
	assert.Same(t, inner, Serialize(inner))

	wrapped := Serialize(&slowDetector{})
	assert.Same(t, wrapped, Serialize(wrapped))
}
