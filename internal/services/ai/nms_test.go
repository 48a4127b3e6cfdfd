package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuppress(t *testing.T) {
	candidates := []candidate{
		{X1: 1, Y1: 1, X2: 11, Y2: 11, Score: 0.6, ClassID: 0},
		{X1: 0, Y1: 0, X2: 10, Y2: 10, Score: 0.9, ClassID: 0},
		{X1: 0, Y1: 0, X2: 10, Y2: 10, Score: 0.8, ClassID: 1},
		{X1: 50, Y1: 50, X2: 60, Y2: 60, Score: 0.7, ClassID: 0},
	}

	kept := suppress(candidates, 0.5)
	require.Len(t, kept, 3)

	assert.Equal(t, float32(0.9), kept[0].Score)
	assert.Equal(t, 1, kept[1].ClassID, "other classes are not suppressed")
	assert.Equal(t, float32(50), kept[2].X1)

	// input is left untouched
	assert.Equal(t, float32(0.6), candidates[0].Score)
}

func TestSuppress_KeepsLowOverlap(t *testing.T) {
	// 5x10 overlap over a 150 px union, IoU 1/3
	candidates := []candidate{
		{X1: 0, Y1: 0, X2: 10, Y2: 10, Score: 0.9},
		{X1: 5, Y1: 0, X2: 15, Y2: 10, Score: 0.8},
	}

	assert.Len(t, suppress(candidates, 0.5), 2)
	assert.Len(t, suppress(candidates, 0.3), 1)
}

func TestSuppress_Empty(t *testing.T) {
	assert.Empty(t, suppress(nil, 0.5))
}

func TestDecodeYOLO_ThenSuppress(t *testing.T) {
	// anchors 0 and 1 are the same dog seen twice, anchor 2 is a cat on top of it
	boxes := map[int][4]float32{0: {32, 32, 20, 20}, 1: {33, 33, 20, 20}, 2: {32, 32, 20, 20}}
	scores := map[int][2]float32{0: {0.9, 0}, 1: {0.7, 0}, 2: {0, 0.6}}

	out := yoloOutput(2, 3, func(row, idx int) float32 {
		if row < 4 {
			return boxes[idx][row]
		}
		return scores[idx][row-4]
	})

	candidates := decodeYOLO(out, yoloLayout{
		numClasses: 2,
		anchors:    3,
		inputSize:  64,
		width:      64,
		height:     64,
		threshold:  0.5,
	})
	require.Len(t, candidates, 3)

	kept := suppress(candidates, 0.5)
	require.Len(t, kept, 2)
	assert.Equal(t, 0, kept[0].ClassID)
	assert.InDelta(t, 0.9, kept[0].Score, 1e-6)
	assert.Equal(t, 1, kept[1].ClassID)
}
