package ai

import (
	"image"
	"sort"

	"gocv.io/x/gocv"
)

// candidate is a scored box before suppression.
type candidate struct {
	X1, Y1, X2, Y2 float32
	Score          float32
	ClassID        int
}

func (c candidate) rect() image.Rectangle {
	return image.Rect(int(c.X1), int(c.Y1), int(c.X2), int(c.Y2))
}

// suppress runs OpenCV non-max suppression separately for every class, so
// boxes of different classes never suppress each other. Survivors are ordered
// by descending score; equal scores keep their decode order.
func suppress(candidates []candidate, threshold float32) []candidate {
	if len(candidates) == 0 {
		return nil
	}

	byClass := make(map[int][]int)
	var classes []int
	for i, c := range candidates {
		if _, ok := byClass[c.ClassID]; !ok {
			classes = append(classes, c.ClassID)
		}
		byClass[c.ClassID] = append(byClass[c.ClassID], i)
	}

	var keptIdx []int
	for _, classID := range classes {
		members := byClass[classID]

		boxes := make([]image.Rectangle, len(members))
		scores := make([]float32, len(members))
		for j, idx := range members {
			boxes[j] = candidates[idx].rect()
			scores[j] = candidates[idx].Score
		}

		for _, j := range gocv.NMSBoxes(boxes, scores, 0, threshold) {
			keptIdx = append(keptIdx, members[j])
		}
	}

	sort.SliceStable(keptIdx, func(a, b int) bool {
		ca, cb := candidates[keptIdx[a]], candidates[keptIdx[b]]
		if ca.Score != cb.Score {
			return ca.Score > cb.Score
		}
		return keptIdx[a] < keptIdx[b]
	})

	kept := make([]candidate, len(keptIdx))
	for i, idx := range keptIdx {
		kept[i] = candidates[idx]
	}
	return kept
}
