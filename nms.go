package retinaface

import (
	"sort"

	"github.com/visiontk/go-retinaface/result"
)

// candidate is a thresholded detection awaiting suppression.  Coordinates
// are absolute pixels of the network input resolution and anchor records
// the original anchor index for deterministic tie-breaking.
type candidate struct {
	x1, y1, x2, y2 float32
	score          float32
	anchor         int
	landmarks      []result.Point
}

// suppress implements greedy Non-Maximum Suppression.  Candidates are
// ordered by confidence descending with exact ties broken by anchor index
// ascending, so repeated runs over bit-identical inputs produce identical
// output.  Landmarks travel with their parent candidate unchanged.
func suppress(cands []candidate, iouThreshold float32) []candidate {

	if len(cands) == 0 {
		return cands
	}

	order := make([]int, len(cands))

	for i := range order {
		order[i] = i
	}

	sort.Slice(order, func(a, b int) bool {

		ca, cb := cands[order[a]], cands[order[b]]

		if ca.score != cb.score {
			return ca.score > cb.score
		}

		return ca.anchor < cb.anchor
	})

	kept := make([]candidate, 0, len(cands))

	for i := 0; i < len(order); i++ {

		if order[i] == -1 {
			continue
		}

		top := cands[order[i]]
		kept = append(kept, top)

		// suppress every remaining candidate overlapping the emitted box
		// beyond the threshold
		for j := i + 1; j < len(order); j++ {

			if order[j] == -1 {
				continue
			}

			if boxIoU(top, cands[order[j]]) > iouThreshold {
				order[j] = -1
			}
		}
	}

	return kept
}

// boxIoU works out the Intersection over Union (IoU) value of two candidate
// boxes.  The intersection is the clamped-to-zero overlap of the two
// axis-aligned rectangles.
func boxIoU(a, b candidate) float32 {

	w := minF(a.x2, b.x2) - maxF(a.x1, b.x1)
	h := minF(a.y2, b.y2) - maxF(a.y1, b.y1)

	if w <= 0 || h <= 0 {
		return 0
	}

	intersection := w * h

	areaA := (a.x2 - a.x1) * (a.y2 - a.y1)
	areaB := (b.x2 - b.x1) * (b.y2 - b.y1)

	union := areaA + areaB - intersection

	if union <= 0 {
		return 0
	}

	return intersection / union
}

func minF(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
