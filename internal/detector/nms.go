package detector

import (
	"sort"

	"github.com/scalevision/scaleread/internal/utils"
)

// NonMaxSuppression performs greedy NMS: candidates are visited in
// confidence-descending order, each kept candidate suppressing every
// remaining one whose IoU with it exceeds the threshold. A candidate at
// exactly the threshold is kept. The result preserves the
// confidence-descending order.
func NonMaxSuppression(dets []Detection, iouThreshold float64) []Detection {
	if len(dets) <= 1 {
		return append([]Detection(nil), dets...)
	}

	indices := make([]int, len(dets))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return dets[indices[a]].Confidence > dets[indices[b]].Confidence
	})

	suppressed := make([]bool, len(dets))
	kept := make([]Detection, 0, len(dets))
	for _, a := range indices {
		if suppressed[a] {
			continue
		}
		kept = append(kept, dets[a])
		for _, b := range indices {
			if suppressed[b] || a == b {
				continue
			}
			if utils.IoU(dets[a].Box, dets[b].Box) > iouThreshold {
				suppressed[b] = true
			}
		}
	}
	return kept
}
