package detector

import (
	"math"

	"github.com/scalevision/scaleread/internal/model"
	"github.com/scalevision/scaleread/internal/utils"
)

// Detection is a scored axis-aligned box. Until InverseMap runs, coordinates
// live in detector input space; afterwards in source-image pixel space.
type Detection struct {
	Box        utils.Box
	Confidence float64
}

// transposedRowLimit decides output orientation: detectors emit either one
// row per candidate or, channel-first, one row per attribute. Attribute
// counts stay tiny while candidate counts run into the thousands, so a row
// count this small can only mean attribute rows.
const transposedRowLimit = 6

// minAttributes is the per-candidate attribute floor: cx, cy, w, h and at
// least one score.
const minAttributes = 5

// DecodeCandidates interprets a raw detection output buffer under the given
// layout and returns scored corner boxes in input space, unfiltered by NMS.
//
// Candidates score above threshold to survive; equality is discarded. With
// more than five attributes the confidence is the max over the per-class
// scores at indices 4..end, class identity dropped. Coordinate units are
// resolved globally: when no surviving center/size value exceeds 2.0 the
// whole pool is treated as normalized and scaled by inputSize.
func DecodeCandidates(data []float32, layout model.OutputLayout, inputSize int, confThreshold float64) []Detection {
	rows, cols := layout.Rows, layout.Cols
	transposed := rows <= transposedRowLimit
	numAttrs, numCands := cols, rows
	if transposed {
		numAttrs, numCands = rows, cols
	}
	if numAttrs < minAttributes || numCands <= 0 || len(data) < numAttrs*numCands {
		return nil
	}

	at := func(cand, attr int) float64 {
		if transposed {
			return float64(data[attr*numCands+cand])
		}
		return float64(data[cand*numAttrs+attr])
	}

	type rawCandidate struct {
		cx, cy, w, h float64
		conf         float64
	}
	passing := make([]rawCandidate, 0, 16)
	maxCoord := 0.0
	for i := range numCands {
		conf := at(i, 4)
		if numAttrs > minAttributes {
			for a := 5; a < numAttrs; a++ {
				if s := at(i, a); s > conf {
					conf = s
				}
			}
		}
		if conf <= confThreshold {
			continue
		}
		c := rawCandidate{cx: at(i, 0), cy: at(i, 1), w: at(i, 2), h: at(i, 3), conf: conf}
		for _, v := range []float64{c.cx, c.cy, c.w, c.h} {
			if v > maxCoord {
				maxCoord = v
			}
		}
		passing = append(passing, c)
	}

	// Normalized outputs cannot exceed ~1; pixel outputs for any real
	// detection will. The 2.0 cutoff is a heuristic shared with the models
	// this pipeline was built against.
	unit := 1.0
	if maxCoord <= 2.0 {
		unit = float64(inputSize)
	}

	out := make([]Detection, 0, len(passing))
	for _, c := range passing {
		cx, cy := c.cx*unit, c.cy*unit
		w, h := c.w*unit, c.h*unit
		out = append(out, Detection{
			Box:        utils.Box{MinX: cx - w/2, MinY: cy - h/2, MaxX: cx + w/2, MaxY: cy + h/2},
			Confidence: c.conf,
		})
	}
	return out
}

// InverseMap undoes the letterbox transform, rounding coordinates into
// source-image pixel space and clamping into [0, dimension]. Detections that
// degenerate after clamping are dropped; survivor order is preserved.
func InverseMap(dets []Detection, scale float64, padW, padH int, imgWidth, imgHeight int) []Detection {
	if scale <= 0 {
		return nil
	}
	out := make([]Detection, 0, len(dets))
	for _, d := range dets {
		x1 := clampF(math.Round((d.Box.MinX-float64(padW))/scale), 0, float64(imgWidth))
		y1 := clampF(math.Round((d.Box.MinY-float64(padH))/scale), 0, float64(imgHeight))
		x2 := clampF(math.Round((d.Box.MaxX-float64(padW))/scale), 0, float64(imgWidth))
		y2 := clampF(math.Round((d.Box.MaxY-float64(padH))/scale), 0, float64(imgHeight))
		if x2 <= x1 || y2 <= y1 {
			continue
		}
		out = append(out, Detection{
			Box:        utils.Box{MinX: x1, MinY: y1, MaxX: x2, MaxY: y2},
			Confidence: d.Confidence,
		})
	}
	return out
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
