package recognizer

import (
	"math"
	"strings"

	"github.com/scalevision/scaleread/internal/model"
)

// probSumTolerance bounds how far a row may deviate from summing to one and
// still count as a probability distribution.
const probSumTolerance = 0.05

// DecodedText is the outcome of greedy CTC decoding for one text region.
type DecodedText struct {
	Text       string
	Confidence float64
}

// DecodeGreedy collapses a sequence of per-timestep class scores into text.
// Rows are timesteps, columns are classes with class 0 as the blank. Scores
// are treated as probabilities only when every row already sums to one;
// otherwise each winning score is softmax-normalized within its row.
func DecodeGreedy(data []float32, layout model.OutputLayout, charset *Charset) DecodedText {
	seqLen := layout.Rows
	numClasses := layout.Cols
	if seqLen <= 0 || numClasses <= 0 || len(data) < seqLen*numClasses || charset == nil {
		return DecodedText{}
	}

	isProb := true
	for t := 0; t < seqLen; t++ {
		row := data[t*numClasses : (t+1)*numClasses]
		var sum float64
		for _, v := range row {
			sum += float64(v)
		}
		if math.Abs(sum-1.0) > probSumTolerance {
			isProb = false
			break
		}
	}

	classes := make([]int, seqLen)
	confs := make([]float64, seqLen)
	for t := 0; t < seqLen; t++ {
		row := data[t*numClasses : (t+1)*numClasses]
		best := 0
		for c := 1; c < numClasses; c++ {
			if row[c] > row[best] {
				best = c
			}
		}
		classes[t] = best
		if isProb {
			confs[t] = float64(row[best])
			continue
		}
		// The winner's softmax mass: exp(max-max)=1 over the row denominator.
		var denom float64
		maxV := float64(row[best])
		for _, v := range row {
			denom += math.Exp(float64(v) - maxV)
		}
		if denom > 0 {
			confs[t] = 1.0 / denom
		}
	}

	var text strings.Builder
	var confSum float64
	var kept int
	prev := -1
	for t := 0; t < seqLen; t++ {
		cls := classes[t]
		if cls == prev {
			continue
		}
		prev = cls
		if cls == 0 {
			continue
		}
		ch, ok := charset.Char(cls)
		if !ok {
			continue
		}
		text.WriteString(ch)
		confSum += confs[t]
		kept++
	}

	out := DecodedText{Text: text.String()}
	if kept > 0 {
		out.Confidence = confSum / float64(kept)
	}
	return out
}
