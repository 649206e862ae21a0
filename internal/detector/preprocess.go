package detector

import (
	"errors"
	"math"

	"github.com/scalevision/scaleread/internal/mempool"
	"github.com/scalevision/scaleread/internal/model"
	"github.com/scalevision/scaleread/internal/utils"
)

// letterboxFill is the pad value for the letterbox margin, the mid-gray used
// when training common single-stage detectors.
const letterboxFill = float32(114.0 / 255.0)

// PreprocessResult carries the detection input tensor plus the scale factor
// and pad offsets needed to map detector-space coordinates back onto the
// source image. Its lifetime is scoped to one detection call; the tensor
// buffer comes from the shared pool and must be released via Release.
type PreprocessResult struct {
	Tensor model.Tensor
	Scale  float64
	PadW   int
	PadH   int
}

// Release returns the tensor buffer to the pool.
func (p *PreprocessResult) Release() {
	mempool.PutFloat32(p.Tensor.Data)
	p.Tensor = model.Tensor{}
}

// Preprocess resizes img preserving aspect ratio into an inputSize x
// inputSize letterboxed canvas and normalizes pixels to [0,1]. The output is
// a flat row-major HWC tensor. The pad offsets floor the split, so an odd
// remainder pixel lands on the bottom/right margin.
func Preprocess(img *utils.Image, inputSize int) (PreprocessResult, error) {
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return PreprocessResult{}, errors.New("input image is empty")
	}
	if inputSize <= 0 {
		return PreprocessResult{}, errors.New("input size must be positive")
	}

	scale := math.Min(
		float64(inputSize)/float64(img.Width),
		float64(inputSize)/float64(img.Height),
	)
	newW := int(math.Floor(float64(img.Width) * scale))
	newH := int(math.Floor(float64(img.Height) * scale))
	resized := utils.ResizeBilinear(img, newW, newH)

	padW := (inputSize - newW) / 2
	padH := (inputSize - newH) / 2

	data := mempool.GetFloat32(inputSize * inputSize * 3)
	for i := range data {
		data[i] = letterboxFill
	}
	for y := range resized.Height {
		srcRow := resized.Pix[y*resized.Width*3 : (y+1)*resized.Width*3]
		dstOff := ((y+padH)*inputSize + padW) * 3
		for i, v := range srcRow {
			data[dstOff+i] = float32(v) / 255.0
		}
	}

	tensor, err := model.NewImageTensor(data, inputSize, inputSize)
	if err != nil {
		mempool.PutFloat32(data)
		return PreprocessResult{}, err
	}
	return PreprocessResult{Tensor: tensor, Scale: scale, PadW: padW, PadH: padH}, nil
}
