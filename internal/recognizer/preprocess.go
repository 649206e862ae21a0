package recognizer

import (
	"fmt"
	"math"

	"github.com/scalevision/scaleread/internal/mempool"
	"github.com/scalevision/scaleread/internal/model"
	"github.com/scalevision/scaleread/internal/utils"
)

// padValue fills tensor columns to the right of the resized crop.
const padValue = float32(-1.0)

// PreprocessResult carries the recognition input tensor together with the
// width actually occupied by image content.
type PreprocessResult struct {
	Tensor       model.Tensor
	ResizedWidth int
}

// Release returns the tensor buffer to the pool. The tensor must not be used
// afterwards.
func (p *PreprocessResult) Release() {
	mempool.PutFloat32(p.Tensor.Data)
	p.Tensor.Data = nil
}

// Preprocess scales a crop to the recognition input height preserving aspect
// ratio, caps the width at targetWidth and normalizes pixels to [-1, 1].
// Columns beyond the resized content stay at the pad value.
func Preprocess(crop *utils.Image, targetHeight, targetWidth int) (*PreprocessResult, error) {
	if crop == nil || crop.Width <= 0 || crop.Height <= 0 {
		return nil, &utils.ImageError{Operation: "recognition preprocess", Err: utils.ErrEmptyImage}
	}
	if targetHeight <= 0 || targetWidth <= 0 {
		return nil, fmt.Errorf("invalid recognition input size %dx%d", targetWidth, targetHeight)
	}

	ratio := float64(targetHeight) / float64(crop.Height)
	newWidth := int(math.Floor(float64(crop.Width) * ratio))
	if newWidth > targetWidth {
		newWidth = targetWidth
	}
	if newWidth < 1 {
		newWidth = 1
	}

	resized := utils.ResizeBilinear(crop, newWidth, targetHeight)

	data := mempool.GetFloat32(targetHeight * targetWidth * 3)
	for i := range data {
		data[i] = padValue
	}
	for y := 0; y < targetHeight; y++ {
		srcRow := y * newWidth * 3
		dstRow := y * targetWidth * 3
		for i := 0; i < newWidth*3; i++ {
			data[dstRow+i] = float32(resized.Pix[srcRow+i])/127.5 - 1.0
		}
	}

	tensor, err := model.NewImageTensor(data, targetHeight, targetWidth)
	if err != nil {
		mempool.PutFloat32(data)
		return nil, err
	}
	return &PreprocessResult{Tensor: tensor, ResizedWidth: newWidth}, nil
}
