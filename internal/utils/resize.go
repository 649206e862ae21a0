package utils

import "math"

// ResizeBilinear resizes src to dstWidth x dstHeight using bilinear
// interpolation with half-pixel-center sampling: destination pixel d samples
// the source at (d+0.5)*(srcSize/dstSize)-0.5, with both the floor neighbor
// and floor+1 clamped into [0, srcSize-1]. Channels are interpolated
// independently and rounded to the nearest byte.
//
// The same primitive serves the detection-input resize and the
// recognition-crop resize; only the target size differs between the two call
// sites. A non-positive destination dimension yields an empty image, not an
// error.
func ResizeBilinear(src *Image, dstWidth, dstHeight int) *Image {
	if dstWidth <= 0 || dstHeight <= 0 {
		return &Image{Width: 0, Height: 0, Pix: []byte{}}
	}
	if dstWidth == src.Width && dstHeight == src.Height {
		out := &Image{Width: src.Width, Height: src.Height, Pix: make([]byte, len(src.Pix))}
		copy(out.Pix, src.Pix)
		return out
	}

	out := &Image{Width: dstWidth, Height: dstHeight, Pix: make([]byte, dstWidth*dstHeight*3)}
	scaleX := float64(src.Width) / float64(dstWidth)
	scaleY := float64(src.Height) / float64(dstHeight)

	for dy := range dstHeight {
		sy := (float64(dy)+0.5)*scaleY - 0.5
		y0 := clampInt(int(math.Floor(sy)), 0, src.Height-1)
		y1 := clampInt(y0+1, 0, src.Height-1)
		fy := sy - math.Floor(sy)
		if sy < 0 {
			fy = 0
		}
		for dx := range dstWidth {
			sx := (float64(dx)+0.5)*scaleX - 0.5
			x0 := clampInt(int(math.Floor(sx)), 0, src.Width-1)
			x1 := clampInt(x0+1, 0, src.Width-1)
			fx := sx - math.Floor(sx)
			if sx < 0 {
				fx = 0
			}

			o00 := (y0*src.Width + x0) * 3
			o01 := (y0*src.Width + x1) * 3
			o10 := (y1*src.Width + x0) * 3
			o11 := (y1*src.Width + x1) * 3
			dst := (dy*dstWidth + dx) * 3

			for c := range 3 {
				top := float64(src.Pix[o00+c])*(1-fx) + float64(src.Pix[o01+c])*fx
				bot := float64(src.Pix[o10+c])*(1-fx) + float64(src.Pix[o11+c])*fx
				v := math.Round(top*(1-fy) + bot*fy)
				if v < 0 {
					v = 0
				} else if v > 255 {
					v = 255
				}
				out.Pix[dst+c] = byte(v)
			}
		}
	}
	return out
}
