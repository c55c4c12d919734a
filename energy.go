package seamcarver

import "math"

// energyScale divides the gradient magnitude before it is stored as an 8 bit value.
const energyScale = 10.0

// EnergyMap computes the dual gradient energy of every pixel.
//
// The gradient is the central difference of the left/right and up/down
// neighbours over all three channels. Neighbours wrap around the image
// edges, so the first column is compared with the last one and the first
// row with the last row. The magnitude is divided by 10 and truncated
// into the returned grayscale image, replicated over the three channels.
func EnergyMap(img *Image) *Image {
	h, w := img.Height(), img.Width()
	dst := NewImage(h, w)

	for y := 0; y < h; y++ {
		up := (y - 1 + h) % h
		down := (y + 1) % h

		for x := 0; x < w; x++ {
			left := (x - 1 + w) % w
			right := (x + 1) % w

			var dx2, dy2 int
			for ch := 0; ch < 3; ch++ {
				dx := int(img.Pixel(y, right, ch)) - int(img.Pixel(y, left, ch))
				dy := int(img.Pixel(down, x, ch)) - int(img.Pixel(up, x, ch))
				dx2 += dx * dx
				dy2 += dy * dy
			}
			e := quantize(math.Sqrt(float64(dx2 + dy2)))
			dst.SetPixel(y, x, e, e, e)
		}
	}
	return dst
}

// quantize truncates the scaled energy into the 8 bit range.
func quantize(energy float64) uint8 {
	v := math.Floor(energy / energyScale)
	if v > 255 {
		return 255
	}
	return uint8(v)
}
