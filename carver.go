package seamcarver

import (
	"fmt"
	"math"
)

// Carver holds the cumulative energy table of an image.
type Carver struct {
	Points []float64
	Seams  []Seam
	Width  int
	Height int
}

// Seam is a single pixel of a vertical seam: the column X to remove in row Y.
type Seam struct {
	X int
	Y int
}

// NewCarver returns an initialized Carver structure.
func NewCarver(width, height int) *Carver {
	return &Carver{
		Points: make([]float64, width*height),
		Width:  width,
		Height: height,
	}
}

// get returns the cumulative energy value at (x, y).
func (c *Carver) get(x, y int) float64 {
	px := x + y*c.Width
	return c.Points[px]
}

// set updates the cumulative energy value at (x, y).
func (c *Carver) set(x, y int, px float64) {
	idx := x + y*c.Width
	c.Points[idx] = px
}

// ComputeSeams fills the cost table from the energy map based on the following logic:
//   - the first row is the energy of the first row as it is;
//   - traversing the image from the second row to the last one, every entry (x, y)
//     gets its own energy plus the smallest cumulative energy among the
//     (at most three) connected pixels of the previous row.
//
// Unlike the energy map, the neighbours do not wrap around the image edges.
func (c *Carver) ComputeSeams(energy *Image) []float64 {
	for x := 0; x < c.Width; x++ {
		c.set(x, 0, float64(energy.Pixel(0, x, 0)))
	}

	for y := 1; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			min := math.Inf(1)
			for i := x - 1; i <= x+1; i++ {
				if i >= 0 && i < c.Width && c.get(i, y-1) < min {
					min = c.get(i, y-1)
				}
			}
			c.set(x, y, float64(energy.Pixel(y, x, 0))+min)
		}
	}
	return c.Points
}

// FindLowestEnergySeams backtracks the cost table from the cheapest pixel of
// the last row, walking up and choosing each time the cheapest of the
// three connected pixels above. On equal costs the leftmost one wins.
// The returned seam is ordered from the top row to the bottom row.
func (c *Carver) FindLowestEnergySeams() []Seam {
	seams := make([]Seam, c.Height)
	if c.Height == 0 {
		return seams
	}

	px := -1
	min := math.Inf(1)
	for x := 0; x < c.Width; x++ {
		if v := c.get(x, c.Height-1); v < min {
			min = v
			px = x
		}
	}
	seams[c.Height-1] = Seam{X: px, Y: c.Height - 1}

	for y := c.Height - 2; y >= 0; y-- {
		x := seams[y+1].X
		min = math.Inf(1)
		for i := x - 1; i <= x+1; i++ {
			if i >= 0 && i < c.Width && c.get(i, y) < min {
				min = c.get(i, y)
				px = i
			}
		}
		seams[y] = Seam{X: px, Y: y}
	}
	c.checkSeam(seams)
	c.Seams = seams

	return seams
}

// checkSeam panics if the seam is not a valid connected vertical path.
func (c *Carver) checkSeam(seams []Seam) {
	for y, s := range seams {
		if s.X < 0 || s.X >= c.Width {
			panic(fmt.Sprintf("seamcarver: seam column %d out of range [0, %d) at row %d", s.X, c.Width, y))
		}
		if y > 0 && (s.X-seams[y-1].X > 1 || seams[y-1].X-s.X > 1) {
			panic(fmt.Sprintf("seamcarver: seam is disconnected between rows %d and %d", y-1, y))
		}
	}
}

// RemoveSeam returns a new image, one pixel narrower, without the seam pixels.
// The pixels to the right of the seam are shifted to the left.
func (c *Carver) RemoveSeam(img *Image, seams []Seam) *Image {
	width, height := img.Width(), img.Height()
	if len(seams) != height {
		panic(fmt.Sprintf("seamcarver: seam length %d does not match image height %d", len(seams), height))
	}
	dst := NewImage(height, width-1)

	for y := 0; y < height; y++ {
		removeX := seams[y].X
		for x := 0; x < width-1; x++ {
			srcX := x
			if x >= removeX {
				srcX = x + 1
			}
			dst.SetPixel(y, x,
				img.Pixel(y, srcX, 0),
				img.Pixel(y, srcX, 1),
				img.Pixel(y, srcX, 2),
			)
		}
	}
	return dst
}

// CarveSeam runs the whole pipeline once and removes the lowest energy
// vertical seam from the image. It also returns the removed seam.
func CarveSeam(img *Image) (*Image, []Seam) {
	c := NewCarver(img.Width(), img.Height())
	c.ComputeSeams(EnergyMap(img))
	seams := c.FindLowestEnergySeams()

	return c.RemoveSeam(img, seams), seams
}

// Shrink removes n vertical seams one after the other.
// It panics if n is negative or not smaller than the image width.
func Shrink(img *Image, n int) *Image {
	if n < 0 || (n > 0 && n >= img.Width()) {
		panic(fmt.Sprintf("seamcarver: cannot remove %d seams from an image of width %d", n, img.Width()))
	}
	for i := 0; i < n; i++ {
		img, _ = CarveSeam(img)
	}
	return img
}
