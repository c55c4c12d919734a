package seamcarver

import (
	"errors"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"

	"github.com/esimov/seamcarver/utils"
)

// ErrInvalidWidth is returned when the requested width cannot be reached by removing seams.
var ErrInvalidWidth = errors.New("invalid target width")

// defaultSeamColor is used to mark the removed seams in debug mode.
const defaultSeamColor = "#ff0000"

// SeamCarver is the interface implemented by the width reducers.
// It takes an image and returns the resized one.
type SeamCarver interface {
	Resize(*Image) (*Image, error)
}

var _ SeamCarver = (*Processor)(nil)

// Processor options
type Processor struct {
	// NewWidth is the requested width, or with Percentage set,
	// the percentage of the columns to remove.
	NewWidth   int
	Percentage bool

	// Debug replaces the output with the source image having
	// every removed seam drawn with SeamColor.
	Debug     bool
	SeamColor string

	// EnergyPath, when not empty, receives the energy map of the source image as png.
	EnergyPath string

	Logger *slog.Logger
}

// Resize implements the SeamCarver interface.
func Resize(s SeamCarver, img *Image) (*Image, error) {
	return s.Resize(img)
}

// targetWidth calculates the width of the resulting image.
func (p *Processor) targetWidth(width int) (int, error) {
	newWidth := p.NewWidth
	if p.Percentage {
		if p.NewWidth < 0 || p.NewWidth >= 100 {
			return 0, fmt.Errorf("%w: percentage should be between 0 and 99, got %d", ErrInvalidWidth, p.NewWidth)
		}
		pw := int(float64(p.NewWidth) / 100 * float64(width))
		newWidth = utils.Abs(width - pw)
	}
	if newWidth > width {
		return 0, fmt.Errorf("%w: %d is greater than the image width %d, enlargement is not supported", ErrInvalidWidth, newWidth, width)
	}
	if newWidth < 1 {
		return 0, fmt.Errorf("%w: the image width should be at least 1px, got %d", ErrInvalidWidth, newWidth)
	}
	return newWidth, nil
}

// Resize removes vertical seams one by one until the image reaches the requested width.
func (p *Processor) Resize(img *Image) (*Image, error) {
	newWidth, err := p.targetWidth(img.Width())
	if err != nil {
		return nil, err
	}
	logger := p.logger()
	logger.Debug("resizing image",
		slog.Int("width", img.Width()),
		slog.Int("height", img.Height()),
		slog.Int("newWidth", newWidth),
	)

	var tracker *seamTracker
	if p.Debug {
		tracker = newSeamTracker(img)
	}

	res := img
	for res.Width() > newWidth {
		var seams []Seam
		res, seams = CarveSeam(res)
		if tracker != nil {
			tracker.remove(seams)
		}
		logger.Debug("seam removed", slog.Int("width", res.Width()))
	}

	if tracker != nil {
		col := utils.HexToRGBA(p.seamColor())
		return tracker.draw(col.R, col.G, col.B), nil
	}
	return res, nil
}

// Process decodes the source image, resizes it and encodes the result into the writer.
func (p *Processor) Process(r io.Reader, w io.Writer) error {
	img, err := decodeImage(r)
	if err != nil {
		return err
	}

	if p.EnergyPath != "" {
		if err := p.writeEnergyMap(img); err != nil {
			return err
		}
	}

	res, err := Resize(p, img)
	if err != nil {
		return err
	}
	return encodeImage(w, res.NRGBA)
}

// writeEnergyMap saves the energy map of the image into EnergyPath.
func (p *Processor) writeEnergyMap(img *Image) (err error) {
	f, err := os.Create(p.EnergyPath)
	if err != nil {
		return fmt.Errorf("unable to create the energy map file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := png.Encode(f, EnergyMap(img).NRGBA); err != nil {
		return fmt.Errorf("unable to encode the energy map: %w", err)
	}
	return nil
}

func (p *Processor) seamColor() string {
	if p.SeamColor == "" {
		return defaultSeamColor
	}
	return p.SeamColor
}

func (p *Processor) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

// seamTracker maps the columns of the shrinking image back to the source image,
// so the removed seams can be drawn over the original.
type seamTracker struct {
	src     *Image
	columns [][]int
	removed []Seam
}

func newSeamTracker(src *Image) *seamTracker {
	columns := make([][]int, src.Height())
	for y := range columns {
		columns[y] = make([]int, src.Width())
		for x := range columns[y] {
			columns[y][x] = x
		}
	}
	return &seamTracker{src: src, columns: columns}
}

// remove records the seam in source coordinates and drops it from the column map.
func (t *seamTracker) remove(seams []Seam) {
	for _, s := range seams {
		row := t.columns[s.Y]
		t.removed = append(t.removed, Seam{X: row[s.X], Y: s.Y})
		t.columns[s.Y] = append(row[:s.X], row[s.X+1:]...)
	}
}

// draw returns a copy of the source image with the removed seams colored.
func (t *seamTracker) draw(r, g, b uint8) *Image {
	dst := t.src.Clone()
	for _, s := range t.removed {
		dst.SetPixel(s.Y, s.X, r, g, b)
	}
	return dst
}
