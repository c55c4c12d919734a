package seamcarver

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned when the destination file extension has no encoder.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Image is a three channel pixel grid addressed by row and column.
// The alpha channel of the backing NRGBA buffer is always kept opaque.
type Image struct {
	*image.NRGBA
}

// NewImage allocates a zeroed image of the given height and width.
func NewImage(height, width int) *Image {
	return &Image{NRGBA: image.NewNRGBA(image.Rect(0, 0, width, height))}
}

// Width returns the number of columns.
func (img *Image) Width() int { return img.Rect.Dx() }

// Height returns the number of rows.
func (img *Image) Height() int { return img.Rect.Dy() }

// Pixel returns the value of channel ch (0: R, 1: G, 2: B) at (row, col).
func (img *Image) Pixel(row, col, ch int) uint8 {
	return img.Pix[row*img.Stride+col*4+ch]
}

// SetPixel writes the three color channels at (row, col).
func (img *Image) SetPixel(row, col int, r, g, b uint8) {
	i := row*img.Stride + col*4
	img.Pix[i+0] = r
	img.Pix[i+1] = g
	img.Pix[i+2] = b
	img.Pix[i+3] = 0xff
}

// FromImage converts any image type to *Image with min-point at (0, 0).
// Transparency is discarded, the color channels are taken unpremultiplied.
func FromImage(img image.Image) *Image {
	srcBounds := img.Bounds()
	srcMinX := srcBounds.Min.X
	srcMinY := srcBounds.Min.Y

	dstW := srcBounds.Dx()
	dstH := srcBounds.Dy()
	dst := NewImage(dstH, dstW)

	switch src := img.(type) {
	case *image.NRGBA:
		for dstY := 0; dstY < dstH; dstY++ {
			si := src.PixOffset(srcMinX, srcMinY+dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				dst.SetPixel(dstY, dstX, src.Pix[si+0], src.Pix[si+1], src.Pix[si+2])
				si += 4
			}
		}
	case *image.YCbCr:
		for dstY := 0; dstY < dstH; dstY++ {
			for dstX := 0; dstX < dstW; dstX++ {
				srcX := srcMinX + dstX
				srcY := srcMinY + dstY
				siy := src.YOffset(srcX, srcY)
				sic := src.COffset(srcX, srcY)
				r, g, b := color.YCbCrToRGB(src.Y[siy], src.Cb[sic], src.Cr[sic])
				dst.SetPixel(dstY, dstX, r, g, b)
			}
		}
	default:
		for dstY := 0; dstY < dstH; dstY++ {
			for dstX := 0; dstX < dstW; dstX++ {
				c := color.NRGBAModel.Convert(img.At(srcMinX+dstX, srcMinY+dstY)).(color.NRGBA)
				dst.SetPixel(dstY, dstX, c.R, c.G, c.B)
			}
		}
	}

	return dst
}

// Clone returns a deep copy of the image.
func (img *Image) Clone() *Image {
	dst := NewImage(img.Height(), img.Width())
	copy(dst.Pix, img.Pix)
	return dst
}

// decodeImage decodes the source and applies the EXIF orientation, if any.
func decodeImage(r io.Reader) (*Image, error) {
	src, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("could not decode the source image: %w", err)
	}
	return FromImage(src), nil
}

// encodeImage encodes an image to a destination of type io.Writer.
// Files are encoded based on their extension, everything else as jpeg.
func encodeImage(w io.Writer, img image.Image) error {
	switch w := w.(type) {
	case *os.File:
		switch ext := filepath.Ext(w.Name()); ext {
		case "", ".jpg", ".jpeg":
			return jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
		case ".png":
			return png.Encode(w, img)
		case ".bmp":
			return bmp.Encode(w, img)
		default:
			return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
		}
	default:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
	}
}
