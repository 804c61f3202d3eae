package frame

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrDecode            = errors.New("could not decode image")
)

// ChannelOrder describes the byte layout of each pixel
type ChannelOrder int

const (
	RGB ChannelOrder = iota
	BGR              // camera devices deliver this order
)

func (o ChannelOrder) String() string {
	if o == BGR {
		return "BGR"
	}
	return "RGB"
}

// Frame is a packed 3-byte-per-pixel grid. Pix has Width*Height*3 bytes, row-major.
type Frame struct {
	Pix    []byte
	Width  int
	Height int
	Order  ChannelOrder
}

// New allocates a black frame
func New(w, h int, order ChannelOrder) *Frame {
	return &Frame{Pix: make([]byte, w*h*3), Width: w, Height: h, Order: order}
}

// Bounds returns the frame rectangle anchored at the origin
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// Empty reports whether the frame carries no pixels
func (f *Frame) Empty() bool {
	return f == nil || f.Width <= 0 || f.Height <= 0 || len(f.Pix) < f.Width*f.Height*3
}

// ToRGB returns the frame in RGB order. An RGB frame is returned as-is.
func (f *Frame) ToRGB() *Frame {
	if f.Order == RGB {
		return f
	}
	out := &Frame{Pix: make([]byte, len(f.Pix)), Width: f.Width, Height: f.Height, Order: RGB}
	for i := 0; i+2 < len(f.Pix); i += 3 {
		out.Pix[i] = f.Pix[i+2]
		out.Pix[i+1] = f.Pix[i+1]
		out.Pix[i+2] = f.Pix[i]
	}
	return out
}

// Resize scales both dimensions by factor. The channel order is preserved.
// A factor of 1 returns the frame unchanged.
func (f *Frame) Resize(factor float64) *Frame {
	if factor == 1 {
		return f
	}
	w := max(int(float64(f.Width)*factor), 1)
	h := max(int(float64(f.Height)*factor), 1)
	// Channels are copied positionally so BGR frames stay BGR.
	scaled := resize.Resize(uint(w), uint(h), f.raw(), resize.Bilinear)
	out := fromImage(scaled)
	out.Order = f.Order
	return out
}

// ToRGBA converts the frame into an image the renderer and encoders can use
func (f *Frame) ToRGBA() *image.RGBA {
	src := f.ToRGB()
	return src.raw()
}

// raw copies the bytes into an RGBA image without interpreting channel order
func (f *Frame) raw() *image.RGBA {
	img := image.NewRGBA(f.Bounds())
	for i, j := 0, 0; i+2 < len(f.Pix) && j+3 < len(img.Pix); i, j = i+3, j+4 {
		img.Pix[j] = f.Pix[i]
		img.Pix[j+1] = f.Pix[i+1]
		img.Pix[j+2] = f.Pix[i+2]
		img.Pix[j+3] = 0xFF
	}
	return img
}

// FromImage builds an RGB frame from any decoded image
func FromImage(img image.Image) *Frame {
	return fromImage(img)
}

func fromImage(img image.Image) *Frame {
	b := img.Bounds()
	out := New(b.Dx(), b.Dy(), RGB)

	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			row := rgba.Pix[rgba.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < b.Dx(); x++ {
				o := (y*out.Width + x) * 3
				copy(out.Pix[o:o+3], row[x*4:x*4+3])
			}
		}
		return out
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			o := ((y-b.Min.Y)*out.Width + (x - b.Min.X)) * 3
			out.Pix[o] = uint8(r >> 8)
			out.Pix[o+1] = uint8(g >> 8)
			out.Pix[o+2] = uint8(bl >> 8)
		}
	}
	return out
}

// IsSupported reports whether the file extension is one we decode and encode
func IsSupported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// ReadFile decodes a JPEG or PNG file into an RGB frame
func ReadFile(path string) (*Frame, error) {
	if !IsSupported(path) {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(bytes.NewReader(data))
}

// Decode reads a JPEG or PNG stream into an RGB frame
func Decode(r io.Reader) (*Frame, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return FromImage(img), nil
}

// EncodeJPEG writes the frame as a JPEG
func (f *Frame) EncodeJPEG(w io.Writer, quality int) error {
	return jpeg.Encode(w, f.ToRGBA(), &jpeg.Options{Quality: quality})
}

// WriteImage encodes img to path, picking the codec from the extension
func WriteImage(path string, img image.Image) error {
	var enc func(io.Writer, image.Image) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		enc = func(w io.Writer, m image.Image) error {
			return jpeg.Encode(w, m, &jpeg.Options{Quality: 95})
		}
	case ".png":
		enc = png.Encode
	default:
		return fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := enc(out, img); err != nil {
		out.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return out.Close()
}
