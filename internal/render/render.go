// Package render annotates images with face boxes and name labels.
package render

import (
	"image"
	"image/color"

	"github.com/andresmejia3/facelens/internal/types"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Style holds the drawing parameters
type Style struct {
	Box         color.RGBA
	Text        color.RGBA
	Thickness   int // border width in pixels
	LabelHeight int // height of the filled strip at the bottom of the box
	TextInset   int // text origin offset from the strip's left and bottom edges
	Face        font.Face
}

// DefaultStyle is a red box with a 35px red name strip and white text
func DefaultStyle() Style {
	return Style{
		Box:         color.RGBA{R: 255, A: 255},
		Text:        color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Thickness:   2,
		LabelHeight: 35,
		TextInset:   6,
		Face:        labelFace(),
	}
}

// labelFace loads Go Regular at 20pt, falling back to the built-in bitmap face
func labelFace() font.Face {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: 20, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return basicfont.Face7x13
	}
	return face
}

type Renderer struct {
	style Style
}

func New(style Style) *Renderer {
	if style.Face == nil {
		style.Face = basicfont.Face7x13
	}
	return &Renderer{style: style}
}

// Draw paints every face onto img in place
func (r *Renderer) Draw(img *image.RGBA, faces []types.DetectedFace) {
	for _, f := range faces {
		r.drawFace(img, f.Box, f.Name)
	}
}

func (r *Renderer) drawFace(img *image.RGBA, b types.Box, name string) {
	s := r.style
	rect := b.Rect()
	t := s.Thickness

	// Border
	fillRect(img, image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+t), s.Box)
	fillRect(img, image.Rect(rect.Min.X, rect.Max.Y-t, rect.Max.X, rect.Max.Y), s.Box)
	fillRect(img, image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+t, rect.Max.Y), s.Box)
	fillRect(img, image.Rect(rect.Max.X-t, rect.Min.Y, rect.Max.X, rect.Max.Y), s.Box)

	// Label strip hangs directly below the bottom edge
	strip := image.Rect(rect.Min.X, rect.Max.Y, rect.Max.X, rect.Max.Y+s.LabelHeight)
	fillRect(img, strip, s.Box)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(s.Text),
		Face: s.Face,
		Dot:  fixed.P(strip.Min.X+s.TextInset, strip.Max.Y-s.TextInset),
	}
	d.DrawString(name)
}

// fillRect paints rect clipped to the image bounds
func fillRect(img *image.RGBA, rect image.Rectangle, c color.RGBA) {
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return
	}

	stride := img.Stride
	pix := img.Pix
	imgMinX, imgMinY := img.Rect.Min.X, img.Rect.Min.Y
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		rowStart := (y-imgMinY)*stride + (rect.Min.X-imgMinX)*4
		for x := 0; x < rect.Dx(); x++ {
			off := rowStart + x*4
			pix[off] = c.R
			pix[off+1] = c.G
			pix[off+2] = c.B
			pix[off+3] = c.A
		}
	}
}
