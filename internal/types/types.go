package types

import (
	"image"
	"math"
)

// Unknown is the label given to a face that matches no known reference
const Unknown = "Unknown"

// Box is a face bounding box in pixel coordinates of the frame it was found in.
// Order matches the engine convention: [top, right, bottom, left]
type Box struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// BoxFromRect converts an image.Rectangle (Min inclusive, Max exclusive) into a Box
func BoxFromRect(r image.Rectangle) Box {
	return Box{Top: r.Min.Y, Right: r.Max.X, Bottom: r.Max.Y, Left: r.Min.X}
}

// Rect is the inverse of BoxFromRect
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.Left, b.Top, b.Right, b.Bottom)
}

// Scale multiplies every coordinate by f, rounding to the nearest pixel
func (b Box) Scale(f float64) Box {
	s := func(v int) int { return int(math.Round(float64(v) * f)) }
	return Box{Top: s(b.Top), Right: s(b.Right), Bottom: s(b.Bottom), Left: s(b.Left)}
}

// Width and Height of the box; zero for degenerate boxes
func (b Box) Width() int { return max(b.Right-b.Left, 0) }
func (b Box) Height() int { return max(b.Bottom-b.Top, 0) }

// Area is used to pick the dominant face
func (b Box) Area() int { return b.Width() * b.Height() }

// Signature is a fixed-length face descriptor (128 values for the dlib engine)
type Signature []float64

// KnownFace is one reference identity loaded from disk
type KnownFace struct {
	Name      string
	Signature Signature
	Source    string // file the signature was computed from
}

// DetectedFace is a face found in a frame, already matched against the registry
type DetectedFace struct {
	Box       Box
	Signature Signature
	Name      string
	Distance  float64 // distance to the matched reference, -1 when Unknown
}
