// Package recognizer adapts a face engine to the frames the rest of the program works with.
package recognizer

import (
	"context"
	"errors"
	"fmt"

	"github.com/andresmejia3/facelens/internal/frame"
	"github.com/andresmejia3/facelens/internal/types"
)

var (
	ErrNoFace        = errors.New("no face found")
	ErrCountMismatch = errors.New("engine returned a different number of signatures than boxes")
)

// Engine is the face detection and encoding backend.
// Frames handed to an Engine are always RGB.
type Engine interface {
	// Locate returns the bounding boxes of every face in the frame
	Locate(ctx context.Context, f *frame.Frame) ([]types.Box, error)
	// Encode returns one signature per box, in the same order.
	// A nil boxes slice means locate internally and encode every face.
	Encode(ctx context.Context, f *frame.Frame, boxes []types.Box) ([]types.Signature, error)
	Close() error
}

// Adapter converts frames to the engine's expectations and maps results back.
type Adapter struct {
	engine Engine
	scale  float64
}

// NewAdapter wraps an engine. Frames are downscaled by scale before detection
// and boxes are mapped back to full resolution. Use 1 to disable.
func NewAdapter(e Engine, scale float64) *Adapter {
	if scale <= 0 || scale > 1 {
		scale = 1
	}
	return &Adapter{engine: e, scale: scale}
}

// WithScale returns an adapter sharing the same engine with a different downscale factor
func (a *Adapter) WithScale(scale float64) *Adapter {
	return NewAdapter(a.engine, scale)
}

func (a *Adapter) Scale() float64 { return a.scale }

// Detect finds and encodes every face in f. Boxes are in f's coordinates.
func (a *Adapter) Detect(ctx context.Context, f *frame.Frame) ([]types.Box, []types.Signature, error) {
	if f.Empty() {
		return nil, nil, fmt.Errorf("%w: empty frame", frame.ErrDecode)
	}
	small := f.ToRGB().Resize(a.scale)

	boxes, err := a.engine.Locate(ctx, small)
	if err != nil {
		return nil, nil, fmt.Errorf("face location failed: %w", err)
	}
	if len(boxes) == 0 {
		return nil, nil, nil
	}

	sigs, err := a.engine.Encode(ctx, small, boxes)
	if err != nil {
		return nil, nil, fmt.Errorf("face encoding failed: %w", err)
	}
	if len(sigs) != len(boxes) {
		return nil, nil, fmt.Errorf("%w: %d boxes, %d signatures", ErrCountMismatch, len(boxes), len(sigs))
	}

	if a.scale != 1 {
		for i := range boxes {
			boxes[i] = boxes[i].Scale(1 / a.scale)
		}
	}
	return boxes, sigs, nil
}

// Signatures encodes every face of a full-resolution frame. Used for reference photos.
func (a *Adapter) Signatures(ctx context.Context, f *frame.Frame) ([]types.Signature, error) {
	if f.Empty() {
		return nil, fmt.Errorf("%w: empty frame", frame.ErrDecode)
	}
	return a.engine.Encode(ctx, f.ToRGB(), nil)
}

func (a *Adapter) Close() error {
	return a.engine.Close()
}
