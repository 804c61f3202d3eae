// Package detect turns one frame into a list of labelled faces.
package detect

import (
	"context"

	"github.com/andresmejia3/facelens/internal/frame"
	"github.com/andresmejia3/facelens/internal/matcher"
	"github.com/andresmejia3/facelens/internal/registry"
	"github.com/andresmejia3/facelens/internal/types"
)

// Detector finds faces and encodes them, with boxes in the input frame's coordinates
type Detector interface {
	Detect(ctx context.Context, f *frame.Frame) ([]types.Box, []types.Signature, error)
}

type Pipeline struct {
	Detector  Detector
	Known     *registry.Registry
	Tolerance float64
}

func New(d Detector, known *registry.Registry, tolerance float64) *Pipeline {
	return &Pipeline{Detector: d, Known: known, Tolerance: tolerance}
}

// Run detects, encodes and labels every face in f
func (p *Pipeline) Run(ctx context.Context, f *frame.Frame) ([]types.DetectedFace, error) {
	boxes, sigs, err := p.Detector.Detect(ctx, f)
	if err != nil {
		return nil, err
	}

	var known []types.KnownFace
	if p.Known != nil {
		known = p.Known.Faces()
	}

	faces := make([]types.DetectedFace, len(boxes))
	for i := range boxes {
		res := matcher.Match(sigs[i], known, p.Tolerance)
		faces[i] = types.DetectedFace{
			Box:       boxes[i],
			Signature: sigs[i],
			Name:      res.Name,
			Distance:  res.Distance,
		}
	}
	return faces, nil
}
