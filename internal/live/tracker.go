package live

import (
	"context"

	"github.com/andresmejia3/facelens/internal/frame"
	"github.com/andresmejia3/facelens/internal/types"
)

// Phase is the per-frame state of the detection cycle
type Phase int

const (
	PhaseDetect Phase = iota // run the detector on this frame
	PhaseReuse               // redraw the previous result
)

func (p Phase) Next() Phase {
	if p == PhaseDetect {
		return PhaseReuse
	}
	return PhaseDetect
}

func (p Phase) String() string {
	if p == PhaseDetect {
		return "detect"
	}
	return "reuse"
}

// Tracker alternates between detecting and reusing the last result.
// Names shown on a reuse frame may be one frame stale.
type Tracker struct {
	phase Phase
	last  []types.DetectedFace
}

func (t *Tracker) Phase() Phase { return t.phase }

// Last returns the most recent detection result
func (t *Tracker) Last() []types.DetectedFace { return t.last }

// Step returns the faces to draw on f and advances the phase.
// A failed detection keeps the previous result.
func (t *Tracker) Step(ctx context.Context, f *frame.Frame, l Labeler) ([]types.DetectedFace, error) {
	current := t.phase
	t.phase = current.Next()

	if current == PhaseReuse {
		return t.last, nil
	}

	faces, err := l.Run(ctx, f)
	if err != nil {
		return t.last, err
	}
	t.last = faces
	return faces, nil
}
