// Package live runs the interactive camera loop.
package live

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/andresmejia3/facelens/internal/frame"
	"github.com/andresmejia3/facelens/internal/render"
	"github.com/andresmejia3/facelens/internal/types"
	"github.com/sirupsen/logrus"
)

var ErrFrameRead = errors.New("could not read frame")

// DefaultQuitKey ends the session when pressed in the display window
const DefaultQuitKey = 'q'

// Source yields frames until it returns io.EOF
type Source interface {
	Read() (*frame.Frame, error)
	Close() error
}

// Display shows annotated frames and reports key presses
type Display interface {
	Show(img *image.RGBA) error
	// PollKey returns the pressed key, or -1 if none
	PollKey() int
	Close() error
}

type Labeler interface {
	Run(ctx context.Context, f *frame.Frame) ([]types.DetectedFace, error)
}

// StopReason explains why a session ended
type StopReason int

const (
	StopQuitKey StopReason = iota
	StopEndOfStream
	StopReadError
	StopCancelled
	StopDisplayError
)

func (r StopReason) String() string {
	switch r {
	case StopQuitKey:
		return "quit key"
	case StopEndOfStream:
		return "end of stream"
	case StopReadError:
		return "read error"
	case StopCancelled:
		return "cancelled"
	case StopDisplayError:
		return "display error"
	}
	return "unknown"
}

// Stats summarizes a finished session
type Stats struct {
	Frames     int // frames shown
	Detections int // frames that ran the detector
	Reason     StopReason
}

type Session struct {
	Source   Source
	Display  Display
	Labeler  Labeler
	Renderer *render.Renderer
	Log      logrus.FieldLogger
	QuitKey  rune
}

// Run loops until the quit key, end of stream, a read failure or cancellation.
// Source and Display are closed on every exit path.
func (s *Session) Run(ctx context.Context) (Stats, error) {
	defer s.Source.Close()
	defer s.Display.Close()

	quit := s.QuitKey
	if quit == 0 {
		quit = DefaultQuitKey
	}

	var stats Stats
	tracker := &Tracker{}

	for {
		if ctx.Err() != nil {
			stats.Reason = StopCancelled
			return stats, nil
		}

		f, err := s.Source.Read()
		if errors.Is(err, io.EOF) {
			stats.Reason = StopEndOfStream
			return stats, nil
		}
		if err != nil {
			stats.Reason = StopReadError
			return stats, fmt.Errorf("%w: %v", ErrFrameRead, err)
		}

		ran := tracker.Phase() == PhaseDetect
		faces, err := tracker.Step(ctx, f, s.Labeler)
		if err != nil {
			s.Log.WithError(err).Warn("Detection failed, reusing previous result")
		}
		if ran {
			stats.Detections++
		}

		canvas := f.ToRGBA()
		s.Renderer.Draw(canvas, faces)
		if err := s.Display.Show(canvas); err != nil {
			stats.Reason = StopDisplayError
			return stats, fmt.Errorf("failed to display frame: %w", err)
		}
		stats.Frames++

		if key := s.Display.PollKey(); key >= 0 && rune(key) == quit {
			stats.Reason = StopQuitKey
			return stats, nil
		}
	}
}
