package live

import (
	"context"
	"errors"
	"image"
	"io"
	"testing"

	"github.com/andresmejia3/facelens/internal/frame"
	"github.com/andresmejia3/facelens/internal/logging"
	"github.com/andresmejia3/facelens/internal/render"
	"github.com/andresmejia3/facelens/internal/types"
)

type fakeSource struct {
	frames int // frames to yield before the terminal error
	end    error
	reads  int
	closed bool
}

func (s *fakeSource) Read() (*frame.Frame, error) {
	if s.reads >= s.frames {
		return nil, s.end
	}
	s.reads++
	return frame.New(64, 48, frame.BGR), nil
}

func (s *fakeSource) Close() error {
	s.closed = true
	return nil
}

type fakeDisplay struct {
	keys    map[int]int // frame number (1-based) -> key pressed after it
	shown   int
	showErr error
	closed  bool
}

func (d *fakeDisplay) Show(*image.RGBA) error {
	if d.showErr != nil {
		return d.showErr
	}
	d.shown++
	return nil
}

func (d *fakeDisplay) PollKey() int {
	if k, ok := d.keys[d.shown]; ok {
		return k
	}
	return -1
}

func (d *fakeDisplay) Close() error {
	d.closed = true
	return nil
}

type countingLabeler struct {
	calls int
	err   error
}

func (l *countingLabeler) Run(context.Context, *frame.Frame) ([]types.DetectedFace, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return []types.DetectedFace{{Box: types.Box{Top: 5, Right: 20, Bottom: 20, Left: 5}, Name: "alice"}}, nil
}

func newSession(src *fakeSource, disp *fakeDisplay, lab *countingLabeler) *Session {
	return &Session{
		Source:   src,
		Display:  disp,
		Labeler:  lab,
		Renderer: render.New(render.DefaultStyle()),
		Log:      logging.Discard(),
	}
}

func TestRunQuitKey(t *testing.T) {
	src := &fakeSource{frames: 100, end: io.EOF}
	disp := &fakeDisplay{keys: map[int]int{3: 'x', 5: 'q'}}
	lab := &countingLabeler{}

	stats, err := newSession(src, disp, lab).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Reason != StopQuitKey {
		t.Errorf("Reason = %v, want quit key", stats.Reason)
	}
	if stats.Frames != 5 {
		t.Errorf("Frames = %d, want 5", stats.Frames)
	}
	// Frames 1, 3, 5 run detection
	if lab.calls != 3 || stats.Detections != 3 {
		t.Errorf("detector ran %d times (stats %d), want 3", lab.calls, stats.Detections)
	}
	if !src.closed || !disp.closed {
		t.Error("source and display must be released")
	}
}

func TestRunCustomQuitKey(t *testing.T) {
	src := &fakeSource{frames: 10, end: io.EOF}
	disp := &fakeDisplay{keys: map[int]int{1: 'q', 2: 27}}
	s := newSession(src, disp, &countingLabeler{})
	s.QuitKey = 27

	stats, _ := s.Run(context.Background())
	if stats.Frames != 2 || stats.Reason != StopQuitKey {
		t.Errorf("stats = %+v, want 2 frames ending on quit key", stats)
	}
}

func TestRunEndOfStream(t *testing.T) {
	src := &fakeSource{frames: 4, end: io.EOF}
	disp := &fakeDisplay{}
	lab := &countingLabeler{}

	stats, err := newSession(src, disp, lab).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Reason != StopEndOfStream || stats.Frames != 4 || lab.calls != 2 {
		t.Errorf("stats = %+v, detector calls = %d", stats, lab.calls)
	}
}

func TestRunReadError(t *testing.T) {
	src := &fakeSource{frames: 2, end: errors.New("device unplugged")}
	disp := &fakeDisplay{}

	stats, err := newSession(src, disp, &countingLabeler{}).Run(context.Background())
	if !errors.Is(err, ErrFrameRead) {
		t.Errorf("expected ErrFrameRead, got %v", err)
	}
	if stats.Reason != StopReadError || stats.Frames != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if !src.closed || !disp.closed {
		t.Error("resources must be released after a read failure")
	}
}

func TestRunDisplayError(t *testing.T) {
	src := &fakeSource{frames: 5, end: io.EOF}
	disp := &fakeDisplay{showErr: errors.New("window gone")}

	stats, err := newSession(src, disp, &countingLabeler{}).Run(context.Background())
	if err == nil || stats.Reason != StopDisplayError {
		t.Errorf("expected display error, got %v (%v)", err, stats.Reason)
	}
	if !src.closed || !disp.closed {
		t.Error("resources must be released after a display failure")
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &fakeSource{frames: 5, end: io.EOF}
	disp := &fakeDisplay{}

	stats, err := newSession(src, disp, &countingLabeler{}).Run(ctx)
	if err != nil || stats.Reason != StopCancelled || stats.Frames != 0 {
		t.Errorf("stats = %+v, err = %v", stats, err)
	}
	if !src.closed || !disp.closed {
		t.Error("resources must be released on cancellation")
	}
}

func TestRunDetectionErrorKeepsGoing(t *testing.T) {
	src := &fakeSource{frames: 3, end: io.EOF}
	lab := &countingLabeler{err: errors.New("engine hiccup")}

	stats, err := newSession(src, &fakeDisplay{}, lab).Run(context.Background())
	if err != nil {
		t.Fatalf("detection errors should not stop the loop: %v", err)
	}
	if stats.Frames != 3 {
		t.Errorf("Frames = %d, want 3", stats.Frames)
	}
}

func TestStopReasonString(t *testing.T) {
	if StopQuitKey.String() != "quit key" || StopReason(99).String() != "unknown" {
		t.Error("unexpected StopReason strings")
	}
}
