package live

import (
	"context"
	"errors"
	"testing"

	"github.com/andresmejia3/facelens/internal/frame"
)

func TestPhaseNext(t *testing.T) {
	if PhaseDetect.Next() != PhaseReuse || PhaseReuse.Next() != PhaseDetect {
		t.Error("phases must alternate")
	}
	if PhaseDetect.String() != "detect" || PhaseReuse.String() != "reuse" {
		t.Error("unexpected phase names")
	}
}

func TestTrackerAlternates(t *testing.T) {
	tr := &Tracker{}
	lab := &countingLabeler{}
	f := frame.New(4, 4, frame.RGB)

	wantPhases := []Phase{PhaseDetect, PhaseReuse, PhaseDetect, PhaseReuse}
	for i, want := range wantPhases {
		if tr.Phase() != want {
			t.Fatalf("step %d: phase = %v, want %v", i, tr.Phase(), want)
		}
		faces, err := tr.Step(context.Background(), f, lab)
		if err != nil {
			t.Fatal(err)
		}
		if len(faces) != 1 || faces[0].Name != "alice" {
			t.Errorf("step %d: faces = %+v", i, faces)
		}
	}
	if lab.calls != 2 {
		t.Errorf("detector ran %d times, want 2", lab.calls)
	}
}

func TestTrackerReuseBeforeFirstDetection(t *testing.T) {
	tr := &Tracker{phase: PhaseReuse}
	faces, err := tr.Step(context.Background(), frame.New(1, 1, frame.RGB), &countingLabeler{})
	if err != nil || faces != nil {
		t.Errorf("expected no faces before any detection, got %v %v", faces, err)
	}
}

func TestTrackerKeepsLastOnError(t *testing.T) {
	tr := &Tracker{}
	lab := &countingLabeler{}
	f := frame.New(1, 1, frame.RGB)

	tr.Step(context.Background(), f, lab) // detect
	tr.Step(context.Background(), f, lab) // reuse

	lab.err = errors.New("boom")
	faces, err := tr.Step(context.Background(), f, lab)
	if err == nil {
		t.Error("expected detection error")
	}
	if len(faces) != 1 || len(tr.Last()) != 1 {
		t.Errorf("previous result should survive a failed detection, got %+v", faces)
	}
	if tr.Phase() != PhaseReuse {
		t.Error("phase must advance even when detection fails")
	}
}
