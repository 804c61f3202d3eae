// Package dlib runs face detection and 128-d encoding in-process through go-face.
package dlib

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/Kagami/go-face"
	"github.com/andresmejia3/facelens/internal/frame"
	"github.com/andresmejia3/facelens/internal/recognizer"
	"github.com/andresmejia3/facelens/internal/types"
)

// Model selects the dlib detector
type Model string

const (
	HOG Model = "hog"
	CNN Model = "cnn"
)

// Engine implements recognizer.Engine on top of a go-face Recognizer.
// go-face is not safe for concurrent use, so calls are serialized.
type Engine struct {
	rec   *face.Recognizer
	model Model

	mu        sync.Mutex
	lastFrame *frame.Frame
	lastFaces []face.Face
}

var _ recognizer.Engine = (*Engine)(nil)

// New loads the dlib models from modelsDir
// (shape_predictor_5_face_landmarks.dat, dlib_face_recognition_resnet_model_v1.dat, mmod_human_face_detector.dat).
func New(modelsDir string, model Model) (*Engine, error) {
	rec, err := face.NewRecognizer(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load face models from %s: %w", modelsDir, err)
	}
	return &Engine{rec: rec, model: model}, nil
}

// recognize runs inference once per frame; Locate followed by Encode on the same frame reuses the result
func (e *Engine) recognize(ctx context.Context, f *frame.Frame) ([]face.Face, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f == e.lastFrame {
		return e.lastFaces, nil
	}

	var buf bytes.Buffer
	if err := f.EncodeJPEG(&buf, 95); err != nil {
		return nil, fmt.Errorf("failed to encode frame for recognizer: %w", err)
	}

	var faces []face.Face
	var err error
	if e.model == CNN {
		faces, err = e.rec.RecognizeCNN(buf.Bytes())
	} else {
		faces, err = e.rec.Recognize(buf.Bytes())
	}
	if err != nil {
		return nil, err
	}

	e.lastFrame, e.lastFaces = f, faces
	return faces, nil
}

func (e *Engine) Locate(ctx context.Context, f *frame.Frame) ([]types.Box, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	faces, err := e.recognize(ctx, f)
	if err != nil {
		return nil, err
	}
	return boxesOf(faces), nil
}

func (e *Engine) Encode(ctx context.Context, f *frame.Frame, boxes []types.Box) ([]types.Signature, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	faces, err := e.recognize(ctx, f)
	if err != nil {
		return nil, err
	}

	if boxes == nil {
		sigs := make([]types.Signature, len(faces))
		for i, fc := range faces {
			sigs[i] = signatureOf(fc.Descriptor)
		}
		return sigs, nil
	}

	idx, err := recognizer.Pair(boxes, boxesOf(faces))
	if err != nil {
		return nil, err
	}
	sigs := make([]types.Signature, len(idx))
	for i, j := range idx {
		sigs[i] = signatureOf(faces[j].Descriptor)
	}
	return sigs, nil
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rec.Close()
	e.lastFrame, e.lastFaces = nil, nil
	return nil
}

func boxesOf(faces []face.Face) []types.Box {
	out := make([]types.Box, len(faces))
	for i, fc := range faces {
		out[i] = types.BoxFromRect(fc.Rectangle)
	}
	return out
}

func signatureOf(d face.Descriptor) types.Signature {
	sig := make(types.Signature, len(d))
	for i, v := range d {
		sig[i] = float64(v)
	}
	return sig
}
