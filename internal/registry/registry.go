// Package registry holds the ordered set of reference faces and loads it from a directory of photos.
package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andresmejia3/facelens/internal/frame"
	"github.com/andresmejia3/facelens/internal/types"
	"github.com/andresmejia3/facelens/internal/utils"
	"github.com/sirupsen/logrus"
)

// Encoder computes one signature per face found in the frame
type Encoder interface {
	Signatures(ctx context.Context, f *frame.Frame) ([]types.Signature, error)
}

// Registry is an ordered, immutable-after-load list of known faces.
// Duplicate names are allowed; lookup order is load order.
type Registry struct {
	faces []types.KnownFace
}

// New creates a registry from existing entries (mostly for tests)
func New(faces ...types.KnownFace) *Registry {
	return &Registry{faces: faces}
}

func (r *Registry) add(k types.KnownFace) {
	r.faces = append(r.faces, k)
}

// Faces returns the entries in load order
func (r *Registry) Faces() []types.KnownFace {
	return r.faces
}

func (r *Registry) Len() int {
	return len(r.faces)
}

// LoadReport summarizes what happened to each file in the directory
type LoadReport struct {
	Created bool     // the directory did not exist and was created
	Loaded  []string // files that contributed an entry
	NoFace  []string // supported images without a detectable face
	Failed  []string // unreadable or unprocessable files
	Skipped []string // unsupported extensions
}

// Label derives an identity name from a reference filename ("Alice Smith.jpg" -> "Alice Smith")
func Label(filename string) string {
	return utils.Stem(filename)
}

// Load reads every JPEG/PNG in dir and keeps the first face of each as a reference.
// A missing directory is created and yields an empty registry.
func Load(ctx context.Context, dir string, enc Encoder, log logrus.FieldLogger) (*Registry, LoadReport, error) {
	reg := &Registry{}
	var report LoadReport

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, report, fmt.Errorf("failed to create known faces directory: %w", err)
		}
		report.Created = true
		log.WithField("dir", dir).Info("Created directory")
		log.WithField("dir", dir).Info("Please add known face images to this directory")
		return reg, report, nil
	}
	if err != nil {
		return nil, report, fmt.Errorf("unable to access known faces directory: %w", err)
	}
	if !info.IsDir() {
		return nil, report, fmt.Errorf("known faces path %s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, report, fmt.Errorf("failed to list known faces directory: %w", err)
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !frame.IsSupported(name) {
			report.Skipped = append(report.Skipped, name)
			continue
		}

		path := filepath.Join(dir, name)
		entry := log.WithField("file", name)

		img, err := frame.ReadFile(path)
		if err != nil {
			entry.WithError(err).Warn("Could not read reference image")
			report.Failed = append(report.Failed, name)
			continue
		}

		sigs, err := enc.Signatures(ctx, img)
		if err != nil {
			entry.WithError(err).Warn("Could not encode reference image")
			report.Failed = append(report.Failed, name)
			continue
		}
		if len(sigs) == 0 {
			entry.Warn("No face found in " + name)
			report.NoFace = append(report.NoFace, name)
			continue
		}

		// Extra faces in a reference photo are ignored
		reg.add(types.KnownFace{Name: Label(name), Signature: sigs[0], Source: path})
		report.Loaded = append(report.Loaded, name)
		entry.WithField("faces", len(sigs)).Info("Loaded face")
	}

	return reg, report, nil
}
