package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/andresmejia3/facelens/internal/config"
	"github.com/andresmejia3/facelens/internal/recognizer"
	"github.com/andresmejia3/facelens/internal/recognizer/dlib"
	"github.com/andresmejia3/facelens/internal/registry"
	"github.com/andresmejia3/facelens/internal/utils"
	"github.com/andresmejia3/facelens/internal/worker"
)

// openEngine starts the configured engine. The SafeCommand is non-nil for
// the external worker so its logs can be dumped on failure.
func openEngine(cfg *config.Config) (recognizer.Engine, *utils.SafeCommand, error) {
	switch cfg.Engine {
	case config.EngineWorker:
		fmt.Fprintln(os.Stderr, "🚀 Starting engine worker...")
		w, err := worker.New(0, cfg.WorkerCommand)
		if err != nil {
			return nil, nil, err
		}
		return w, w.Cmd, nil
	default:
		fmt.Fprintln(os.Stderr, "🚀 Loading face models...")
		e, err := dlib.New(cfg.ModelsDir, dlib.Model(cfg.DetectionModel))
		if err != nil {
			return nil, nil, err
		}
		return e, nil, nil
	}
}

// openAdapter wraps the engine with the given downscale factor
func openAdapter(cfg *config.Config, scale float64) (*recognizer.Adapter, *utils.SafeCommand, error) {
	eng, proc, err := openEngine(cfg)
	if err != nil {
		utils.ShowError("Failed to start face engine", err, proc)
		return nil, nil, err
	}
	return recognizer.NewAdapter(eng, scale), proc, nil
}

// loadKnown reads the reference directory and reports what was found
func loadKnown(ctx context.Context, enc registry.Encoder) (*registry.Registry, registry.LoadReport, error) {
	reg, report, err := registry.Load(ctx, Cfg.KnownDir, enc, Log)
	if err != nil {
		utils.ShowError("Failed to load known faces", err, nil)
		return nil, report, err
	}
	if report.Created {
		fmt.Fprintf(os.Stderr, "📁 Created directory: %s\n", Cfg.KnownDir)
		fmt.Fprintln(os.Stderr, "   Please add known face images to this directory")
	}
	fmt.Fprintf(os.Stderr, "👤 Loaded %d known face(s)", reg.Len())
	if n := len(report.NoFace) + len(report.Failed); n > 0 {
		fmt.Fprintf(os.Stderr, " (%d file(s) skipped)", n)
	}
	fmt.Fprintln(os.Stderr)
	return reg, report, nil
}
