// Package batch annotates still images, one file or a whole directory at a time.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresmejia3/facelens/internal/frame"
	"github.com/andresmejia3/facelens/internal/render"
	"github.com/andresmejia3/facelens/internal/types"
	"github.com/andresmejia3/facelens/internal/utils"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
)

const (
	// OutputPrefix is prepended to file names written in directory mode
	OutputPrefix = "detected_"
	// OutputSuffix is appended to the stem in single-image mode
	OutputSuffix = "_detected"
	// OutputDirName is the default output directory inside the input directory
	OutputDirName = "detected"
)

var (
	ErrInputNotFound = errors.New("input image not found")
	ErrUnreadable    = errors.New("could not read image")
	ErrNotDirectory  = errors.New("input path is not a directory")
)

// Labeler detects and names the faces of one frame
type Labeler interface {
	Run(ctx context.Context, f *frame.Frame) ([]types.DetectedFace, error)
}

type Processor struct {
	Labeler  Labeler
	Renderer *render.Renderer
	Log      logrus.FieldLogger
	Progress io.Writer // progress bar destination for directories, nil for none

	// RequireFaces skips writing output for images without any face
	RequireFaces bool
	// SkipPrefix ignores input files whose name starts with it (empty disables)
	SkipPrefix string
}

// Result is what happened to a single image
type Result struct {
	Input   string
	Output  string
	Faces   []types.DetectedFace
	Written bool
}

// Summary aggregates a directory run
type Summary struct {
	OutputDir string
	Processed int // images annotated and written
	NoFace    int // images skipped because RequireFaces found nothing
	Failed    int // images that could not be read, processed or written
	Skipped   int // unsupported or ignored files
	Results   []Result
}

// DefaultImageOutput returns <dir>/<stem>_detected<ext>
func DefaultImageOutput(in string) string {
	return filepath.Join(filepath.Dir(in), utils.Stem(in)+OutputSuffix+filepath.Ext(in))
}

// DefaultDirOutput returns <in>/detected
func DefaultDirOutput(in string) string {
	return filepath.Join(in, OutputDirName)
}

// ProcessImage annotates one image and writes it to out (DefaultImageOutput when empty)
func (p *Processor) ProcessImage(ctx context.Context, in, out string) (Result, error) {
	res := Result{Input: in}

	if _, err := os.Stat(in); err != nil {
		if os.IsNotExist(err) {
			return res, fmt.Errorf("%w at %s", ErrInputNotFound, in)
		}
		return res, fmt.Errorf("%w at %s: %v", ErrUnreadable, in, err)
	}

	img, err := frame.ReadFile(in)
	if err != nil {
		return res, fmt.Errorf("%w at %s: %v", ErrUnreadable, in, err)
	}

	faces, err := p.Labeler.Run(ctx, img)
	if err != nil {
		return res, fmt.Errorf("face detection failed for %s: %w", in, err)
	}
	res.Faces = faces

	if p.RequireFaces && len(faces) == 0 {
		return res, nil
	}

	if out == "" {
		out = DefaultImageOutput(in)
	}
	res.Output = out

	canvas := img.ToRGBA()
	p.Renderer.Draw(canvas, faces)

	if _, err := utils.EnsureDir(filepath.Dir(out)); err != nil {
		return res, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := frame.WriteImage(out, canvas); err != nil {
		return res, fmt.Errorf("failed to write %s: %w", out, err)
	}
	res.Written = true
	return res, nil
}

// ProcessDir annotates every supported image directly inside in.
// Outputs go to out (DefaultDirOutput when empty) as detected_<name>.
// A failing file is logged and counted; the run continues.
func (p *Processor) ProcessDir(ctx context.Context, in, out string) (Summary, error) {
	var sum Summary

	info, err := os.Stat(in)
	if err != nil {
		return sum, fmt.Errorf("unable to access input directory: %w", err)
	}
	if !info.IsDir() {
		return sum, fmt.Errorf("%w: %s", ErrNotDirectory, in)
	}

	if out == "" {
		out = DefaultDirOutput(in)
	}
	sum.OutputDir = out
	if _, err := utils.EnsureDir(out); err != nil {
		return sum, fmt.Errorf("failed to create output directory: %w", err)
	}

	entries, err := os.ReadDir(in)
	if err != nil {
		return sum, fmt.Errorf("failed to list input directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !frame.IsSupported(name) || (p.SkipPrefix != "" && strings.HasPrefix(name, p.SkipPrefix)) {
			sum.Skipped++
			continue
		}
		files = append(files, name)
	}

	progress := p.Progress
	if progress == nil {
		progress = io.Discard
	}
	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("🖼️  Annotating images"),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionShowCount(),
	)

	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		res, err := p.ProcessImage(ctx, filepath.Join(in, name), filepath.Join(out, OutputPrefix+name))
		bar.Add(1)
		if err != nil {
			p.Log.WithField("file", name).WithError(err).Warn("Failed to process image")
			sum.Failed++
			continue
		}

		sum.Results = append(sum.Results, res)
		if res.Written {
			sum.Processed++
		} else {
			sum.NoFace++
		}
	}
	bar.Finish()

	return sum, nil
}
