package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/andresmejia3/facelens/internal/batch"
	"github.com/andresmejia3/facelens/internal/detect"
	"github.com/andresmejia3/facelens/internal/frame"
	"github.com/andresmejia3/facelens/internal/registry"
	"github.com/andresmejia3/facelens/internal/render"
	"github.com/andresmejia3/facelens/internal/utils"
	"github.com/spf13/cobra"
)

// batchOptions holds the flags of the batch command
type batchOptions struct {
	InputPath  string
	OutputPath string
}

var batchOpts batchOptions

var batchCmd = &cobra.Command{
	Use:   "batch <image_or_directory>",
	Short: "Annotate faces in an image or every image of a directory",
	Long: "Draws a labelled box around every face. A single image is written to <stem>_detected<ext> " +
		"unless --output is given; a directory is written to <dir>/detected/detected_<name>.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		batchOpts.InputPath = args[0]
		isDir, err := validateBatchFlags(&batchOpts)
		if err != nil {
			utils.ShowError("Invalid batch input", err, nil)
			return err
		}
		cmd.SilenceUsage = true
		return runBatch(cmd.Context(), batchOpts, isDir)
	},
}

func init() {
	batchCmd.Flags().StringVarP(&batchOpts.OutputPath, "output", "o", "", "Output file (single image) or directory")
	rootCmd.AddCommand(batchCmd)
}

// validateBatchFlags checks the input before any engine is started.
// It reports whether the input is a directory.
func validateBatchFlags(opts *batchOptions) (bool, error) {
	info, err := os.Stat(opts.InputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, fmt.Errorf("%w at %s", batch.ErrInputNotFound, opts.InputPath)
		}
		return false, fmt.Errorf("unable to access %s: %w", opts.InputPath, err)
	}
	if info.IsDir() {
		return true, nil
	}

	if !frame.IsSupported(opts.InputPath) {
		return false, fmt.Errorf("%s: %w (expected .jpg, .jpeg or .png)", opts.InputPath, frame.ErrUnsupportedFormat)
	}
	if opts.OutputPath != "" && !frame.IsSupported(opts.OutputPath) {
		return false, fmt.Errorf("output %s: %w (expected .jpg, .jpeg or .png)", opts.OutputPath, frame.ErrUnsupportedFormat)
	}
	return false, nil
}

// newProcessor starts the engine at full resolution and loads the registry
func newProcessor(ctx context.Context) (*batch.Processor, *registry.Registry, func(), error) {
	adapter, _, err := openAdapter(Cfg, 1)
	if err != nil {
		return nil, nil, nil, err
	}
	known, _, err := loadKnown(ctx, adapter)
	if err != nil {
		adapter.Close()
		return nil, nil, nil, err
	}

	p := &batch.Processor{
		Labeler:  detect.New(adapter, known, Cfg.Tolerance),
		Renderer: render.New(render.DefaultStyle()),
		Log:      Log,
		Progress: os.Stderr,
	}
	return p, known, func() { adapter.Close() }, nil
}

func runBatch(ctx context.Context, opts batchOptions, isDir bool) error {
	p, _, closeFn, err := newProcessor(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	if !isDir {
		res, err := p.ProcessImage(ctx, opts.InputPath, opts.OutputPath)
		if err != nil {
			if errors.Is(err, batch.ErrUnreadable) {
				utils.ShowError("Could not read image", err, nil)
			} else {
				utils.ShowError("Failed to process image", err, nil)
			}
			return err
		}
		fmt.Printf("✅ Found %d face(s). Result saved to: %s\n", len(res.Faces), res.Output)
		return nil
	}

	sum, err := p.ProcessDir(ctx, opts.InputPath, opts.OutputPath)
	if err != nil {
		utils.ShowError("Failed to process directory", err, nil)
		return err
	}
	fmt.Printf("✅ Processed %d images. Results saved in: %s\n", sum.Processed, sum.OutputDir)
	if sum.Failed > 0 {
		return fmt.Errorf("%d image(s) could not be processed", sum.Failed)
	}
	return nil
}
