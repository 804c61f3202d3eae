package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/andresmejia3/facelens/internal/camera"
	"github.com/andresmejia3/facelens/internal/detect"
	"github.com/andresmejia3/facelens/internal/live"
	"github.com/andresmejia3/facelens/internal/render"
	"github.com/andresmejia3/facelens/internal/utils"
	"github.com/spf13/cobra"
)

type liveOptions struct {
	QuitKey string
	Title   string
}

var liveOpts liveOptions

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Recognize faces from a camera in real time",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		quit, err := validateLiveFlags(liveOpts)
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true
		return runLive(cmd.Context(), quit, liveOpts.Title)
	},
}

func init() {
	liveCmd.Flags().IntP("device", "d", 0, "Camera device index")
	liveCmd.Flags().Float64("scale", 0.25, "Downscale factor applied before detection")
	liveCmd.Flags().StringVar(&liveOpts.QuitKey, "quit-key", "q", "Key that ends the session")
	liveCmd.Flags().StringVar(&liveOpts.Title, "window", "facelens", "Window title")
	rootCmd.AddCommand(liveCmd)
}

func validateLiveFlags(opts liveOptions) (rune, error) {
	r := []rune(opts.QuitKey)
	if len(r) != 1 {
		return 0, fmt.Errorf("--quit-key must be a single character, got %q", opts.QuitKey)
	}
	return r[0], nil
}

func runLive(ctx context.Context, quit rune, title string) error {
	adapter, proc, err := openAdapter(Cfg, Cfg.Scale)
	if err != nil {
		return err
	}
	defer adapter.Close()

	// Reference photos are encoded at full resolution
	known, _, err := loadKnown(ctx, adapter.WithScale(1))
	if err != nil {
		return err
	}

	cam, err := camera.OpenWebcam(Cfg.Device)
	if err != nil {
		utils.ShowError("Could not open video capture device", err, nil)
		return err
	}
	win := camera.OpenWindow(title)

	session := &live.Session{
		Source:   cam,
		Display:  win,
		Labeler:  detect.New(adapter, known, Cfg.Tolerance),
		Renderer: render.New(render.DefaultStyle()),
		Log:      Log,
		QuitKey:  quit,
	}

	fmt.Fprintf(os.Stderr, "🎥 Press '%c' to quit\n", quit)
	stats, err := session.Run(ctx)
	Log.WithField("frames", stats.Frames).
		WithField("detections", stats.Detections).
		WithField("reason", stats.Reason.String()).
		Info("Live session ended")

	if err != nil {
		if errors.Is(err, live.ErrFrameRead) {
			utils.ShowError("Could not read frame", err, proc)
		} else {
			utils.ShowError("Live session failed", err, proc)
		}
		return err
	}
	return nil
}
