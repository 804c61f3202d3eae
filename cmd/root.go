package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/andresmejia3/facelens/internal/config"
	"github.com/andresmejia3/facelens/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Cfg is the resolved configuration shared by subcommands
	Cfg *config.Config
	// Log is the run-scoped logger
	Log *logrus.Entry
	// configPath is the --config flag
	configPath string
)

// Version is the application version.
const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "facelens",
	Short:   "Face detection and recognition against a folder of known faces",
	Version: Version, // This enables the --version flag
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg.ApplyFlags(cmd.Flags())
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		log, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
		if err != nil {
			return err
		}

		Cfg, Log = cfg, log
		return nil
	},
}

func Execute() {
	// Create a context that listens for Ctrl+C (SIGINT) or Kill (SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// This tells Cobra not to print the version in the help text, which is cleaner.
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML config file (default: ./"+config.DefaultFile+" if present)")
	pf.StringP("known", "k", "known_faces", "Directory of reference photos, one person per file")
	pf.Float64P("threshold", "t", 0.6, "Maximum face distance counted as a match")
	pf.String("engine", config.EngineDlib, "Face engine: dlib (in-process) or worker (external process)")
	pf.String("models", "models", "Directory holding the dlib model files")
	pf.String("model", config.ModelHOG, "Detection model: hog or cnn")
	pf.String("worker-cmd", "", "Command that starts the external engine (engine=worker)")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-file", "", "Also write logs to this rotating file")
}
