package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresmejia3/facelens/internal/frame"
	"github.com/andresmejia3/facelens/internal/utils"
	"github.com/spf13/cobra"
)

var labelForce bool

var labelCmd = &cobra.Command{
	Use:   "label <image_path> <name>",
	Short: "Add a reference photo to the known faces directory under a name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateLabelName(args[1]); err != nil {
			return err
		}
		cmd.SilenceUsage = true
		return runLabel(cmd.Context(), args[0], args[1], labelForce)
	},
}

func init() {
	labelCmd.Flags().BoolVarP(&labelForce, "force", "f", false, "Replace an existing reference with the same name")
	rootCmd.AddCommand(labelCmd)
}

// validateLabelName rejects names that cannot be a plain file stem
func validateLabelName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name must not be empty")
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("name %q must not contain path separators", name)
	}
	return nil
}

// labelTarget is where the reference photo will be stored
func labelTarget(knownDir, imagePath, name string) string {
	return filepath.Join(knownDir, name+strings.ToLower(filepath.Ext(imagePath)))
}

func runLabel(ctx context.Context, imagePath, name string, force bool) error {
	img, err := frame.ReadFile(imagePath)
	if err != nil {
		utils.ShowError("Could not read image", err, nil)
		return err
	}

	dst := labelTarget(Cfg.KnownDir, imagePath, name)
	if _, err := os.Stat(dst); err == nil && !force {
		err := fmt.Errorf("%s already exists (use --force to replace it)", dst)
		utils.ShowError("Reference already exists", err, nil)
		return err
	}

	adapter, proc, err := openAdapter(Cfg, 1)
	if err != nil {
		return err
	}
	defer adapter.Close()

	sigs, err := adapter.Signatures(ctx, img)
	if err != nil {
		utils.ShowError("Face encoding failed", err, proc)
		return err
	}
	if len(sigs) == 0 {
		fmt.Println("❌ No faces detected in the provided image.")
		return fmt.Errorf("no face found in %s", imagePath)
	}
	if len(sigs) > 1 {
		fmt.Printf("⚠️  Multiple faces detected (%d). Only the first one will be used for matching.\n", len(sigs))
	}

	if _, err := utils.EnsureDir(Cfg.KnownDir); err != nil {
		utils.ShowError("Failed to create known faces directory", err, nil)
		return err
	}
	if err := utils.CopyFile(imagePath, dst); err != nil {
		utils.ShowError("Failed to store reference photo", err, nil)
		return err
	}

	Log.WithField("file", dst).WithField("name", name).Info("Reference photo added")
	fmt.Printf("✅ %s labeled as '%s'\n", filepath.Base(imagePath), name)
	return nil
}
