package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/andresmejia3/facelens/internal/batch"
	"github.com/andresmejia3/facelens/internal/utils"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run recognition over the test image directory and report what was found",
	Long: "Annotates every image in the test directory (default ./test_images) next to each input " +
		"as detected_<name>. Images without faces are reported and left alone.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runCheck(cmd.Context())
	},
}

func init() {
	checkCmd.Flags().String("dir", "test_images", "Directory of test images")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(ctx context.Context) error {
	p, known, closeFn, err := newProcessor(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	if known.Len() == 0 {
		fmt.Printf("❌ No known faces loaded. Add reference photos to %s first.\n", Cfg.KnownDir)
		return nil
	}

	created, err := utils.EnsureDir(Cfg.TestDir)
	if err != nil {
		utils.ShowError("Failed to prepare test directory", err, nil)
		return err
	}
	if created {
		fmt.Printf("📁 Created directory: %s\n", Cfg.TestDir)
		fmt.Println("   Please add test images to this directory")
		return nil
	}

	p.RequireFaces = true
	p.SkipPrefix = batch.OutputPrefix
	sum, err := p.ProcessDir(ctx, Cfg.TestDir, Cfg.TestDir)
	if err != nil {
		utils.ShowError("Failed to process test images", err, nil)
		return err
	}

	for _, line := range checkReport(sum) {
		fmt.Println(line)
	}
	return nil
}

// checkReport renders one line per processed image
func checkReport(sum batch.Summary) []string {
	var lines []string
	for _, r := range sum.Results {
		name := filepath.Base(r.Input)
		if !r.Written {
			lines = append(lines, "No faces found in "+name)
			continue
		}
		names := make([]string, len(r.Faces))
		for i, f := range r.Faces {
			names[i] = f.Name
		}
		lines = append(lines, fmt.Sprintf("Found %d face(s) in %s: %s", len(r.Faces), name, strings.Join(names, ", ")))
	}
	if sum.Failed > 0 {
		lines = append(lines, fmt.Sprintf("%d image(s) could not be processed", sum.Failed))
	}
	return lines
}
