package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresmejia3/facelens/internal/batch"
	"github.com/andresmejia3/facelens/internal/frame"
	"github.com/spf13/cobra"
)

var (
	resetKnown   bool
	resetResults bool
)

var resetCmd = &cobra.Command{
	Use:   "reset [dir...]",
	Short: "Delete annotated outputs and/or reference photos",
	Long: "Removes detected/ output directories and detected_* files from the given directories " +
		"(default: the test directory). --known clears the reference photos. No flags clears both.",
	RunE: func(cmd *cobra.Command, args []string) error {
		// If no flags are set, default to clearing EVERYTHING
		if !resetKnown && !resetResults {
			resetKnown = true
			resetResults = true
		}
		if len(args) == 0 {
			args = []string{Cfg.TestDir}
		}

		reader := bufio.NewReader(os.Stdin)

		if resetResults {
			if confirm(reader, fmt.Sprintf("⚠️  Are you sure you want to delete annotated outputs in %s?", strings.Join(args, ", "))) {
				fmt.Println("🗑️  Clearing annotated outputs...")
				for _, dir := range args {
					n := clearResults(dir)
					fmt.Printf("   %s: %d item(s) removed\n", dir, n)
				}
			}
		}

		if resetKnown {
			if confirm(reader, fmt.Sprintf("⚠️  Are you sure you want to delete all reference photos in %s?", Cfg.KnownDir)) {
				fmt.Println("🗑️  Clearing known faces...")
				n := clearKnown(Cfg.KnownDir)
				fmt.Printf("   %s: %d photo(s) removed\n", Cfg.KnownDir, n)
			}
		}

		fmt.Println("✨ Reset Complete.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetKnown, "known", false, "Clear the reference photos")
	resetCmd.Flags().BoolVar(&resetResults, "results", false, "Clear annotated outputs")
	rootCmd.AddCommand(resetCmd)
}

func confirm(r *bufio.Reader, prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	res, _ := r.ReadString('\n')
	res = strings.TrimSpace(strings.ToLower(res))
	return res == "y" || res == "yes"
}

// clearResults removes <dir>/detected and every detected_* image in dir
func clearResults(dir string) int {
	removed := 0
	out := filepath.Join(dir, batch.OutputDirName)
	if _, err := os.Stat(out); err == nil {
		if removeDir(out) {
			removed++
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return removed
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), batch.OutputPrefix) || !frame.IsSupported(e.Name()) {
			continue
		}
		if removeFile(filepath.Join(dir, e.Name())) {
			removed++
		}
	}
	return removed
}

// clearKnown removes the reference images but keeps the directory and any other files
func clearKnown(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !frame.IsSupported(e.Name()) {
			continue
		}
		if removeFile(filepath.Join(dir, e.Name())) {
			removed++
		}
	}
	return removed
}

func removeDir(path string) bool {
	if err := os.RemoveAll(path); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Failed to remove %s: %v\n", path, err)
		return false
	}
	return true
}

func removeFile(path string) bool {
	if err := os.Remove(path); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Failed to remove %s: %v\n", path, err)
		return false
	}
	return true
}
