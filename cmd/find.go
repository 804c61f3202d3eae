package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/andresmejia3/facelens/internal/detect"
	"github.com/andresmejia3/facelens/internal/frame"
	"github.com/andresmejia3/facelens/internal/matcher"
	"github.com/andresmejia3/facelens/internal/types"
	"github.com/andresmejia3/facelens/internal/utils"
	"github.com/spf13/cobra"
)

var findCmd = &cobra.Command{
	Use:   "find <image_path>",
	Short: "Identify the faces in an image without writing any output",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runFind(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(findCmd)
}

func runFind(ctx context.Context, imagePath string) error {
	if _, err := os.Stat(imagePath); os.IsNotExist(err) {
		utils.ShowError("Input file does not exist", err, nil)
		return err
	}

	img, err := frame.ReadFile(imagePath)
	if err != nil {
		utils.ShowError("Could not read image", err, nil)
		return err
	}

	adapter, proc, err := openAdapter(Cfg, 1)
	if err != nil {
		return err
	}
	defer adapter.Close()

	known, _, err := loadKnown(ctx, adapter)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, "🔍 Analyzing faces...")
	faces, err := detect.New(adapter, known, Cfg.Tolerance).Run(ctx, img)
	if err != nil {
		utils.ShowError("Face detection failed", err, proc)
		return err
	}

	if len(faces) == 0 {
		fmt.Println("❌ No faces detected in the provided image.")
		return nil
	}

	printFaces(os.Stdout, faces, known.Faces())
	return nil
}

// printFaces writes one row per face in engine order
func printFaces(out io.Writer, faces []types.DetectedFace, known []types.KnownFace) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tTOP\tRIGHT\tBOTTOM\tLEFT\tDISTANCE\tCLOSEST")
	fmt.Fprintln(w, "----\t---\t-----\t------\t----\t--------\t-------")

	for _, f := range faces {
		dist := "-"
		if f.Name != types.Unknown {
			dist = fmt.Sprintf("%.3f", f.Distance)
		}
		closest := "-"
		if idx, d := matcher.Closest(f.Signature, known); idx >= 0 {
			closest = fmt.Sprintf("%s (%.3f)", known[idx].Name, d)
		}
		b := f.Box
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%s\t%s\n", f.Name, b.Top, b.Right, b.Bottom, b.Left, dist, closest)
	}
	w.Flush()
}
