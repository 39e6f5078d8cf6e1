package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/popov-vn/ai-agent/internal/imaging"
)

var (
	resizeWidth  int
	resizeHeight int
)

// resizeCmd resizes an image file
var resizeCmd = &cobra.Command{
	Use:   "resize <input> <output>",
	Short: "Resize an image file",
	Long: `Resize an image to exactly --width x --height. The output format is chosen
by the output file extension (.jpg, .jpeg or .png).`,
	Args: cobra.ExactArgs(2),
	RunE: runResize,
}

func init() {
	resizeCmd.Flags().IntVar(&resizeWidth, "width", imaging.DefaultWidth, "Target width in pixels")
	resizeCmd.Flags().IntVar(&resizeHeight, "height", imaging.DefaultHeight, "Target height in pixels")
}

func runResize(cmd *cobra.Command, args []string) error {
	if err := imaging.ResizeFile(args[0], args[1], resizeWidth, resizeHeight); err != nil {
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Saved %dx%d image to %s\n", resizeWidth, resizeHeight, args[1])
	return err
}
