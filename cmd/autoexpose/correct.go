package main

import (
	"github.com/spf13/cobra"

	raster "github.com/gogpu/exposure/internal/image"
)

func (a *app) correctCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "correct <image>",
		Short: "Write an exposure-corrected copy of an image",
		Long: `Write an exposure-corrected copy of an image.

Strength is clamped to [0, 10]. 0 leaves the image unchanged and 1 is the
nominal correction. Without --output the result is written next to the
input as <name>-exposed.png.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, _, err := readImage(args[0])
			if err != nil {
				return err
			}

			out := a.v.GetString("correct.output")
			if out == "" {
				out = defaultOutput(args[0])
			}
			if _, err := raster.EncoderFor(out); err != nil {
				return err
			}

			e, err := a.newEngine()
			if err != nil {
				return err
			}
			defer e.Close()

			strength := a.v.GetFloat64("correct.strength")
			corrected, err := e.AutoExposureCorrect(cmd.Context(), img, strength)
			if err != nil {
				return err
			}
			if err := writeImage(out, corrected); err != nil {
				return err
			}

			a.printer().Fprintf(cmd.OutOrStdout(), "wrote %s (%d×%d, strength %.2f, %s device)\n",
				out, corrected.Width, corrected.Height, strength, e.DeviceName())
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "output file (png, tiff, bmp or jpeg by extension)")
	cmd.Flags().Float64P("strength", "s", 1, "correction strength in [0, 10]")
	_ = a.v.BindPFlag("correct.output", cmd.Flags().Lookup("output"))
	_ = a.v.BindPFlag("correct.strength", cmd.Flags().Lookup("strength"))
	return cmd
}
