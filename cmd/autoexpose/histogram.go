package main

import (
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/gogpu/exposure"
)

func (a *app) histogramCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "histogram <image>",
		Short: "Print histogram statistics and the estimated tone parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, format, err := readImage(args[0])
			if err != nil {
				return err
			}

			e, err := a.newEngine()
			if err != nil {
				return err
			}
			defer e.Close()

			h, err := e.ComputeHistogram(cmd.Context(), img)
			if err != nil {
				return err
			}

			report := histogramReport{
				Path:   args[0],
				Format: format,
				Image:  img,
				Device: e.DeviceName(),
				Hist:   h,
				Bins:   a.v.GetBool("histogram.bins"),
			}
			report.write(cmd.OutOrStdout(), a.printer())
			return nil
		},
	}
	cmd.Flags().Bool("bins", false, "also print every non-empty brightness bin")
	_ = a.v.BindPFlag("histogram.bins", cmd.Flags().Lookup("bins"))
	return cmd
}

type histogramReport struct {
	Path   string
	Format string
	Image  exposure.RawImage
	Device string
	Hist   exposure.Histogram
	Bins   bool
}

func (r *histogramReport) write(w io.Writer, p *message.Printer) {
	s := r.Hist.Stats()
	tone := exposure.EstimateToneParams(r.Hist)
	total := r.Hist.Total()

	p.Fprintf(w, "%-17s %s (%s, %d×%d)\n", "file:", r.Path, r.Format, r.Image.Width, r.Image.Height)
	p.Fprintf(w, "%-17s %s\n", "device:", r.Device)
	p.Fprintf(w, "%-17s %d\n", "pixels:", total)
	p.Fprintf(w, "%-17s %.4f\n", "mean:", s.Mean)
	p.Fprintf(w, "%-17s %.4f\n", "variance:", s.Variance)
	p.Fprintf(w, "%-17s %d\n", "dynamic range:", s.DynamicRange)
	p.Fprintf(w, "%-17s %d (%.1f%%)\n", "shadows:", s.Shadows, percent(s.Shadows, total))
	p.Fprintf(w, "%-17s %d (%.1f%%)\n", "highlights:", s.Highlights, percent(s.Highlights, total))
	p.Fprintf(w, "%-17s %+.4f\n", "target exposure:", tone.TargetExposure)
	p.Fprintf(w, "%-17s %.3f\n", "local adjust:", tone.LocalAdjustFactor)

	if !r.Bins {
		return
	}
	p.Fprintf(w, "\n%5s %10s %10s %10s %10s\n", "bin", "R", "G", "B", "brightness")
	for i := range exposure.HistogramBins {
		h := &r.Hist
		if h.R[i]|h.G[i]|h.B[i]|h.Brightness[i] == 0 {
			continue
		}
		p.Fprintf(w, "%5d %10d %10d %10d %10d\n", i, h.R[i], h.G[i], h.B[i], h.Brightness[i])
	}
}

func percent(n, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
