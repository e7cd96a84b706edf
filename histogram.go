package exposure

import (
	"fmt"

	"github.com/gogpu/exposure/internal/compute"
)

// HistogramBins is the number of bins per histogram channel.
const HistogramBins = compute.HistogramBins

// Histogram holds 256-bin counts of the red, green, blue and brightness
// channels. Brightness is round(0.299R + 0.587G + 0.114B).
type Histogram struct {
	R          [HistogramBins]uint32
	G          [HistogramBins]uint32
	B          [HistogramBins]uint32
	Brightness [HistogramBins]uint32
}

// histogramFromBins splits the device counters and removes the padding
// texels, which are transparent black and land in bin 0 of every channel.
func histogramFromBins(b *compute.Bins, paddedPixels int) (Histogram, error) {
	h := Histogram{
		R:          b.Channel(compute.OffsetRed),
		G:          b.Channel(compute.OffsetGreen),
		B:          b.Channel(compute.OffsetBlue),
		Brightness: b.Channel(compute.OffsetBrightness),
	}
	if paddedPixels == 0 {
		return h, nil
	}

	pad := uint32(paddedPixels)
	for _, ch := range []*[HistogramBins]uint32{&h.R, &h.G, &h.B, &h.Brightness} {
		if ch[0] < pad {
			return Histogram{}, fmt.Errorf("%w: bin 0 holds %d counts, fewer than %d padding pixels",
				ErrAssertion, ch[0], pad)
		}
		ch[0] -= pad
	}
	return h, nil
}

// Total returns the number of pixels counted.
func (h *Histogram) Total() uint64 {
	var n uint64
	for _, c := range h.Brightness {
		n += uint64(c)
	}
	return n
}

// HistogramStats summarizes the brightness distribution.
type HistogramStats struct {
	// DynamicRange is the brightness span left after trimming 5 % of the
	// pixels from each end.
	DynamicRange int

	// Highlights counts pixels with brightness 240 to 255.
	Highlights uint64

	// Shadows counts pixels with brightness 0 to 15.
	Shadows uint64

	// Mean and Variance of the brightness, normalized to [0, 1].
	Mean     float64
	Variance float64
}

// Stats computes summary statistics of the brightness histogram. An empty
// histogram yields the zero value.
func (h *Histogram) Stats() HistogramStats {
	total := h.Total()
	if total == 0 {
		return HistogramStats{}
	}

	var s HistogramStats
	for i := 240; i < HistogramBins; i++ {
		s.Highlights += uint64(h.Brightness[i])
	}
	for i := 0; i <= 15; i++ {
		s.Shadows += uint64(h.Brightness[i])
	}

	s.Mean = h.mean(total)
	s.Variance = h.variance(total, s.Mean)
	s.DynamicRange = h.dynamicRange(total, 0.95)
	return s
}

func (h *Histogram) mean(total uint64) float64 {
	var sum float64
	for i, c := range h.Brightness {
		sum += float64(i) / 255 * float64(c)
	}
	return sum / float64(total)
}

func (h *Histogram) variance(total uint64, mean float64) float64 {
	var sum float64
	for i, c := range h.Brightness {
		d := float64(i)/255 - mean
		sum += d * d * float64(c)
	}
	return sum / float64(total)
}

// dynamicRange returns hi-lo where lo and hi are the first bins from each
// end at which the running count exceeds total*(1-confidence).
func (h *Histogram) dynamicRange(total uint64, confidence float64) int {
	threshold := max(uint64(1), uint64(float64(total)*(1-confidence)))

	lo, hi := 0, HistogramBins-1
	var run uint64
	for i := range HistogramBins {
		run += uint64(h.Brightness[i])
		if run > threshold {
			lo = i
			break
		}
	}
	run = 0
	for i := HistogramBins - 1; i >= 0; i-- {
		run += uint64(h.Brightness[i])
		if run > threshold {
			hi = i
			break
		}
	}
	return hi - lo
}
