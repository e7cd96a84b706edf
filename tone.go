package exposure

import (
	"math"

	"github.com/gogpu/exposure/internal/compute"
)

// ToneParams drive one exposure correction pass.
type ToneParams struct {
	// CDF is the cumulative brightness distribution normalized to [0, 1].
	CDF [HistogramBins]float32

	// TargetExposure is the global brightness shift toward mid-gray.
	TargetExposure float32

	// LocalAdjustFactor scales the per-pixel correction. High-contrast
	// images get a smaller factor.
	LocalAdjustFactor float32
}

// Tone estimation constants.
const (
	darkPeak         = 0.3
	brightPeak       = 0.7
	darkPeakGain     = 1.2
	brightPeakGain   = 0.8
	varianceGain     = 4.0
	varianceDamping  = 0.5
	skewThreshold    = 0.4
	skewDamping      = 0.8
	darkBinsEnd      = 63
	brightBinsStart  = 192
	maxStrength      = 10.0
	defaultLocalGain = 1.0
)

// EstimateToneParams derives the tone curve from the brightness histogram.
// It is a pure function of h. An empty histogram yields an identity CDF,
// zero target exposure and a local factor of 1.
func EstimateToneParams(h Histogram) ToneParams {
	var p ToneParams
	total := h.Total()
	if total == 0 {
		for i := range p.CDF {
			p.CDF[i] = float32(i) / 255
		}
		p.LocalAdjustFactor = defaultLocalGain
		return p
	}
	n := float64(total)

	var run uint64
	for i, c := range h.Brightness {
		run += uint64(c)
		p.CDF[i] = float32(float64(run) / n)
	}

	avg := h.mean(total)
	target := 0.5 - avg

	peak := 0
	for i, c := range h.Brightness {
		if c > h.Brightness[peak] {
			peak = i
		}
	}
	switch peakNorm := float64(peak) / 255; {
	case peakNorm < darkPeak:
		target *= darkPeakGain
	case peakNorm > brightPeak:
		target *= brightPeakGain
	}

	variance := h.variance(total, avg)
	local := 1 - math.Min(variance*varianceGain, 1)*varianceDamping

	var dark, bright uint64
	for i := 0; i <= darkBinsEnd; i++ {
		dark += uint64(h.Brightness[i])
	}
	for i := brightBinsStart; i < HistogramBins; i++ {
		bright += uint64(h.Brightness[i])
	}
	if float64(dark)/n > skewThreshold || float64(bright)/n > skewThreshold {
		local *= skewDamping
	}

	p.TargetExposure = float32(target)
	p.LocalAdjustFactor = float32(local)
	return p
}

// clampStrength limits strength to [0, 10]. NaN is treated as 0.
func clampStrength(strength float64) float64 {
	if math.IsNaN(strength) {
		return 0
	}
	return math.Min(math.Max(strength, 0), maxStrength)
}

func (p *ToneParams) uniforms(strength float64) *compute.Uniforms {
	return &compute.Uniforms{
		Strength:       float32(clampStrength(strength)),
		TargetExposure: p.TargetExposure,
		LocalAdjust:    p.LocalAdjustFactor,
		CDF:            p.CDF,
	}
}
