package compute

import (
	"encoding/binary"
	"math"
)

// Histogram buffer layout.
const (
	HistogramBins  = 256
	HistogramSlots = 4 * HistogramBins

	OffsetRed        = 0
	OffsetGreen      = HistogramBins
	OffsetBlue       = 2 * HistogramBins
	OffsetBrightness = 3 * HistogramBins
)

// Luminance weights.
const (
	LumaR = 0.299
	LumaG = 0.587
	LumaB = 0.114
)

// Exposure kernel constants.
const (
	SigmoidSlope    = 8.0
	SigmoidMidpoint = 0.5
	ClampBase       = 45.0 / 255.0
	LocalScale      = 0.2
)

// Bins is the raw 1024-slot counter buffer filled by the histogram kernel.
type Bins [HistogramSlots]uint32

// Channel returns the 256 counters starting at offset.
func (b *Bins) Channel(offset int) [HistogramBins]uint32 {
	var out [HistogramBins]uint32
	copy(out[:], b[offset:offset+HistogramBins])
	return out
}

// Add accumulates other into b.
func (b *Bins) Add(other *Bins) {
	for i := range b {
		b[i] += other[i]
	}
}

// BinsFromBytes decodes a little-endian readback of the counter buffer.
func BinsFromBytes(data []byte) Bins {
	var b Bins
	for i := range b {
		b[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return b
}

// BinIndex quantizes a normalized value to a histogram bin.
func BinIndex(v float32) int {
	i := int(math.Round(float64(v) * 255))
	return min(max(i, 0), HistogramBins-1)
}

// Luminance returns the weighted intensity of a normalized color.
func Luminance(r, g, b float32) float32 {
	return LumaR*r + LumaG*g + LumaB*b
}

// BrightnessBin returns round(0.299R+0.587G+0.114B) for 8-bit channels.
func BrightnessBin(r, g, b byte) int {
	l := LumaR*float64(r) + LumaG*float64(g) + LumaB*float64(b)
	return min(int(math.Round(l)), HistogramBins-1)
}

// CountPixel adds one RGBA8 pixel to b.
func (b *Bins) CountPixel(px []byte) {
	b[OffsetRed+int(px[0])]++
	b[OffsetGreen+int(px[1])]++
	b[OffsetBlue+int(px[2])]++
	b[OffsetBrightness+BrightnessBin(px[0], px[1], px[2])]++
}

// Uniforms are the per-pass exposure parameters.
type Uniforms struct {
	Strength       float32
	TargetExposure float32
	LocalAdjust    float32
	CDF            [HistogramBins]float32
}

// UniformsSize is the byte size of the encoded parameter block.
const UniformsSize = 16 + HistogramBins*4

// Bytes encodes u in the layout of the shader's Params struct.
func (u *Uniforms) Bytes() []byte {
	buf := make([]byte, UniformsSize)
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(u.Strength))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(u.TargetExposure))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(u.LocalAdjust))
	for i, v := range u.CDF {
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(v))
	}
	return buf
}

// Delta returns the brightness shift applied to a pixel of luminance l.
func (u *Uniforms) Delta(l float32) float32 {
	diff := float32(math.Abs(float64(l-0.5))) * 2
	base := u.CDF[BinIndex(l)]
	protection := float32(math.Sqrt(float64(diff)))
	goal := base*(1-protection) + l*protection

	sigmoid := float32(1 / (1 + math.Exp(-SigmoidSlope*float64(l-SigmoidMidpoint))))
	adjustment := 0.5 + sigmoid*0.5

	delta := u.Strength * (goal - l + u.TargetExposure) * adjustment * (1 + u.LocalAdjust*LocalScale)
	limit := float32(ClampBase) * (1 - diff*diff)
	return min(max(delta, -limit), limit)
}

// ExposePixel writes the corrected form of the RGBA8 pixel src into dst.
func (u *Uniforms) ExposePixel(dst, src []byte) {
	r := float32(src[0]) / 255
	g := float32(src[1]) / 255
	b := float32(src[2]) / 255
	delta := u.Delta(Luminance(r, g, b))

	dst[0] = unorm8(r + delta)
	dst[1] = unorm8(g + delta)
	dst[2] = unorm8(b + delta)
	dst[3] = src[3]
}

// unorm8 converts a normalized float to an 8-bit channel the way an
// rgba8unorm store does.
func unorm8(v float32) byte {
	v = min(max(v, 0), 1)
	return byte(math.Round(float64(v) * 255))
}
