package exposure

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gogpu/exposure/internal/compute"
)

func newSoftwareEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(append([]Option{WithDeviceName(compute.DeviceSoftware)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func solidImage(t *testing.T, w, h int, r, g, b, a byte) RawImage {
	t.Helper()
	img, err := NewRawImage(w, h, nil)
	require.NoError(t, err)
	for i := 0; i < len(img.Data); i += Channels {
		img.Data[i], img.Data[i+1], img.Data[i+2], img.Data[i+3] = r, g, b, a
	}
	return img
}

func patternImage(t *testing.T, w, h int) RawImage {
	t.Helper()
	img, err := NewRawImage(w, h, nil)
	require.NoError(t, err)
	for y := range h {
		for x := range w {
			i := (y*w + x) * Channels
			img.Data[i] = byte(x * 255 / max(w-1, 1))
			img.Data[i+1] = byte(y * 255 / max(h-1, 1))
			img.Data[i+2] = byte((x ^ y) & 0xff)
			img.Data[i+3] = byte(255 - (x+y)%7)
		}
	}
	return img
}

// referenceHistogram counts img on the host.
func referenceHistogram(img RawImage) Histogram {
	var b compute.Bins
	for i := 0; i < len(img.Data); i += Channels {
		b.CountPixel(img.Data[i : i+Channels])
	}
	h, _ := histogramFromBins(&b, 0)
	return h
}

func averageLuminance(img RawImage) float64 {
	var sum float64
	for i := 0; i < len(img.Data); i += Channels {
		sum += float64(compute.Luminance(
			float32(img.Data[i])/255, float32(img.Data[i+1])/255, float32(img.Data[i+2])/255))
	}
	return sum / float64(img.Width*img.Height)
}

func TestComputeHistogram_CountsOriginalPixels(t *testing.T) {
	e := newSoftwareEngine(t)
	sizes := [][2]int{{1, 1}, {17, 5}, {32, 32}, {100, 3}, {16, 33}}
	for _, sz := range sizes {
		img := patternImage(t, sz[0], sz[1])

		h, err := e.ComputeHistogram(context.Background(), img)
		require.NoError(t, err, "%dx%d", sz[0], sz[1])
		require.EqualValues(t, sz[0]*sz[1], h.Total())
		require.Equal(t, referenceHistogram(img), h, "%dx%d", sz[0], sz[1])
	}
}

func TestComputeHistogram_UniformGray(t *testing.T) {
	e := newSoftwareEngine(t)
	img := solidImage(t, 40, 30, 128, 128, 128, 255)

	h, err := e.ComputeHistogram(context.Background(), img)
	require.NoError(t, err)
	for i, n := range h.Brightness {
		if i == 128 {
			require.EqualValues(t, 40*30, n)
		} else {
			require.Zero(t, n, "bin %d", i)
		}
	}
	require.InDelta(t, 0, EstimateToneParams(h).TargetExposure, 0.01)
}

func TestComputeHistogram_DoesNotMutateInput(t *testing.T) {
	e := newSoftwareEngine(t)
	img := patternImage(t, 23, 9)
	before := img.Clone()

	_, err := e.ComputeHistogram(context.Background(), img)
	require.NoError(t, err)
	require.Equal(t, before.Data, img.Data)
}

func TestComputeHistogram_InvalidImage(t *testing.T) {
	e := newSoftwareEngine(t)

	_, err := e.ComputeHistogram(context.Background(), RawImage{Width: 4, Height: 4, Data: make([]byte, 10)})
	require.ErrorIs(t, err, ErrInvalidImageData)

	_, err = e.ComputeHistogram(context.Background(), RawImage{})
	require.ErrorIs(t, err, ErrInvalidImageData)
}

func TestAutoExposureCorrect_StrengthZeroIsIdentity(t *testing.T) {
	e := newSoftwareEngine(t)
	img := patternImage(t, 64, 48)

	out, err := e.AutoExposureCorrect(context.Background(), img, 0)
	require.NoError(t, err)
	require.Equal(t, img.Data, out.Data)
}

func TestAutoExposureCorrect_OnePixel(t *testing.T) {
	e := newSoftwareEngine(t)
	img := solidImage(t, 1, 1, 10, 200, 30, 77)

	out, err := e.AutoExposureCorrect(context.Background(), img, 1)
	require.NoError(t, err)
	require.Equal(t, 1, out.Width)
	require.Equal(t, 1, out.Height)
	require.Len(t, out.Data, Channels)
	require.EqualValues(t, 77, out.Data[3])
}

func TestAutoExposureCorrect_PreservesAlphaAndInput(t *testing.T) {
	e := newSoftwareEngine(t)
	img := patternImage(t, 50, 20)
	before := img.Clone()

	out, err := e.AutoExposureCorrect(context.Background(), img, 2)
	require.NoError(t, err)
	require.Equal(t, before.Data, img.Data)
	for i := 3; i < len(out.Data); i += Channels {
		require.Equal(t, img.Data[i], out.Data[i])
	}
}

func TestAutoExposureCorrect_BrightensDarkImage(t *testing.T) {
	e := newSoftwareEngine(t)
	img, err := NewRawImage(64, 64, nil)
	require.NoError(t, err)
	for i := 0; i < len(img.Data); i += Channels {
		v := byte(20 + (i/Channels)%60)
		img.Data[i], img.Data[i+1], img.Data[i+2], img.Data[i+3] = v, v, v, 255
	}

	out, err := e.AutoExposureCorrect(context.Background(), img, 1)
	require.NoError(t, err)
	require.Greater(t, averageLuminance(out), averageLuminance(img))
}

func TestAutoExposureCorrect_DarkensBrightImage(t *testing.T) {
	e := newSoftwareEngine(t)
	img, err := NewRawImage(64, 64, nil)
	require.NoError(t, err)
	for i := 0; i < len(img.Data); i += Channels {
		v := byte(175 + (i/Channels)%60)
		img.Data[i], img.Data[i+1], img.Data[i+2], img.Data[i+3] = v, v, v, 255
	}

	out, err := e.AutoExposureCorrect(context.Background(), img, 1)
	require.NoError(t, err)
	require.Less(t, averageLuminance(out), averageLuminance(img))
}

func TestAutoExposureCorrect_StrengthClamped(t *testing.T) {
	e := newSoftwareEngine(t)
	img := patternImage(t, 40, 40)

	atMax, err := e.AutoExposureCorrect(context.Background(), img, 10)
	require.NoError(t, err)
	above, err := e.AutoExposureCorrect(context.Background(), img, 1000)
	require.NoError(t, err)
	require.Equal(t, atMax.Data, above.Data)

	negative, err := e.AutoExposureCorrect(context.Background(), img, -3)
	require.NoError(t, err)
	require.Equal(t, img.Data, negative.Data)
}

func TestAutoExposureCorrect_TiledMatchesUntiled(t *testing.T) {
	untiled := newSoftwareEngine(t)
	tiled := newSoftwareEngine(t, WithMaxTextureSize(128), WithOverlap(16), WithConcurrency(3))
	img := patternImage(t, 300, 200)

	want, err := untiled.AutoExposureCorrect(context.Background(), img, 1.5)
	require.NoError(t, err)
	got, err := tiled.AutoExposureCorrect(context.Background(), img, 1.5)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestAutoExposureCorrect_SolidLargeImageHasNoSeams(t *testing.T) {
	e := newSoftwareEngine(t)
	img := solidImage(t, 2100, 64, 70, 130, 200, 255)

	out, err := e.AutoExposureCorrect(context.Background(), img, 1)
	require.NoError(t, err)
	require.Equal(t, img.Width, out.Width)
	require.Equal(t, img.Height, out.Height)

	for i := 0; i < len(out.Data); i += Channels {
		for ch := range Channels {
			d := int(out.Data[i+ch]) - int(out.Data[ch])
			if d < -1 || d > 1 {
				t.Fatalf("pixel %d channel %d = %d, first pixel has %d", i/Channels, ch, out.Data[i+ch], out.Data[ch])
			}
		}
	}
}

func TestAutoExposureCorrect_BalancedCheckerboard(t *testing.T) {
	if testing.Short() {
		t.Skip("large image")
	}
	e := newSoftwareEngine(t)

	const w, h, q = 4096, 2048, 2048
	img, err := NewRawImage(w, h, nil)
	require.NoError(t, err)
	for y := range h {
		for x := range w {
			i := (y*w + x) * Channels
			var v byte
			if (x/q+y/q)%2 == 1 {
				v = 255
			}
			img.Data[i], img.Data[i+1], img.Data[i+2], img.Data[i+3] = v, v, v, 255
		}
	}

	out, err := e.AutoExposureCorrect(context.Background(), img, 1)
	require.NoError(t, err)
	require.InDelta(t, 0.5, averageLuminance(out), 0.01)
}

func TestAutoExposureCorrect_Canceled(t *testing.T) {
	e := newSoftwareEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.AutoExposureCorrect(ctx, patternImage(t, 8, 8), 1)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(WithDeviceName(compute.DeviceSoftware), WithMaxTextureSize(64), WithOverlap(64))
	require.ErrorIs(t, err, ErrInvalidOption)

	_, err = New(WithDeviceName(compute.DeviceSoftware), WithOverlap(-1))
	require.ErrorIs(t, err, ErrInvalidOption)

	_, err = New(WithDeviceName(compute.DeviceSoftware), WithConcurrency(-2))
	require.ErrorIs(t, err, ErrInvalidOption)
}

func TestNew_UnknownDevice(t *testing.T) {
	_, err := New(WithDeviceName("quantum"))
	require.ErrorIs(t, err, ErrDeviceUnavailable)
}

func TestEngine_Close(t *testing.T) {
	e, err := New(WithDeviceName(compute.DeviceSoftware))
	require.NoError(t, err)
	require.Equal(t, compute.DeviceSoftware, e.DeviceName())
	require.Equal(t, 2048, e.BlockSize())

	require.NoError(t, e.Close())
	require.NoError(t, e.Close())

	_, err = e.ComputeHistogram(context.Background(), solidImage(t, 2, 2, 0, 0, 0, 0))
	require.ErrorIs(t, err, ErrClosed)
	_, err = e.AutoExposureCorrect(context.Background(), solidImage(t, 2, 2, 0, 0, 0, 0), 1)
	require.ErrorIs(t, err, ErrClosed)
}

func TestDevices(t *testing.T) {
	names := Devices()
	require.Contains(t, names, compute.DeviceSoftware)
}

func TestPackageLevelFunctions(t *testing.T) {
	img := patternImage(t, 20, 20)

	h, err := ComputeHistogram(img)
	require.NoError(t, err)
	require.EqualValues(t, 400, h.Total())

	out, err := AutoExposureCorrect(img, 0)
	require.NoError(t, err)
	require.Equal(t, img.Width, out.Width)
	require.Equal(t, img.Height, out.Height)
}
