package compute

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gogpu/exposure/internal/image"
)

type fakeDevice struct {
	name    string
	initErr error
	closed  bool
}

func (d *fakeDevice) Name() string             { return d.name }
func (d *fakeDevice) Init() error              { return d.initErr }
func (d *fakeDevice) Close() error             { d.closed = true; return nil }
func (d *fakeDevice) MaxTextureDimension() int { return 0 }

func (d *fakeDevice) Histogram(context.Context, *image.Raster) (Bins, error) {
	return Bins{}, nil
}

func (d *fakeDevice) Expose(_ context.Context, src *image.Raster, _ *Uniforms) (*image.Raster, error) {
	return src.Clone(), nil
}

func withRegistry(t *testing.T, devices map[string]func() Device) {
	t.Helper()
	prev := registry
	registry = newRegistry()
	for name, f := range devices {
		registry.Register(name, f)
	}
	t.Cleanup(func() { registry = prev })
}

func TestAvailable_PriorityOrder(t *testing.T) {
	withRegistry(t, map[string]func() Device{
		"custom":       func() Device { return &fakeDevice{name: "custom"} },
		DeviceSoftware: func() Device { return &fakeDevice{name: DeviceSoftware} },
		DeviceWGPU:     func() Device { return &fakeDevice{name: DeviceWGPU} },
	})

	require.Equal(t, []string{DeviceWGPU, DeviceSoftware, "custom"}, Available())
	require.True(t, IsRegistered(DeviceWGPU))
	require.False(t, IsRegistered("missing"))
	require.Nil(t, Get("missing"))
}

func TestOpenBest_FallsBack(t *testing.T) {
	withRegistry(t, map[string]func() Device{
		DeviceWGPU: func() Device {
			return &fakeDevice{name: DeviceWGPU, initErr: fmt.Errorf("%w: no adapter", ErrDeviceUnavailable)}
		},
		DeviceSoftware: func() Device { return &fakeDevice{name: DeviceSoftware} },
	})

	d, err := OpenBest(slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	require.Equal(t, DeviceSoftware, d.Name())
}

func TestOpenBest_StopsOnOtherErrors(t *testing.T) {
	boom := errors.New("boom")
	withRegistry(t, map[string]func() Device{
		DeviceWGPU:     func() Device { return &fakeDevice{name: DeviceWGPU, initErr: boom} },
		DeviceSoftware: func() Device { return &fakeDevice{name: DeviceSoftware} },
	})

	_, err := OpenBest(slog.New(slog.DiscardHandler))
	require.ErrorIs(t, err, boom)
}

func TestOpenBest_NoneWork(t *testing.T) {
	withRegistry(t, map[string]func() Device{
		DeviceWGPU: func() Device {
			return &fakeDevice{name: DeviceWGPU, initErr: fmt.Errorf("%w: no adapter", ErrDeviceUnavailable)}
		},
	})

	_, err := OpenBest(slog.New(slog.DiscardHandler))
	require.ErrorIs(t, err, ErrDeviceUnavailable)

	withRegistry(t, nil)
	_, err = OpenBest(slog.New(slog.DiscardHandler))
	require.ErrorIs(t, err, ErrDeviceUnavailable)
}

func TestOpen_Unregistered(t *testing.T) {
	withRegistry(t, nil)
	_, err := Open("nope")
	require.ErrorIs(t, err, ErrDeviceUnavailable)
}
