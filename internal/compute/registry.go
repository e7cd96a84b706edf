package compute

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/gogpu/gpucontext"
)

// devicePriority is the order devices are tried in. The wgpu device is
// preferred; the software device is the fallback.
var devicePriority = []string{DeviceWGPU, DeviceSoftware}

var registry = newRegistry()

func newRegistry() *gpucontext.Registry[Device] {
	return gpucontext.NewRegistry[Device](gpucontext.WithPriority(devicePriority...))
}

// Register registers a device factory under name. This is typically called
// from init() in device packages. An existing factory is replaced.
func Register(name string, factory func() Device) {
	registry.Register(name, factory)
}

// Unregister removes a device factory. Useful for tests.
func Unregister(name string) {
	registry.Unregister(name)
}

// IsRegistered reports whether a factory is registered under name.
func IsRegistered(name string) bool {
	return registry.Has(name)
}

// Get returns a new, uninitialized device by name, or nil.
func Get(name string) Device {
	return registry.Get(name)
}

// Available returns the registered device names in priority order.
func Available() []string {
	names := registry.Available()
	slices.SortFunc(names, func(a, b string) int {
		return rank(a) - rank(b)
	})
	return names
}

func rank(name string) int {
	if i := slices.Index(devicePriority, name); i >= 0 {
		return i
	}
	return len(devicePriority)
}

// Open creates and initializes the named device.
func Open(name string) (Device, error) {
	d := Get(name)
	if d == nil {
		return nil, fmt.Errorf("%w: %q is not registered", ErrDeviceUnavailable, name)
	}
	if err := d.Init(); err != nil {
		return nil, err
	}
	return d, nil
}

// OpenBest initializes the highest-priority device that works on this
// machine, falling back down the priority list when a device reports
// ErrDeviceUnavailable. Any other error is returned immediately.
func OpenBest(log *slog.Logger) (Device, error) {
	names := Available()
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no devices registered", ErrDeviceUnavailable)
	}

	var errs []error
	for _, name := range names {
		d, err := Open(name)
		if err == nil {
			return d, nil
		}
		if !errors.Is(err, ErrDeviceUnavailable) {
			return nil, err
		}
		log.Warn("compute: device unavailable, trying next", "device", name, "err", err)
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}
