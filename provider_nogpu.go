//go:build nogpu

package exposure

import (
	"fmt"

	"github.com/gogpu/gpucontext"
)

func openProvider(gpucontext.DeviceProvider) (Device, error) {
	return nil, fmt.Errorf("%w: built with nogpu", ErrDeviceUnavailable)
}
