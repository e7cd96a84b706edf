//go:build !nogpu

package exposure

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/exposure/internal/gpu"
)

func openProvider(p gpucontext.DeviceProvider) (Device, error) {
	d, err := gpu.NewFromProvider(p)
	if err != nil {
		return nil, err
	}
	return d, nil
}
