package exposure

import (
	"errors"

	"github.com/gogpu/exposure/internal/compute"
)

var (
	// ErrInvalidImageData is returned when an image's dimensions are not
	// positive or its pixel buffer does not hold exactly Width*Height*4
	// bytes.
	ErrInvalidImageData = errors.New("exposure: invalid image data")

	// ErrInvalidOption is returned by New for inconsistent options.
	ErrInvalidOption = errors.New("exposure: invalid option")

	// ErrClosed is returned when an Engine is used after Close.
	ErrClosed = errors.New("exposure: engine closed")
)

// Errors reported by the compute devices.
var (
	// ErrDeviceUnavailable is returned when no usable compute device exists.
	ErrDeviceUnavailable = compute.ErrDeviceUnavailable

	// ErrGPUOperationFailed is returned when the device rejects a pipeline,
	// submission or buffer mapping.
	ErrGPUOperationFailed = compute.ErrGPUOperationFailed

	// ErrAssertion is returned when an internal invariant is broken.
	ErrAssertion = compute.ErrAssertion
)
