package pkg

import "errors"

// USB transfer errors.
var (
	// ErrStall indicates an endpoint stall condition.
	ErrStall = errors.New("endpoint stalled")

	// ErrNAK indicates a NAK response (no report available yet).
	ErrNAK = errors.New("NAK received")

	// ErrTimeout indicates a transfer timeout.
	ErrTimeout = errors.New("transfer timeout")

	// ErrNoDevice indicates the device is not present.
	ErrNoDevice = errors.New("device not present")
)

// Enumeration and report errors.
var (
	// ErrEnumerationFailed indicates a device could not be enumerated.
	ErrEnumerationFailed = errors.New("enumeration failed")

	// ErrNoAddress indicates all device addresses are in use.
	ErrNoAddress = errors.New("no address available")

	// ErrNoMouse indicates a device exposes no HID boot mouse interface.
	ErrNoMouse = errors.New("no boot mouse interface")

	// ErrDescriptorTooShort indicates the descriptor data is too short.
	ErrDescriptorTooShort = errors.New("descriptor too short")

	// ErrReportTooShort indicates a mouse report shorter than 3 bytes.
	ErrReportTooShort = errors.New("report too short")
)

// Lifecycle and configuration errors.
var (
	// ErrAlreadyRunning indicates the component is already running.
	ErrAlreadyRunning = errors.New("already running")

	// ErrInvalidParameter indicates an invalid parameter was provided.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNotSupported indicates an unsupported operation or feature.
	ErrNotSupported = errors.New("not supported")
)
