package hal

import "context"

// Speed is the bus speed of an attached device.
type Speed uint8

// Bus speeds.
const (
	SpeedUnknown Speed = iota
	SpeedLow           // 1.5 Mbit/s, most boot mice
	SpeedFull          // 12 Mbit/s
	SpeedHigh          // 480 Mbit/s
)

// String returns "low", "full", "high" or "unknown".
func (s Speed) String() string {
	switch s {
	case SpeedLow:
		return "low"
	case SpeedFull:
		return "full"
	case SpeedHigh:
		return "high"
	default:
		return "unknown"
	}
}

// SetupPacket is the 8-byte SETUP stage of a control transfer.
type SetupPacket struct {
	RequestType uint8  // bmRequestType
	Request     uint8  // bRequest
	Value       uint16 // wValue
	Index       uint16 // wIndex
	Length      uint16 // wLength
}

// Is reports whether the packet carries the given bmRequestType and bRequest.
func (s *SetupPacket) Is(requestType, request uint8) bool {
	return s.RequestType == requestType && s.Request == request
}

// DescriptorType returns the descriptor type of a GET_DESCRIPTOR request,
// the high byte of wValue.
func (s *SetupPacket) DescriptorType() uint8 {
	return uint8(s.Value >> 8)
}

// DescriptorIndex returns the descriptor index of a GET_DESCRIPTOR request,
// the low byte of wValue.
func (s *SetupPacket) DescriptorIndex() uint8 {
	return uint8(s.Value)
}

// DeviceAddress is a bus address. 0 is the default address used before
// SET_ADDRESS.
type DeviceAddress uint8

// HostHAL is the host controller surface the mouse host drives: port
// events, enumeration control transfers and interrupt IN polling.
//
// Port numbers start at 1. Methods may be called from several goroutines.
type HostHAL interface {
	// Init prepares the controller. ctx bounds the lifetime of any
	// goroutines the implementation starts.
	Init(ctx context.Context) error

	// Start powers the ports.
	Start() error

	// Stop removes port power. Pending waits return.
	Stop() error

	// NumPorts returns the number of root ports.
	NumPorts() int

	// PortSpeed returns the speed of the device on port, or SpeedUnknown.
	PortSpeed(port int) Speed

	// ResetPort resets port. The device answers at address 0 afterwards.
	ResetPort(port int) error

	// ControlTransfer runs a control transfer on the default pipe of addr.
	// IN data is written to data. It returns the data stage length.
	ControlTransfer(ctx context.Context, addr DeviceAddress, setup *SetupPacket, data []byte) (int, error)

	// InterruptTransfer reads one packet from an interrupt IN endpoint.
	// It returns pkg.ErrNAK when nothing is pending and pkg.ErrNoDevice
	// once the device is gone.
	InterruptTransfer(ctx context.Context, addr DeviceAddress, endpoint uint8, data []byte) (int, error)

	// ClaimInterface takes an interface for exclusive use.
	ClaimInterface(addr DeviceAddress, iface uint8) error

	// ReleaseInterface gives back a claimed interface.
	ReleaseInterface(addr DeviceAddress, iface uint8) error

	// WaitForConnection blocks until a device attaches and returns its port.
	WaitForConnection(ctx context.Context) (int, error)

	// WaitForDisconnection blocks until a device detaches and returns its
	// port.
	WaitForDisconnection(ctx context.Context) (int, error)
}
