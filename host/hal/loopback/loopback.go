package loopback

import (
	"context"
	"sync"
	"unicode/utf16"

	"github.com/ardnew/nibblemouse/host/hal"
	"github.com/ardnew/nibblemouse/pkg"
)

// Port is the root hub port the virtual mouse attaches to.
const Port = 1

// Descriptor identity of the virtual mouse.
const (
	VendorID  uint16 = 0x1209 // pid.codes
	ProductID uint16 = 0x0001
	Endpoint  uint8  = 0x81
	Interface uint8  = 0
)

// Strings returned for string descriptor indices 1 and 2.
const (
	Manufacturer = "nibblemouse"
	Product      = "Virtual Boot Mouse"
)

// ReportSize is the size of reports produced by Move.
const ReportSize = 4

// reportQueueDepth bounds reports queued while the host is not polling.
const reportQueueDepth = 64

// HAL is an in-memory host controller with one port and a virtual boot
// mouse that can be plugged, unplugged and moved.
type HAL struct {
	mu         sync.Mutex
	running    bool
	plugged    bool
	address    uint8
	configured bool
	protocol   uint8
	claimed    bool
	gone       chan struct{}

	connectCh    chan int
	disconnectCh chan int
	reports      chan []byte
}

// New creates a loopback HAL with the mouse unplugged.
func New() *HAL {
	return &HAL{
		protocol:     1,
		gone:         make(chan struct{}),
		connectCh:    make(chan int, 4),
		disconnectCh: make(chan int, 4),
		reports:      make(chan []byte, reportQueueDepth),
	}
}

// Plug attaches the virtual mouse.
func (l *HAL) Plug() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.plugged {
		return
	}
	l.plugged = true
	l.address = 0
	l.configured = false
	l.protocol = 1
	l.gone = make(chan struct{})
	l.drain()
	l.connectCh <- Port
}

// Unplug detaches the virtual mouse.
func (l *HAL) Unplug() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.plugged {
		return
	}
	l.plugged = false
	l.claimed = false
	close(l.gone)
	l.drain()
	l.disconnectCh <- Port
}

// Move queues a boot mouse report. It reports false when the mouse is
// unplugged or the queue is full.
func (l *HAL) Move(buttons uint8, dx, dy int8) bool {
	return l.Send([]byte{buttons, uint8(dx), uint8(dy), 0})
}

// Send queues a raw report of any length.
func (l *HAL) Send(report []byte) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.plugged {
		return false
	}
	buf := make([]byte, len(report))
	copy(buf, report)
	select {
	case l.reports <- buf:
		return true
	default:
		return false
	}
}

// Protocol returns the HID protocol selected by the host (0 boot, 1 report).
func (l *HAL) Protocol() uint8 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.protocol
}

// Configured reports whether the host selected a configuration.
func (l *HAL) Configured() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.configured
}

// Plugged reports whether the mouse is attached.
func (l *HAL) Plugged() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.plugged
}

func (l *HAL) drain() {
	for {
		select {
		case <-l.reports:
		default:
			return
		}
	}
}

// Init implements hal.HostHAL.
func (l *HAL) Init(ctx context.Context) error {
	return ctx.Err()
}

// Start implements hal.HostHAL.
func (l *HAL) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.running = true
	return nil
}

// Stop implements hal.HostHAL.
func (l *HAL) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.running = false
	return nil
}

// NumPorts implements hal.HostHAL.
func (l *HAL) NumPorts() int {
	return 1
}

// PortSpeed implements hal.HostHAL. The virtual mouse is low speed.
func (l *HAL) PortSpeed(port int) hal.Speed {
	l.mu.Lock()
	defer l.mu.Unlock()
	if port != Port || !l.running || !l.plugged {
		return hal.SpeedUnknown
	}
	return hal.SpeedLow
}

// ResetPort implements hal.HostHAL.
func (l *HAL) ResetPort(port int) error {
	if port != Port {
		return pkg.ErrInvalidParameter
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.plugged {
		return pkg.ErrNoDevice
	}
	l.address = 0
	l.configured = false
	return nil
}

// ControlTransfer implements hal.HostHAL by answering the standard and HID
// class requests a boot mouse supports. Anything else stalls.
func (l *HAL) ControlTransfer(ctx context.Context, addr hal.DeviceAddress, setup *hal.SetupPacket, data []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.plugged {
		return 0, pkg.ErrNoDevice
	}
	if uint8(addr) != l.address {
		return 0, pkg.ErrTimeout
	}

	switch {
	case setup.Is(0x80, 0x06):
		return l.getDescriptor(setup, data)

	case setup.Is(0x00, 0x05):
		l.address = uint8(setup.Value)
		return 0, nil

	case setup.Is(0x00, 0x09):
		l.configured = setup.Value == 1
		return 0, nil

	case setup.Is(0x21, 0x0B):
		if setup.Value > 1 {
			return 0, pkg.ErrStall
		}
		l.protocol = uint8(setup.Value)
		return 0, nil

	case setup.Is(0x21, 0x0A):
		return 0, nil
	}
	return 0, pkg.ErrStall
}

func (l *HAL) getDescriptor(setup *hal.SetupPacket, data []byte) (int, error) {
	var desc []byte
	switch setup.DescriptorType() {
	case 0x01:
		desc = deviceDescriptor[:]
	case 0x02:
		desc = configDescriptor[:]
	case 0x03:
		switch setup.DescriptorIndex() {
		case 0:
			desc = []byte{4, 0x03, 0x09, 0x04}
		case 1:
			desc = stringDescriptor(Manufacturer)
		case 2:
			desc = stringDescriptor(Product)
		default:
			return 0, pkg.ErrStall
		}
	default:
		return 0, pkg.ErrStall
	}
	n := len(desc)
	if int(setup.Length) < n {
		n = int(setup.Length)
	}
	return copy(data, desc[:n]), nil
}

// InterruptTransfer implements hal.HostHAL. It blocks until a report is
// queued, the mouse is unplugged or ctx is done.
func (l *HAL) InterruptTransfer(ctx context.Context, addr hal.DeviceAddress, endpoint uint8, data []byte) (int, error) {
	l.mu.Lock()
	if !l.plugged || !l.configured || uint8(addr) != l.address {
		l.mu.Unlock()
		return 0, pkg.ErrNoDevice
	}
	if endpoint != Endpoint {
		l.mu.Unlock()
		return 0, pkg.ErrStall
	}
	gone := l.gone
	l.mu.Unlock()

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-gone:
		return 0, pkg.ErrNoDevice
	case r := <-l.reports:
		return copy(data, r), nil
	}
}

// ClaimInterface implements hal.HostHAL.
func (l *HAL) ClaimInterface(addr hal.DeviceAddress, iface uint8) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.plugged || uint8(addr) != l.address {
		return pkg.ErrNoDevice
	}
	if iface != Interface {
		return pkg.ErrInvalidParameter
	}
	if l.claimed {
		return pkg.ErrAlreadyRunning
	}
	l.claimed = true
	return nil
}

// ReleaseInterface implements hal.HostHAL.
func (l *HAL) ReleaseInterface(addr hal.DeviceAddress, iface uint8) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.claimed = false
	return nil
}

// WaitForConnection implements hal.HostHAL.
func (l *HAL) WaitForConnection(ctx context.Context) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case port := <-l.connectCh:
		return port, nil
	}
}

// WaitForDisconnection implements hal.HostHAL.
func (l *HAL) WaitForDisconnection(ctx context.Context) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case port := <-l.disconnectCh:
		return port, nil
	}
}

var deviceDescriptor = [18]byte{
	18, 0x01, // bLength, DEVICE
	0x00, 0x02, // bcdUSB 2.00
	0x00, 0x00, 0x00, // class from interface
	8, // bMaxPacketSize0
	byte(VendorID & 0xFF), byte(VendorID >> 8),
	byte(ProductID & 0xFF), byte(ProductID >> 8),
	0x00, 0x01, // bcdDevice 1.00
	1, 2, 0, // iManufacturer, iProduct, iSerialNumber
	1, // bNumConfigurations
}

var configDescriptor = [34]byte{
	// Configuration
	9, 0x02, 34, 0, 1, 1, 0, 0xA0, 50,
	// Interface: HID boot mouse
	9, 0x04, Interface, 0, 1, 0x03, 0x01, 0x02, 0,
	// HID 1.11, one report descriptor of 50 bytes
	9, 0x21, 0x11, 0x01, 0, 1, 0x22, 50, 0,
	// Endpoint: interrupt IN, 4 bytes, 10 ms
	7, 0x05, Endpoint, 0x03, ReportSize, 0, 10,
}

func stringDescriptor(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 2+2*len(units))
	out[0] = byte(len(out))
	out[1] = 0x03
	for i, u := range units {
		out[2+2*i] = byte(u)
		out[3+2*i] = byte(u >> 8)
	}
	return out
}
