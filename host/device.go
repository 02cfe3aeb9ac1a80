package host

import (
	"fmt"
	"time"

	"github.com/ardnew/nibblemouse/host/hal"
	"github.com/ardnew/nibblemouse/pkg"
)

// mouseInterface is a boot mouse interface with its interrupt IN endpoint.
type mouseInterface struct {
	number    uint8
	endpoint  uint8
	maxPacket uint16
	interval  uint8
}

// pollInterval returns the delay between NAKed transfers on this interface.
func (m mouseInterface) pollInterval(speed hal.Speed) time.Duration {
	if m.interval == 0 {
		return DefaultPollInterval
	}
	if speed == hal.SpeedHigh {
		// bInterval is 2^(n-1) microframes at high speed.
		shift := m.interval - 1
		if shift > 15 {
			shift = 15
		}
		return time.Duration(1<<shift) * 125 * time.Microsecond
	}
	return time.Duration(m.interval) * time.Millisecond
}

// Device is an enumerated USB device exposing at least one boot mouse
// interface.
type Device struct {
	address uint8
	port    int
	speed   hal.Speed

	vendorID     uint16
	productID    uint16
	productIndex uint8
	product      string
	configValue  uint8

	mice []mouseInterface
}

// newDevice creates a device instance at the default address.
func newDevice(port int, speed hal.Speed) *Device {
	return &Device{port: port, speed: speed}
}

// Address returns the device address.
func (d *Device) Address() uint8 {
	return d.address
}

// Port returns the root hub port the device is connected to.
func (d *Device) Port() int {
	return d.port
}

// Speed returns the device speed.
func (d *Device) Speed() hal.Speed {
	return d.speed
}

// VendorID returns the device vendor ID.
func (d *Device) VendorID() uint16 {
	return d.vendorID
}

// ProductID returns the device product ID.
func (d *Device) ProductID() uint16 {
	return d.productID
}

// Product returns the product string, if the device provides one.
func (d *Device) Product() string {
	return d.product
}

// Instances returns one instance per boot mouse interface.
func (d *Device) Instances() []Instance {
	out := make([]Instance, len(d.mice))
	for i, m := range d.mice {
		out[i] = Instance{Address: d.address, Interface: m.number}
	}
	return out
}

// parseDeviceDescriptor extracts the fields the bridge uses.
func (d *Device) parseDeviceDescriptor(data []byte) error {
	if len(data) < DeviceDescriptorSize {
		return fmt.Errorf("device descriptor: %d bytes: %w", len(data), pkg.ErrDescriptorTooShort)
	}
	if data[1] != DescriptorTypeDevice {
		return fmt.Errorf("device descriptor type %#02x: %w", data[1], pkg.ErrEnumerationFailed)
	}
	d.vendorID = uint16(data[8]) | uint16(data[9])<<8
	d.productID = uint16(data[10]) | uint16(data[11])<<8
	d.productIndex = data[15]
	return nil
}

// parseConfiguration walks a full configuration descriptor and records every
// boot mouse interface that has an interrupt IN endpoint.
func (d *Device) parseConfiguration(data []byte) error {
	if len(data) < ConfigurationDescriptorSize {
		return fmt.Errorf("configuration descriptor: %d bytes: %w", len(data), pkg.ErrDescriptorTooShort)
	}
	d.configValue = data[5]
	d.mice = d.mice[:0]

	var current *mouseInterface
	for i := 0; i+1 < len(data); {
		length := int(data[i])
		if length < 2 || i+length > len(data) {
			break
		}

		switch data[i+1] {
		case DescriptorTypeInterface:
			current = nil
			if length >= 9 &&
				data[i+5] == ClassHID &&
				data[i+6] == SubclassBoot &&
				data[i+7] == ProtocolMouse &&
				len(d.mice) < MaxMiceInterfaces {
				d.mice = append(d.mice, mouseInterface{number: data[i+2]})
				current = &d.mice[len(d.mice)-1]
			}

		case DescriptorTypeEndpoint:
			if length >= 7 && current != nil && current.endpoint == 0 {
				addr := data[i+2]
				attr := data[i+3]
				if attr&endpointTypeMask == endpointInterrupt && addr&endpointDirectionIn != 0 {
					current.endpoint = addr
					current.maxPacket = uint16(data[i+4]) | uint16(data[i+5])<<8
					current.interval = data[i+6]
				}
			}
		}

		i += length
	}

	// Drop interfaces without a usable endpoint.
	n := 0
	for _, m := range d.mice {
		if m.endpoint != 0 {
			d.mice[n] = m
			n++
		}
	}
	d.mice = d.mice[:n]

	if len(d.mice) == 0 {
		return pkg.ErrNoMouse
	}
	return nil
}

// decodeString converts a UTF-16LE string descriptor to ASCII, dropping
// characters outside the printable range.
func decodeString(buf []byte, n int) string {
	if n < 2 {
		return ""
	}
	length := int(buf[0])
	if length > n {
		length = n
	}
	if length < 2 {
		return ""
	}
	result := make([]byte, 0, (length-2)/2)
	for i := 2; i < length-1; i += 2 {
		if buf[i+1] == 0 && buf[i] >= 0x20 && buf[i] < 0x7F {
			result = append(result, buf[i])
		}
	}
	return string(result)
}
