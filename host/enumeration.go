package host

import (
	"fmt"

	"github.com/ardnew/nibblemouse/host/hal"
	"github.com/ardnew/nibblemouse/pkg"
)

// enumerateDevice performs the USB enumeration sequence for a new device and
// configures it. Devices without a boot mouse interface fail with
// pkg.ErrNoMouse.
func (h *Host) enumerateDevice(port int) (*Device, error) {
	pkg.LogDebug(pkg.ComponentHost, "starting enumeration", "port", port)

	speed := h.hal.PortSpeed(port)
	if err := h.hal.ResetPort(port); err != nil {
		return nil, fmt.Errorf("reset port %d: %w", port, err)
	}

	dev := newDevice(port, speed)

	// Read the first 8 bytes to learn bMaxPacketSize0.
	var buf [MaxDescriptorSize]byte
	setup := hal.SetupPacket{
		RequestType: RequestTypeIn | RequestTypeStandard | RequestTypeDevice,
		Request:     RequestGetDescriptor,
		Value:       uint16(DescriptorTypeDevice) << 8,
		Length:      8,
	}
	n, err := h.hal.ControlTransfer(h.ctx, 0, &setup, buf[:8])
	if err != nil {
		return nil, fmt.Errorf("get device descriptor: %w", err)
	}
	if n < 8 {
		return nil, fmt.Errorf("short device descriptor (%d bytes): %w", n, pkg.ErrEnumerationFailed)
	}

	address := h.allocateAddress()
	if address == 0 {
		return nil, pkg.ErrNoAddress
	}

	setup = hal.SetupPacket{
		RequestType: RequestTypeOut | RequestTypeStandard | RequestTypeDevice,
		Request:     RequestSetAddress,
		Value:       uint16(address),
	}
	if _, err := h.hal.ControlTransfer(h.ctx, 0, &setup, nil); err != nil {
		return nil, fmt.Errorf("set address %d: %w", address, err)
	}
	dev.address = address
	pkg.LogDebug(pkg.ComponentHost, "assigned address", "address", address)

	setup = hal.SetupPacket{
		RequestType: RequestTypeIn | RequestTypeStandard | RequestTypeDevice,
		Request:     RequestGetDescriptor,
		Value:       uint16(DescriptorTypeDevice) << 8,
		Length:      DeviceDescriptorSize,
	}
	n, err = h.hal.ControlTransfer(h.ctx, hal.DeviceAddress(address), &setup, buf[:DeviceDescriptorSize])
	if err != nil {
		return nil, fmt.Errorf("get device descriptor: %w", err)
	}
	if err := dev.parseDeviceDescriptor(buf[:n]); err != nil {
		return nil, err
	}

	// Configuration header first, then the full tree.
	setup = hal.SetupPacket{
		RequestType: RequestTypeIn | RequestTypeStandard | RequestTypeDevice,
		Request:     RequestGetDescriptor,
		Value:       uint16(DescriptorTypeConfiguration) << 8,
		Length:      ConfigurationDescriptorSize,
	}
	n, err = h.hal.ControlTransfer(h.ctx, hal.DeviceAddress(address), &setup, buf[:ConfigurationDescriptorSize])
	if err != nil {
		return nil, fmt.Errorf("get configuration header: %w", err)
	}
	if n < ConfigurationDescriptorSize {
		return nil, fmt.Errorf("configuration header (%d bytes): %w", n, pkg.ErrDescriptorTooShort)
	}

	totalLength := uint16(buf[2]) | uint16(buf[3])<<8
	if totalLength > uint16(len(buf)) {
		totalLength = uint16(len(buf))
	}
	setup.Length = totalLength
	n, err = h.hal.ControlTransfer(h.ctx, hal.DeviceAddress(address), &setup, buf[:totalLength])
	if err != nil {
		return nil, fmt.Errorf("get configuration descriptor: %w", err)
	}
	if err := dev.parseConfiguration(buf[:n]); err != nil {
		return nil, err
	}

	if dev.productIndex != 0 {
		dev.product = h.readString(dev, dev.productIndex, buf[:])
	}

	setup = hal.SetupPacket{
		RequestType: RequestTypeOut | RequestTypeStandard | RequestTypeDevice,
		Request:     RequestSetConfiguration,
		Value:       uint16(dev.configValue),
	}
	if _, err := h.hal.ControlTransfer(h.ctx, hal.DeviceAddress(address), &setup, nil); err != nil {
		return nil, fmt.Errorf("set configuration %d: %w", dev.configValue, err)
	}

	pkg.LogDebug(pkg.ComponentHost, "device configured",
		"address", address,
		"vendor", dev.vendorID,
		"product", dev.productID,
		"mice", len(dev.mice))

	return dev, nil
}

// readString reads one string descriptor. Failures yield "".
func (h *Host) readString(dev *Device, index uint8, buf []byte) string {
	setup := hal.SetupPacket{
		RequestType: RequestTypeIn | RequestTypeStandard | RequestTypeDevice,
		Request:     RequestGetDescriptor,
		Value:       uint16(DescriptorTypeString)<<8 | uint16(index),
		Index:       LangIDUSEnglish,
		Length:      uint16(len(buf)),
	}
	n, err := h.hal.ControlTransfer(h.ctx, hal.DeviceAddress(dev.address), &setup, buf)
	if err != nil {
		pkg.LogDebug(pkg.ComponentHost, "string descriptor read failed", "index", index, "error", err)
		return ""
	}
	return decodeString(buf, n)
}

// setBootProtocol switches a mouse interface to the boot report format and
// disables idle repeats. Stalls are ignored.
func (h *Host) setBootProtocol(dev *Device, m mouseInterface) {
	setup := hal.SetupPacket{
		RequestType: RequestTypeOut | RequestTypeClass | RequestTypeInterface,
		Request:     HIDRequestSetProtocol,
		Value:       uint16(HIDProtocolBoot),
		Index:       uint16(m.number),
	}
	if _, err := h.hal.ControlTransfer(h.ctx, hal.DeviceAddress(dev.address), &setup, nil); err != nil {
		pkg.LogDebug(pkg.ComponentHost, "set protocol failed", "interface", m.number, "error", err)
	}

	setup.Request = HIDRequestSetIdle
	setup.Value = 0
	if _, err := h.hal.ControlTransfer(h.ctx, hal.DeviceAddress(dev.address), &setup, nil); err != nil {
		pkg.LogDebug(pkg.ComponentHost, "set idle failed", "interface", m.number, "error", err)
	}
}
