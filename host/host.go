package host

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ardnew/nibblemouse/host/hal"
	"github.com/ardnew/nibblemouse/pkg"
)

// Host manages the USB host controller, enumerates boot mice and polls their
// reports on behalf of a Driver.
type Host struct {
	hal    hal.HostHAL
	driver Driver

	// Connected devices (indexed by address - 1)
	devices     [MaxDevices]*Device
	deviceCount int
	nextAddress uint8

	// Report pipes of mounted instances
	pipes map[Instance]*pipe

	running bool
	mutex   sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// pipe polls one interrupt IN endpoint, one transfer per request.
type pipe struct {
	inst     Instance
	endpoint uint8
	interval time.Duration
	buf      []byte
	request  chan struct{}
	cancel   context.CancelFunc
}

// New creates a new USB host.
func New(h hal.HostHAL) *Host {
	return &Host{
		hal:         h,
		nextAddress: 1,
		pipes:       make(map[Instance]*pipe),
	}
}

// SetDriver sets the receiver of mount, unmount and report events.
// It must be called before Start.
func (h *Host) SetDriver(d Driver) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.driver = d
}

// Start starts the host controller and device monitoring.
func (h *Host) Start(ctx context.Context) error {
	h.mutex.Lock()
	if h.running {
		h.mutex.Unlock()
		return pkg.ErrAlreadyRunning
	}
	if h.driver == nil {
		h.mutex.Unlock()
		return fmt.Errorf("no driver: %w", pkg.ErrInvalidParameter)
	}
	h.ctx, h.cancel = context.WithCancel(ctx)
	h.mutex.Unlock()

	if err := h.hal.Init(h.ctx); err != nil {
		return fmt.Errorf("init host controller: %w", err)
	}
	if err := h.hal.Start(); err != nil {
		return fmt.Errorf("start host controller: %w", err)
	}

	h.mutex.Lock()
	h.running = true
	h.mutex.Unlock()

	pkg.LogInfo(pkg.ComponentHost, "host started", "ports", h.hal.NumPorts())

	h.wg.Add(2)
	go h.monitorDevices()
	go h.monitorDisconnections()

	return nil
}

// Stop stops polling, unmounts every instance and stops the controller.
func (h *Host) Stop() error {
	h.mutex.Lock()
	if !h.running {
		h.mutex.Unlock()
		return nil
	}
	h.running = false
	h.cancel()
	h.mutex.Unlock()

	h.wg.Wait()

	for i := 0; i < MaxDevices; i++ {
		h.mutex.RLock()
		dev := h.devices[i]
		h.mutex.RUnlock()
		if dev != nil {
			h.removeDevice(dev)
		}
	}

	if err := h.hal.Stop(); err != nil {
		return fmt.Errorf("stop host controller: %w", err)
	}

	pkg.LogInfo(pkg.ComponentHost, "host stopped")
	return nil
}

// IsRunning returns true if the host is running.
func (h *Host) IsRunning() bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.running
}

// Devices returns all connected devices.
func (h *Host) Devices() []*Device {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	result := make([]*Device, 0, h.deviceCount)
	for i := 0; i < MaxDevices; i++ {
		if h.devices[i] != nil {
			result = append(result, h.devices[i])
		}
	}
	return result
}

// RequestReport implements ReportRequester. Requests do not stack: at most
// one transfer is armed per instance.
func (h *Host) RequestReport(inst Instance) bool {
	h.mutex.RLock()
	p := h.pipes[inst]
	h.mutex.RUnlock()
	if p == nil {
		return false
	}
	select {
	case p.request <- struct{}{}:
	default:
	}
	return true
}

// monitorDevices waits for connections, enumerates each device and mounts
// its boot mouse interfaces.
func (h *Host) monitorDevices() {
	defer h.wg.Done()
	for {
		port, err := h.hal.WaitForConnection(h.ctx)
		if err != nil {
			if h.ctx.Err() != nil {
				return
			}
			pkg.LogWarn(pkg.ComponentHost, "error waiting for connection", "error", err)
			continue
		}

		pkg.LogInfo(pkg.ComponentHost, "device connected", "port", port)

		dev, err := h.enumerateDevice(port)
		if err != nil {
			if errors.Is(err, pkg.ErrNoMouse) {
				pkg.LogInfo(pkg.ComponentHost, "ignoring device", "port", port, "error", err)
			} else {
				pkg.LogWarn(pkg.ComponentHost, "enumeration failed", "port", port, "error", err)
			}
			continue
		}

		h.addDevice(dev)
	}
}

// monitorDisconnections unmounts devices as their ports disconnect.
func (h *Host) monitorDisconnections() {
	defer h.wg.Done()
	for {
		port, err := h.hal.WaitForDisconnection(h.ctx)
		if err != nil {
			if h.ctx.Err() != nil {
				return
			}
			pkg.LogWarn(pkg.ComponentHost, "error waiting for disconnection", "error", err)
			continue
		}

		pkg.LogInfo(pkg.ComponentHost, "device disconnected", "port", port)

		if dev := h.deviceOnPort(port); dev != nil {
			h.removeDevice(dev)
		}
	}
}

// addDevice registers dev, starts one pipe per mouse interface and mounts
// it with the driver.
func (h *Host) addDevice(dev *Device) {
	h.mutex.Lock()
	h.devices[dev.address-1] = dev
	h.deviceCount++
	driver := h.driver
	h.mutex.Unlock()

	pkg.LogInfo(pkg.ComponentHost, "mouse enumerated",
		"address", dev.address,
		"vendor", dev.vendorID,
		"product", dev.productID,
		"name", dev.product,
		"speed", dev.speed.String())

	for _, m := range dev.mice {
		if err := h.hal.ClaimInterface(hal.DeviceAddress(dev.address), m.number); err != nil {
			pkg.LogWarn(pkg.ComponentHost, "failed to claim interface",
				"address", dev.address,
				"interface", m.number,
				"error", err)
			continue
		}
		h.setBootProtocol(dev, m)

		inst := Instance{Address: dev.address, Interface: m.number}
		size := int(m.maxPacket)
		if size < 8 {
			size = 8
		}
		ctx, cancel := context.WithCancel(h.ctx)
		p := &pipe{
			inst:     inst,
			endpoint: m.endpoint,
			interval: m.pollInterval(dev.speed),
			buf:      make([]byte, size),
			request:  make(chan struct{}, 1),
			cancel:   cancel,
		}

		h.mutex.Lock()
		h.pipes[inst] = p
		h.mutex.Unlock()

		h.wg.Add(1)
		go h.readReports(ctx, p)

		driver.Mount(inst)
	}
}

// removeDevice stops the pipes of dev, unmounts its instances and frees its
// address.
func (h *Host) removeDevice(dev *Device) {
	h.mutex.Lock()
	if h.devices[dev.address-1] != dev {
		h.mutex.Unlock()
		return
	}
	h.devices[dev.address-1] = nil
	h.deviceCount--
	var removed []*pipe
	for inst, p := range h.pipes {
		if inst.Address == dev.address {
			p.cancel()
			removed = append(removed, p)
			delete(h.pipes, inst)
		}
	}
	driver := h.driver
	h.mutex.Unlock()

	for _, p := range removed {
		_ = h.hal.ReleaseInterface(hal.DeviceAddress(dev.address), p.inst.Interface)
		driver.Unmount(p.inst)
	}
}

// deviceOnPort returns the device on a root hub port, if any.
func (h *Host) deviceOnPort(port int) *Device {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	for _, dev := range h.devices {
		if dev != nil && dev.port == port {
			return dev
		}
	}
	return nil
}

// allocateAddress allocates a new device address, or 0 if none is free.
func (h *Host) allocateAddress() uint8 {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for i := 0; i < MaxDevices; i++ {
		addr := h.nextAddress
		h.nextAddress++
		if h.nextAddress > MaxDevices {
			h.nextAddress = 1
		}

		if h.devices[addr-1] == nil {
			return addr
		}
	}
	return 0
}

// readReports issues one interrupt transfer per request and hands the
// result to the driver. NAKs are retried at the endpoint interval.
func (h *Host) readReports(ctx context.Context, p *pipe) {
	defer h.wg.Done()

	h.mutex.RLock()
	driver := h.driver
	h.mutex.RUnlock()

	addr := hal.DeviceAddress(p.inst.Address)
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.request:
		}

		for {
			n, err := h.hal.InterruptTransfer(ctx, addr, p.endpoint, p.buf)
			if err == nil {
				pkg.LogTrace(pkg.ComponentHost, "report", "instance", p.inst.String(), "length", n)
				driver.Report(p.inst, p.buf[:n])
				break
			}
			if ctx.Err() != nil || errors.Is(err, pkg.ErrNoDevice) {
				return
			}
			if !errors.Is(err, pkg.ErrNAK) {
				pkg.LogWarn(pkg.ComponentHost, "report transfer failed",
					"instance", p.inst.String(),
					"error", err)
			}
			if !sleep(ctx, p.interval) {
				return
			}
		}
	}
}

// sleep waits for d or until ctx is done. It reports whether d elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
