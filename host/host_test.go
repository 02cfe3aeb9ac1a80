package host

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/nibblemouse/host/hal"
	"github.com/ardnew/nibblemouse/host/hal/loopback"
	"github.com/ardnew/nibblemouse/pkg"
)

// =============================================================================
// Mock HAL for Testing
// =============================================================================

// mockHAL implements hal.HostHAL with configurable lifecycle failures.
type mockHAL struct {
	initErr  error
	startErr error
	stopErr  error

	connectCh    chan int
	disconnectCh chan int

	running bool
	mu      sync.Mutex
}

func newMockHAL() *mockHAL {
	return &mockHAL{
		connectCh:    make(chan int, 16),
		disconnectCh: make(chan int, 16),
	}
}

func (m *mockHAL) Init(ctx context.Context) error { return m.initErr }

func (m *mockHAL) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = true
	return m.startErr
}

func (m *mockHAL) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
	return m.stopErr
}

func (m *mockHAL) NumPorts() int                { return 1 }
func (m *mockHAL) PortSpeed(port int) hal.Speed { return hal.SpeedFull }
func (m *mockHAL) ResetPort(port int) error     { return nil }

// ControlTransfer answers every request with a stall, so enumeration fails.
func (m *mockHAL) ControlTransfer(ctx context.Context, addr hal.DeviceAddress, setup *hal.SetupPacket, data []byte) (int, error) {
	return 0, pkg.ErrStall
}

func (m *mockHAL) InterruptTransfer(ctx context.Context, addr hal.DeviceAddress, endpoint uint8, data []byte) (int, error) {
	return 0, pkg.ErrNoDevice
}

func (m *mockHAL) ClaimInterface(addr hal.DeviceAddress, iface uint8) error   { return nil }
func (m *mockHAL) ReleaseInterface(addr hal.DeviceAddress, iface uint8) error { return nil }

func (m *mockHAL) WaitForConnection(ctx context.Context) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case port := <-m.connectCh:
		return port, nil
	}
}

func (m *mockHAL) WaitForDisconnection(ctx context.Context) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case port := <-m.disconnectCh:
		return port, nil
	}
}

// =============================================================================
// Recording driver
// =============================================================================

type event struct {
	kind string
	inst Instance
	data []byte
}

// recorder is a Driver that logs events and optionally re-requests a report
// after every mount and report.
type recorder struct {
	host    *Host
	autoArm bool
	events  chan event
}

func newRecorder(h *Host, autoArm bool) *recorder {
	r := &recorder{host: h, autoArm: autoArm, events: make(chan event, 64)}
	h.SetDriver(r)
	return r
}

func (r *recorder) Mount(inst Instance) {
	r.events <- event{kind: "mount", inst: inst}
	if r.autoArm {
		r.host.RequestReport(inst)
	}
}

func (r *recorder) Unmount(inst Instance) {
	r.events <- event{kind: "unmount", inst: inst}
}

func (r *recorder) Report(inst Instance, data []byte) {
	buf := append([]byte(nil), data...)
	r.events <- event{kind: "report", inst: inst, data: buf}
	if r.autoArm {
		r.host.RequestReport(inst)
	}
}

func (r *recorder) next(t *testing.T) event {
	t.Helper()
	select {
	case e := <-r.events:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for driver event")
		return event{}
	}
}

func (r *recorder) none(t *testing.T, wait time.Duration) {
	t.Helper()
	select {
	case e := <-r.events:
		t.Fatalf("unexpected driver event %q on %s", e.kind, e.inst)
	case <-time.After(wait):
	}
}

// =============================================================================
// Lifecycle
// =============================================================================

func TestNew(t *testing.T) {
	h := New(newMockHAL())
	require.NotNil(t, h)
	assert.False(t, h.IsRunning())
	assert.Empty(t, h.Devices())
}

func TestStartWithoutDriver(t *testing.T) {
	h := New(newMockHAL())
	err := h.Start(context.Background())
	assert.ErrorIs(t, err, pkg.ErrInvalidParameter)
	assert.False(t, h.IsRunning())
}

func TestStartStop(t *testing.T) {
	m := newMockHAL()
	h := New(m)
	newRecorder(h, false)

	require.NoError(t, h.Start(context.Background()))
	assert.True(t, h.IsRunning())
	assert.ErrorIs(t, h.Start(context.Background()), pkg.ErrAlreadyRunning)

	require.NoError(t, h.Stop())
	assert.False(t, h.IsRunning())
	assert.NoError(t, h.Stop(), "second stop is a no-op")
}

func TestStartErrors(t *testing.T) {
	initErr := errors.New("init failed")
	m := newMockHAL()
	m.initErr = initErr
	h := New(m)
	newRecorder(h, false)
	assert.ErrorIs(t, h.Start(context.Background()), initErr)

	startErr := errors.New("start failed")
	m = newMockHAL()
	m.startErr = startErr
	h = New(m)
	newRecorder(h, false)
	assert.ErrorIs(t, h.Start(context.Background()), startErr)
}

func TestEnumerationFailureIgnored(t *testing.T) {
	m := newMockHAL()
	h := New(m)
	r := newRecorder(h, true)
	require.NoError(t, h.Start(context.Background()))
	defer h.Stop()

	m.connectCh <- 1
	r.none(t, 50*time.Millisecond)
	assert.Empty(t, h.Devices())
}

func TestRequestReportUnknownInstance(t *testing.T) {
	h := New(newMockHAL())
	assert.False(t, h.RequestReport(Instance{Address: 1}))
}

func TestAllocateAddress(t *testing.T) {
	h := New(newMockHAL())
	for want := uint8(1); want <= MaxDevices; want++ {
		addr := h.allocateAddress()
		assert.Equal(t, want, addr)
		h.devices[addr-1] = &Device{address: addr}
	}
	assert.Zero(t, h.allocateAddress(), "all addresses in use")

	h.devices[1] = nil
	assert.Equal(t, uint8(2), h.allocateAddress())
}

// =============================================================================
// Loopback mouse
// =============================================================================

func startLoopback(t *testing.T, autoArm bool) (*loopback.HAL, *Host, *recorder) {
	t.Helper()
	l := loopback.New()
	h := New(l)
	r := newRecorder(h, autoArm)
	require.NoError(t, h.Start(context.Background()))
	t.Cleanup(func() { _ = h.Stop() })
	return l, h, r
}

func TestMountEnumeratesBootMouse(t *testing.T) {
	l, h, r := startLoopback(t, true)
	l.Plug()

	e := r.next(t)
	assert.Equal(t, "mount", e.kind)
	assert.Equal(t, Instance{Address: 1, Interface: loopback.Interface}, e.inst)

	devs := h.Devices()
	require.Len(t, devs, 1)
	dev := devs[0]
	assert.Equal(t, loopback.VendorID, dev.VendorID())
	assert.Equal(t, loopback.ProductID, dev.ProductID())
	assert.Equal(t, loopback.Product, dev.Product())
	assert.Equal(t, hal.SpeedLow, dev.Speed())
	assert.Equal(t, loopback.Port, dev.Port())
	assert.Equal(t, []Instance{e.inst}, dev.Instances())

	assert.True(t, l.Configured())
	assert.Equal(t, HIDProtocolBoot, l.Protocol())
}

func TestReportsDelivered(t *testing.T) {
	l, _, r := startLoopback(t, true)
	l.Plug()
	mount := r.next(t)
	require.Equal(t, "mount", mount.kind)

	require.True(t, l.Move(0x01, 5, -3))
	require.True(t, l.Move(0x00, -1, 2))

	e := r.next(t)
	assert.Equal(t, "report", e.kind)
	assert.Equal(t, mount.inst, e.inst)
	assert.Equal(t, []byte{0x01, 5, 0xFD, 0}, e.data)

	e = r.next(t)
	assert.Equal(t, []byte{0x00, 0xFF, 2, 0}, e.data)
}

func TestReportsGatedByRequest(t *testing.T) {
	l, h, r := startLoopback(t, false)
	l.Plug()
	mount := r.next(t)
	require.Equal(t, "mount", mount.kind)

	require.True(t, l.Move(0, 1, 1))
	require.True(t, l.Move(0, 2, 2))
	r.none(t, 50*time.Millisecond)

	// Requests do not stack: two requests arm one transfer.
	require.True(t, h.RequestReport(mount.inst))
	h.RequestReport(mount.inst)
	e := r.next(t)
	assert.Equal(t, []byte{0, 1, 1, 0}, e.data)

	require.True(t, h.RequestReport(mount.inst))
	e = r.next(t)
	assert.Equal(t, []byte{0, 2, 2, 0}, e.data)
	r.none(t, 50*time.Millisecond)
}

func TestUnplugUnmounts(t *testing.T) {
	l, h, r := startLoopback(t, true)
	l.Plug()
	mount := r.next(t)
	require.Equal(t, "mount", mount.kind)

	l.Unplug()
	e := r.next(t)
	assert.Equal(t, "unmount", e.kind)
	assert.Equal(t, mount.inst, e.inst)
	assert.Empty(t, h.Devices())
	assert.False(t, h.RequestReport(mount.inst))

	// Replug gets a fresh mount.
	l.Plug()
	e = r.next(t)
	assert.Equal(t, "mount", e.kind)
}

func TestStopUnmounts(t *testing.T) {
	l := loopback.New()
	h := New(l)
	r := newRecorder(h, true)
	require.NoError(t, h.Start(context.Background()))

	l.Plug()
	require.Equal(t, "mount", r.next(t).kind)

	require.NoError(t, h.Stop())
	assert.Equal(t, "unmount", r.next(t).kind)
}
