//go:build linux

package hidraw

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/ardnew/nibblemouse/host"
	"github.com/ardnew/nibblemouse/pkg"
)

type event struct {
	kind string
	data []byte
}

// recorder requests a new report after mount and each report.
type recorder struct {
	src    *Source
	events chan event
}

func (r *recorder) Mount(inst host.Instance) {
	r.events <- event{kind: "mount"}
	r.src.RequestReport(inst)
}

func (r *recorder) Unmount(inst host.Instance) {
	r.events <- event{kind: "unmount"}
}

func (r *recorder) Report(inst host.Instance, data []byte) {
	r.events <- event{kind: "report", data: append([]byte(nil), data...)}
	r.src.RequestReport(inst)
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

// pipeSource returns a Source reading the read end of a pipe and the write
// end's descriptor.
func pipeSource(t *testing.T, opts ...Option) (*Source, int) {
	t.Helper()
	var fds [2]int
	require.NoError(t, unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC))
	src := NewSource(fds[0], Info{Vendor: 0x046d, Product: 0xc077}, opts...)
	t.Cleanup(func() { _ = src.Close() })
	return src, fds[1]
}

func run(t *testing.T, src *Source) (*recorder, chan error, context.CancelFunc) {
	t.Helper()
	r := &recorder{src: src, events: make(chan event, 16)}
	src.SetDriver(r)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- src.Run(ctx) }()
	return r, done, cancel
}

func TestRunDeliversReports(t *testing.T) {
	src, w := pipeSource(t)
	defer unix.Close(w)
	r, done, cancel := run(t, src)

	assert.Equal(t, "mount", r.next(t).kind)

	_, err := unix.Write(w, []byte{0x01, 0x05, 0xFB})
	require.NoError(t, err)
	e := r.next(t)
	assert.Equal(t, "report", e.kind)
	assert.Equal(t, []byte{0x01, 0x05, 0xFB}, e.data)

	cancel()
	assert.Equal(t, "unmount", r.next(t).kind)
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestRunReportID(t *testing.T) {
	src, w := pipeSource(t, WithReportID())
	defer unix.Close(w)
	r, _, cancel := run(t, src)
	defer cancel()

	require.Equal(t, "mount", r.next(t).kind)
	_, err := unix.Write(w, []byte{0x02, 0x00, 0x01, 0x02})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x01, 0x02}, r.next(t).data)
}

func TestRunHangupUnmounts(t *testing.T) {
	src, w := pipeSource(t)
	r, done, cancel := run(t, src)
	defer cancel()

	require.Equal(t, "mount", r.next(t).kind)
	require.NoError(t, unix.Close(w))

	assert.Equal(t, "unmount", r.next(t).kind)
	assert.ErrorIs(t, <-done, pkg.ErrNoDevice)
}

func TestRunWithoutDriver(t *testing.T) {
	src, w := pipeSource(t)
	defer unix.Close(w)
	assert.ErrorIs(t, src.Run(context.Background()), pkg.ErrInvalidParameter)
}

func TestRequestReportUnknownInstance(t *testing.T) {
	src, w := pipeSource(t)
	defer unix.Close(w)
	assert.True(t, src.RequestReport(Instance))
	assert.False(t, src.RequestReport(host.Instance{Address: 9}))
}

func TestInfoString(t *testing.T) {
	assert.Equal(t, "046d:c077", Info{Vendor: 0x046d, Product: 0xc077}.String())
}
