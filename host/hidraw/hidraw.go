//go:build linux

package hidraw

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/ardnew/nibblemouse/host"
	"github.com/ardnew/nibblemouse/pkg"
)

// Instance is the single instance a Source mounts.
var Instance = host.Instance{Address: 1, Interface: 0}

// pollTimeout bounds how long Run waits in poll before rechecking ctx.
const pollTimeout = 100 // milliseconds

// maxReport is the largest report read from the device.
const maxReport = 64

// hidiocgrawinfo is HIDIOCGRAWINFO, _IOR('H', 0x03, struct hidraw_devinfo).
const hidiocgrawinfo = 0x80084803

// Info identifies the device behind a hidraw node.
type Info struct {
	Bus     uint32
	Vendor  uint16
	Product uint16
}

// String returns "vvvv:pppp".
func (i Info) String() string {
	return fmt.Sprintf("%04x:%04x", i.Vendor, i.Product)
}

// Option configures a Source.
type Option func(*Source)

// WithReportID strips a leading report ID byte from every report. Mice
// whose report descriptor declares report IDs need this.
func WithReportID() Option {
	return func(s *Source) { s.reportID = true }
}

// Source reads mouse reports from a Linux hidraw node and delivers them to a
// host.Driver, one report per request.
type Source struct {
	fd       int
	info     Info
	reportID bool

	mu      sync.Mutex
	driver  host.Driver
	running bool
	request chan struct{}
	buf     [maxReport]byte
}

// Open opens a hidraw node such as /dev/hidraw0.
func Open(path string, opts ...Option) (*Source, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := readInfo(fd)
	if err != nil {
		pkg.LogDebug(pkg.ComponentHost, "hidraw device info unavailable", "path", path, "error", err)
	}
	vendor, product := info.Names()
	pkg.LogInfo(pkg.ComponentHost, "hidraw opened",
		"path", path,
		"device", info.String(),
		"vendor", vendor,
		"product", product)
	return NewSource(fd, info, opts...), nil
}

// NewSource wraps an open, non-blocking file descriptor.
func NewSource(fd int, info Info, opts ...Option) *Source {
	s := &Source{
		fd:      fd,
		info:    info,
		request: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func readInfo(fd int) (Info, error) {
	var raw struct {
		bus     uint32
		vendor  int16
		product int16
	}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), hidiocgrawinfo, uintptr(unsafe.Pointer(&raw)))
	if errno != 0 {
		return Info{}, errno
	}
	return Info{Bus: raw.bus, Vendor: uint16(raw.vendor), Product: uint16(raw.product)}, nil
}

// Info returns the device identity read at open.
func (s *Source) Info() Info {
	return s.info
}

// SetDriver sets the receiver of mount, unmount and report events.
func (s *Source) SetDriver(d host.Driver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.driver = d
}

// RequestReport implements host.ReportRequester.
func (s *Source) RequestReport(inst host.Instance) bool {
	if inst != Instance {
		return false
	}
	select {
	case s.request <- struct{}{}:
	default:
	}
	return true
}

// Run mounts the device and delivers reports until ctx is done or the
// device goes away. The instance is unmounted before Run returns.
func (s *Source) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return pkg.ErrAlreadyRunning
	}
	if s.driver == nil {
		s.mu.Unlock()
		return fmt.Errorf("no driver: %w", pkg.ErrInvalidParameter)
	}
	s.running = true
	driver := s.driver
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	driver.Mount(Instance)
	defer driver.Unmount(Instance)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.request:
		}

		report, err := s.read(ctx)
		if err != nil {
			return err
		}
		pkg.LogTrace(pkg.ComponentHost, "report", "instance", Instance.String(), "length", len(report))
		driver.Report(Instance, report)
	}
}

// read waits for and returns one report.
func (s *Source) read(ctx context.Context) ([]byte, error) {
	fds := []unix.PollFd{{Fd: int32(s.fd), Events: unix.POLLIN}}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := unix.Poll(fds, pollTimeout)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return nil, fmt.Errorf("poll: %w", err)
		}
		if n == 0 {
			continue
		}
		if fds[0].Revents&unix.POLLIN == 0 && fds[0].Revents&(unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0 {
			return nil, pkg.ErrNoDevice
		}

		n, err = unix.Read(s.fd, s.buf[:])
		switch {
		case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.ENODEV):
			return nil, pkg.ErrNoDevice
		case err != nil:
			return nil, fmt.Errorf("read: %w", err)
		case n == 0:
			return nil, pkg.ErrNoDevice
		}

		report := s.buf[:n]
		if s.reportID && len(report) > 0 {
			report = report[1:]
		}
		return report, nil
	}
}

// Close closes the file descriptor.
func (s *Source) Close() error {
	return unix.Close(s.fd)
}
