//go:build linux

package cli

import (
	"context"
	"errors"
	"io"

	"github.com/ardnew/nibblemouse/host/hidraw"
	"github.com/ardnew/nibblemouse/pkg"
)

// Run reads the hidraw mouse until it is unplugged or ctx is done.
func (c *HidrawCmd) Run(ctx context.Context, out io.Writer) error {
	var opts []hidraw.Option
	if c.ReportID {
		opts = append(opts, hidraw.WithReportID())
	}
	src, err := hidraw.Open(c.Device, opts...)
	if err != nil {
		return err
	}
	defer src.Close()

	r, err := newRig(c.Bridge, src, out, "\n")
	if err != nil {
		return err
	}
	src.SetDriver(r.bridge)

	if err := r.start(ctx, c.Strobe); err != nil {
		return err
	}
	defer r.stop()

	err = src.Run(ctx)
	if errors.Is(err, pkg.ErrNoDevice) {
		pkg.LogInfo(pkg.ComponentSim, "mouse removed", "device", c.Device)
		return nil
	}
	return ignoreDone(err)
}
