package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ardnew/nibblemouse/host"
	"github.com/ardnew/nibblemouse/host/hal/loopback"
	"github.com/ardnew/nibblemouse/pkg"
)

// Run plugs the virtual mouse into the host stack and drives it from a
// scenario, the keyboard, or not at all.
func (c *RunCmd) Run(ctx context.Context, out io.Writer) error {
	if c.Script != "" && c.Interactive {
		return fmt.Errorf("--script and --interactive are exclusive: %w", pkg.ErrInvalidParameter)
	}
	var scenario *Scenario
	if c.Script != "" {
		s, err := LoadScenario(c.Script)
		if err != nil {
			return err
		}
		scenario = s
	}

	if c.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Duration)
		defer cancel()
	}

	eol := "\n"
	if c.Interactive {
		eol = "\r\n"
	}

	mouse := loopback.New()
	h := host.New(mouse)
	r, err := newRig(c.Bridge, h, out, eol)
	if err != nil {
		return err
	}
	h.SetDriver(r.bridge)

	if err := h.Start(ctx); err != nil {
		return fmt.Errorf("start host: %w", err)
	}
	defer func() {
		if err := h.Stop(); err != nil {
			pkg.LogWarn(pkg.ComponentSim, "stop host", "error", err)
		}
	}()

	if err := r.start(ctx, c.Strobe); err != nil {
		return err
	}
	defer r.stop()

	mouse.Plug()
	defer mouse.Unplug()

	switch {
	case scenario != nil:
		err = scenario.Play(ctx, mouse)
		if err == nil {
			if c.Duration > 0 {
				<-ctx.Done()
			} else {
				err = wait(ctx, settle(c.Strobe))
			}
		}
	case c.Interactive:
		err = interactive(ctx, mouse, out)
	default:
		<-ctx.Done()
	}
	return ignoreDone(err)
}

// ignoreDone maps context cancellation and expiry to a clean exit.
func ignoreDone(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
