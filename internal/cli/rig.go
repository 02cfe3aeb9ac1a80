package cli

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ardnew/nibblemouse/bridge"
	"github.com/ardnew/nibblemouse/host"
	"github.com/ardnew/nibblemouse/pkg"
	"github.com/ardnew/nibblemouse/port"
	"github.com/ardnew/nibblemouse/port/hal/sim"
)

// rig is a bridge wired to a simulated legacy port, a strobe clock and a
// monitor playing the legacy host.
type rig struct {
	port   *sim.Port
	bridge *bridge.Bridge
	mon    *monitor

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newRig(cfg bridge.Config, requester host.ReportRequester, out io.Writer, eol string) (*rig, error) {
	p := sim.NewFreeRunningPort(port.MaxButtons)
	b, err := bridge.New(cfg, bridge.Hardware{
		Data:    p.DataLines(),
		Buttons: p.ButtonLines(),
		Strobe:  p.Strobe,
		Guard:   p.Guard,
	}, requester)
	if err != nil {
		return nil, fmt.Errorf("create bridge: %w", err)
	}
	return &rig{
		port:   p,
		bridge: b,
		mon:    newMonitor(p, out, eol),
	}, nil
}

// start runs the foreground loop and the strobe clock until stop.
func (r *rig) start(ctx context.Context, halfPeriod time.Duration) error {
	if halfPeriod <= 0 {
		return fmt.Errorf("strobe half period %v: %w", halfPeriod, pkg.ErrInvalidParameter)
	}
	ctx, r.cancel = context.WithCancel(ctx)
	r.wg.Add(2)
	go func() {
		defer r.wg.Done()
		_ = r.bridge.Run(ctx)
	}()
	go func() {
		defer r.wg.Done()
		_ = r.port.Run(ctx, halfPeriod, r.mon.sample)
	}()
	pkg.LogDebug(pkg.ComponentSim, "strobe clock started", "halfPeriod", halfPeriod)
	return nil
}

// stop ends both loops and releases the port.
func (r *rig) stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
	if err := r.bridge.Close(); err != nil {
		pkg.LogWarn(pkg.ComponentSim, "close bridge", "error", err)
	}
	st := r.bridge.Stats()
	pkg.LogInfo(pkg.ComponentSim, "bridge stopped",
		"accepted", st.Accepted,
		"rejected", st.Rejected,
		"published", st.Published,
		"held", st.Held,
		"framesSampled", r.mon.Frames())
}

// settle returns how long the clock needs to shift out a few full frames.
func settle(halfPeriod time.Duration) time.Duration {
	return 4 * 2 * port.FrameLen * halfPeriod
}
