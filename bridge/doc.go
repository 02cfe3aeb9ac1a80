// Package bridge connects a USB boot mouse to the legacy nibble port.
//
// A [Bridge] is the [host.Driver] of a report source. Reports are scaled into
// the motion accumulator on the source goroutine; the foreground loop
// ([Bridge.Run]) drains it, clamps the sums, builds a frame and publishes it
// for the strobe-driven emitter.
//
// The bridge is Idle until a mouse mounts and Streaming while one is bound.
// Unmounting returns it to Idle with every line released.
//
//	b, err := bridge.New(bridge.DefaultConfig(), hw, h)
//	if err != nil {
//	    return err
//	}
//	defer b.Close()
//	h.SetDriver(b)
//	go b.Run(ctx)
package bridge
