// Package host implements the USB host side of the bridge.
//
// A [Host] drives a [hal.HostHAL]: it waits for port connections, enumerates
// each device, and keeps those exposing an HID boot mouse interface
// (class 0x03, subclass 0x01, protocol 0x02). Every such interface becomes an
// [Instance] that is mounted with the [Driver].
//
// # Report flow
//
// Reports are pulled, not pushed. The host arms one interrupt IN transfer
// for an instance each time [Host.RequestReport] is called and passes the
// result to [Driver.Report]. Drivers request the first report from Mount and
// the next one after every report they receive:
//
//	h := host.New(loopback.New())
//	h.SetDriver(drv) // drv calls h.RequestReport from Mount and Report
//	if err := h.Start(ctx); err != nil {
//	    return err
//	}
//	defer h.Stop()
//
// Disconnection unmounts every instance of the device.
package host
