// Package loopback provides an in-memory USB host controller with a virtual
// HID boot mouse attached to its single port.
//
// The mouse answers enumeration with fixed descriptors, accepts the boot
// protocol and idle requests, and returns queued reports from its interrupt
// IN endpoint. Tests and the simulator use it to run the full host stack
// without hardware:
//
//	l := loopback.New()
//	h := host.New(l)
//	// ... start host and driver ...
//	l.Plug()
//	l.Move(0x01, 10, -3)
//	l.Unplug()
package loopback
