// Package hal defines the hardware abstraction layer for the USB host side
// of the bridge.
//
// The interface is the subset of a host controller the bridge needs to
// enumerate one HID boot mouse and poll its interrupt IN endpoint: port
// events, control transfers and interrupt transfers. Everything else in USB
// (bulk, isochronous, hubs) is left out.
//
// # Implementations
//
//   - [github.com/ardnew/nibblemouse/host/hal/loopback] presents a virtual
//     boot mouse in memory, for tests and the simulator.
//
// A microcontroller port implements [HostHAL] on its USB host peripheral.
// Implementations should reuse the buffers handed in by the stack and avoid
// allocating on the transfer path.
package hal
