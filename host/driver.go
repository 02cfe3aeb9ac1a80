package host

import "fmt"

// Instance identifies one HID interface of a mounted device.
type Instance struct {
	Address   uint8 // Device address
	Interface uint8 // Interface number
}

// String returns "address:interface".
func (i Instance) String() string {
	return fmt.Sprintf("%d:%d", i.Address, i.Interface)
}

// Driver receives mouse events from a report source.
//
// Report runs on the source's goroutine. data is only valid for the duration
// of the call.
type Driver interface {
	// Mount is called when a boot mouse interface becomes available.
	Mount(inst Instance)

	// Unmount is called when the device providing inst is gone.
	Unmount(inst Instance)

	// Report delivers one raw input report.
	Report(inst Instance, data []byte)
}

// ReportRequester arms the next report transfer for an instance.
//
// A source delivers at most one report per request. A driver that stops
// requesting stalls its instance.
type ReportRequester interface {
	// RequestReport reports whether inst is known and the request was queued.
	RequestReport(inst Instance) bool
}
