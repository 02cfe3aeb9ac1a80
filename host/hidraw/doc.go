// Package hidraw reads boot mouse reports from a Linux hidraw device node.
//
// A [Source] implements [host.ReportRequester] and feeds a [host.Driver] the
// same way the USB host stack does, so a bridge can run against a real mouse
// on a development machine. The kernel keeps ownership of the device, which
// must already be in boot protocol or use the boot report layout.
package hidraw
