// Package hal defines the hardware capabilities the legacy mouse port engine
// needs: open-drain data and button lines, the host-driven strobe input and a
// guard that briefly masks strobe delivery.
//
// Platform packages implement these interfaces:
//
//   - [github.com/ardnew/nibblemouse/port/hal/sim] is a software double that
//     records line operations and lets tests or the simulator clock the strobe.
//   - [github.com/ardnew/nibblemouse/port/hal/tinygo] drives machine.Pin GPIOs
//     and masks interrupts with runtime/interrupt.
//
// # Open-drain emulation
//
// A line is never driven high. A 0 bit drives the pin low as an output; a 1
// bit turns the pin into a floating input so the pull-up on the level shifter
// raises it. This keeps a 3.3 V controller safe on a 5 V bus.
package hal
