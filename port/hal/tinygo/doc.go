//go:build tinygo

// Package tinygo implements the legacy port HAL on TinyGo GPIOs.
//
// Data and button pins emulate open-drain outputs by switching between a low
// output and a floating input. The level shifter between the controller and
// the 5 V mouse port supplies the pull-up. The strobe pin interrupt is
// configured for both edges, and [Guard] masks interrupts around frame
// publication.
//
// A Raspberry Pi Pico wiring might be:
//
//	pins := tinygo.Pins{
//	    Data:    [4]machine.Pin{machine.GP2, machine.GP3, machine.GP4, machine.GP5},
//	    Buttons: []machine.Pin{machine.GP6, machine.GP7},
//	    Strobe:  machine.GP8,
//	}
package tinygo
