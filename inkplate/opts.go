// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package inkplate

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/analog"
)

// Layout maps the panel bus signals onto bits of the host GPIO bank.
type Layout struct {
	// Data holds the bank bit of the source data lines D0 to D7.
	Data [8]uint8
	// CL is the source clock, LE the source latch enable.
	CL uint8
	LE uint8
}

// DefaultLayout is the wiring of the Inkplate 6PLUS.
var DefaultLayout = Layout{
	Data: [8]uint8{4, 5, 18, 19, 23, 25, 26, 27},
	CL:   0,
	LE:   2,
}

func (l *Layout) validate() error {
	var seen uint32
	for _, b := range append(l.Data[:], l.CL, l.LE) {
		if b > 31 {
			return fmt.Errorf("inkplate: bank bit %d out of range", b)
		}
		if seen&(1<<b) != 0 {
			return fmt.Errorf("inkplate: bank bit %d used twice", b)
		}
		seen |= 1 << b
	}
	return nil
}

// Step repeats one whole-panel Drive.
type Step struct {
	Drive  Drive
	Repeat int
}

// Timings holds the pass counts and delays of the refresh waveforms.
type Timings struct {
	// Clean is run before every full refresh.
	Clean []Step
	// WhitePasses and BlackPasses are the 1 bit full refresh pass counts.
	WhitePasses int
	BlackPasses int
	// PartialPasses is the pass count of a differential refresh.
	PartialPasses int
	// Finish1Bit ends 1 bit refreshes, Finish3Bit ends 3 bit refreshes.
	Finish1Bit []Step
	Finish3Bit []Step

	// PassDelay is the idle time after every pass.
	PassDelay time.Duration
	// PowerGoodPoll and PowerGoodTimeout bound the wait for the rails.
	PowerGoodPoll    time.Duration
	PowerGoodTimeout time.Duration
	// VCOMSettle is the wait between VCOM and PWRUP going low.
	VCOMSettle time.Duration
}

// DefaultTimings are the ED060XH7 values.
var DefaultTimings = Timings{
	Clean: []Step{
		{White, 1},
		{Black, 15},
		{Discharge, 1},
		{White, 5},
		{Discharge, 1},
		{Black, 15},
	},
	WhitePasses:      4,
	BlackPasses:      1,
	PartialPasses:    3,
	Finish1Bit:       []Step{{Discharge, 2}, {Skip, 1}},
	Finish3Bit:       []Step{{Skip, 1}},
	PassDelay:        230 * time.Microsecond,
	PowerGoodPoll:    time.Millisecond,
	PowerGoodTimeout: 250 * time.Millisecond,
	VCOMSettle:       6 * time.Millisecond,
}

// withDefaults returns t with every zero field taken from DefaultTimings.
func (t Timings) withDefaults() Timings {
	def := DefaultTimings
	if t.Clean == nil {
		t.Clean = def.Clean
	}
	if t.WhitePasses == 0 {
		t.WhitePasses = def.WhitePasses
	}
	if t.BlackPasses == 0 {
		t.BlackPasses = def.BlackPasses
	}
	if t.PartialPasses == 0 {
		t.PartialPasses = def.PartialPasses
	}
	if t.Finish1Bit == nil {
		t.Finish1Bit = def.Finish1Bit
	}
	if t.Finish3Bit == nil {
		t.Finish3Bit = def.Finish3Bit
	}
	if t.PassDelay == 0 {
		t.PassDelay = def.PassDelay
	}
	if t.PowerGoodPoll <= 0 {
		t.PowerGoodPoll = def.PowerGoodPoll
	}
	if t.PowerGoodTimeout <= 0 {
		t.PowerGoodTimeout = def.PowerGoodTimeout
	}
	if t.VCOMSettle == 0 {
		t.VCOMSettle = def.VCOMSettle
	}
	return t
}

// Opts holds the board configuration.
type Opts struct {
	// Physical panel size. Width must be a multiple of 8.
	Width  int
	Height int

	// Initial framebuffer mode and rotation.
	Mode     Mode
	Rotation Rotation

	// Layout defaults to DefaultLayout. Its bank bits must be distinct and
	// below 32.
	Layout Layout
	// Zero fields of Timings take their DefaultTimings value.
	Timings Timings

	// I²C addresses of the internal (panel control) and external (user)
	// expanders.
	InternalAddr uint16
	ExternalAddr uint16

	// Clock defaults to SystemClock.
	Clock Clock
	// Logger defaults to a discarding logger.
	Logger logrus.FieldLogger
	// Battery is the ADC wired to the battery divider. Optional.
	Battery analog.PinADC
}

// Inkplate6Plus is the board configuration of the Inkplate 6PLUS.
var Inkplate6Plus = Opts{
	Width:        1024,
	Height:       758,
	Layout:       DefaultLayout,
	Timings:      DefaultTimings,
	InternalAddr: 0x20,
	ExternalAddr: 0x22,
}
