// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package inkplate

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/GermanBionicSystems/inkplate/mcp23017"
	"github.com/GermanBionicSystems/inkplate/tps65186"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Internal expander lines.
const (
	pinOE          = 0
	pinGMOD        = 1
	pinSPV         = 2
	pinWakeup      = 3
	pinPwrup       = 4
	pinVCOM        = 5
	pinGPIO0Enable = 8
	pinBattery     = 9
	pinPad0        = 10
)

// Touchpads is the number of capacitive pads on the front of the board.
const Touchpads = 3

// ErrNoBattery is returned by Battery when no ADC was configured.
var ErrNoBattery = errors.New("inkplate: no battery ADC configured")

// Dev is a handle to the Inkplate panel.
//
// It implements display.Drawer and draw.Image. Drawing only changes the
// framebuffer; Display and PartialUpdate push it to the panel.
type Dev struct {
	mu sync.Mutex

	width, height int
	rotation      Rotation
	timings       Timings

	mono *monoFrame
	gray *grayFrame
	// fb is the active variant, mono or gray.
	fb frame
	// forceFull blocks partial refresh until the next full refresh.
	forceFull bool
	state     PowerState

	t *tables
	// scratch holds the partial refresh drive bytes, row holds the words of
	// the row being sent.
	scratch []byte
	row     []uint32

	bus      Bus
	ckv, sph gpio.PinOut
	// Internal expander lines.
	oe, gmod, spv, wakeup, pwrup, vcom gpio.PinOut

	internal *mcp23017.Dev
	external *mcp23017.Dev
	pmic     *tps65186.Dev

	clock   Clock
	log     logrus.FieldLogger
	battery analog.PinADC
}

// New initializes the board: both expanders, the PMIC power sequence and
// the framebuffers. data carries the source bus, ckv and sph are the gate
// clock and source start pulse host pins.
//
// A nil opts uses Inkplate6Plus.
func New(bus i2c.Bus, data Bus, ckv, sph gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Inkplate6Plus
	}
	o := *opts
	if o.Width <= 0 || o.Height <= 0 || o.Width%8 != 0 {
		return nil, fmt.Errorf("inkplate: invalid panel size %dx%d, width must be a positive multiple of 8", o.Width, o.Height)
	}
	if o.Mode > Mode3Bit {
		return nil, fmt.Errorf("inkplate: unknown mode %s", o.Mode)
	}
	if o.Layout == (Layout{}) {
		o.Layout = DefaultLayout
	}
	if err := o.Layout.validate(); err != nil {
		return nil, err
	}
	o.Timings = o.Timings.withDefaults()
	if o.InternalAddr == 0 {
		o.InternalAddr = Inkplate6Plus.InternalAddr
	}
	if o.ExternalAddr == 0 {
		o.ExternalAddr = Inkplate6Plus.ExternalAddr
	}
	if o.Clock == nil {
		o.Clock = SystemClock
	}
	if o.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.Logger = l
	}

	internal, err := mcp23017.New(bus, o.InternalAddr)
	if err != nil {
		return nil, fmt.Errorf("inkplate: internal expander: %w", err)
	}
	external, err := mcp23017.New(bus, o.ExternalAddr)
	if err != nil {
		_ = internal.Close()
		return nil, fmt.Errorf("inkplate: external expander: %w", err)
	}

	d := &Dev{
		width:     o.Width,
		height:    o.Height,
		rotation:  o.Rotation % 4,
		timings:   o.Timings,
		mono:      newMonoFrame(o.Width, o.Height),
		gray:      newGrayFrame(o.Width, o.Height),
		forceFull: true,
		t:         newTables(&o.Layout),
		scratch:   make([]byte, o.Width/4*o.Height),
		row:       make([]uint32, o.Width/4),
		bus:       data,
		ckv:       ckv,
		sph:       sph,
		oe:        internal.Pins[pinOE],
		gmod:      internal.Pins[pinGMOD],
		spv:       internal.Pins[pinSPV],
		wakeup:    internal.Pins[pinWakeup],
		pwrup:     internal.Pins[pinPwrup],
		vcom:      internal.Pins[pinVCOM],
		internal:  internal,
		external:  external,
		pmic:      tps65186.New(bus, tps65186.DefaultAddr),
		clock:     o.Clock,
		log:       o.Logger,
		battery:   o.Battery,
	}
	d.fb = d.mono
	if o.Mode == Mode3Bit {
		d.fb = d.gray
	}
	if err := d.init(); err != nil {
		_ = internal.Close()
		_ = external.Close()
		return nil, err
	}
	d.log.WithFields(logrus.Fields{"width": d.width, "height": d.height, "mode": d.fb.mode()}).Debug("inkplate: ready")
	return d, nil
}

// init puts every line in its idle state and programs the PMIC power
// sequence.
func (d *Dev) init() error {
	eh := errorHandler{}
	for _, p := range []gpio.PinOut{d.oe, d.gmod, d.spv, d.wakeup, d.pwrup, d.vcom} {
		eh.out(p, gpio.Low)
	}
	eh.out(d.internal.Pins[pinGPIO0Enable], gpio.High)
	eh.out(d.internal.Pins[pinBattery], gpio.Low)
	for i := 0; i < Touchpads; i++ {
		n := pinPad0 + i
		eh.do(func() error {
			return d.internal.PinMode(n, mcp23017.Input)
		})
	}
	for n := pinPad0 + Touchpads; n < mcp23017.PinCount; n++ {
		eh.out(d.internal.Pins[n], gpio.Low)
	}
	all := make([]int, mcp23017.PinCount)
	for i := range all {
		all[i] = i
	}
	eh.do(func() error {
		return d.external.Group(all...).Out(0, 0)
	})
	eh.out(d.ckv, gpio.Low)
	eh.out(d.sph, gpio.Low)
	d.bus.Clear(d.t.data | d.t.cl | d.t.le)

	eh.out(d.wakeup, gpio.High)
	d.clock.Sleep(time.Millisecond)
	eh.do(func() error {
		return d.pmic.SetSequence(tps65186.DefaultSequence)
	})
	d.clock.Sleep(time.Millisecond)
	eh.out(d.wakeup, gpio.Low)
	if eh.err != nil {
		return fmt.Errorf("inkplate: init: %w", eh.err)
	}
	return nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("inkplate.Dev{%s, %s, Width: %d, Height: %d}", d.internal, d.fb.mode(), d.width, d.height)
}

// Halt implements conn.Resource.
//
// It powers the panel down.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.powerOff()
}

// Close powers the panel down and unregisters the expander pins.
func (d *Dev) Close() error {
	err := d.Halt()
	if e := d.internal.Close(); err == nil {
		err = e
	}
	if e := d.external.Close(); err == nil {
		err = e
	}
	return err
}

// Expander returns the expander whose pins are free for user circuits.
func (d *Dev) Expander() *mcp23017.Dev {
	return d.external
}

// Temperature reads the panel thermistor through the PMIC. The PMIC is woken
// up for the read when the panel is off.
func (d *Dev) Temperature() (physic.Temperature, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	off := d.state == Off
	eh := errorHandler{}
	if off {
		eh.out(d.wakeup, gpio.High)
		eh.out(d.pwrup, gpio.High)
		d.clock.Sleep(5 * time.Millisecond)
	}
	eh.do(d.pmic.StartTemperature)
	d.clock.Sleep(5 * time.Millisecond)
	var t physic.Temperature
	eh.do(func() (err error) {
		t, err = d.pmic.ReadTemperature()
		return err
	})
	if off {
		errP := d.pwrup.Out(gpio.Low)
		errW := d.wakeup.Out(gpio.Low)
		d.clock.Sleep(5 * time.Millisecond)
		if eh.err == nil {
			eh.err = errP
		}
		if eh.err == nil {
			eh.err = errW
		}
	}
	if eh.err != nil {
		return 0, fmt.Errorf("inkplate: temperature: %w", eh.err)
	}
	return t, nil
}

// Battery returns the battery voltage. The divider is only connected while
// the measurement runs.
func (d *Dev) Battery() (physic.ElectricPotential, error) {
	if d.battery == nil {
		return 0, ErrNoBattery
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	en := d.internal.Pins[pinBattery]
	if err := en.Out(gpio.High); err != nil {
		return 0, err
	}
	d.clock.Sleep(time.Millisecond)
	s, err := d.battery.Read()
	if e := en.Out(gpio.Low); err == nil {
		err = e
	}
	if err != nil {
		return 0, fmt.Errorf("inkplate: battery: %w", err)
	}
	v := s.V
	if v == 0 {
		if _, hi := d.battery.Range(); hi.Raw != 0 {
			v = physic.ElectricPotential(int64(hi.V) * int64(s.Raw) / int64(hi.Raw))
		}
	}
	// The ADC sees half the battery voltage.
	return 2 * v, nil
}

// Touchpad reports whether pad (0 to 2) is touched.
func (d *Dev) Touchpad(pad int) (bool, error) {
	if pad < 0 || pad >= Touchpads {
		return false, fmt.Errorf("inkplate: invalid touchpad %d", pad)
	}
	l, err := d.internal.DigitalRead(pinPad0 + pad)
	return bool(l), err
}

// TouchpadMask reads all pads at once, bit i set for pad i touched.
func (d *Dev) TouchpadMask() (uint8, error) {
	v, err := d.internal.Group(pinPad0, pinPad0+1, pinPad0+2).Read(0)
	return uint8(v), err
}
