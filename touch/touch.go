// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package touch drives the capacitive touch controller of the Inkplate 6PLUS.
//
// The controller answers at DefaultAddr. It has no register map: commands
// are 4 byte packets and reports are read without a preceding write. A
// falling edge on the interrupt line announces a report.
package touch

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"math/bits"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
)

// DefaultAddr is the controller I²C address.
const DefaultAddr uint16 = 0x15

var (
	cmdReset      = []byte{0x77, 0x77, 0x77, 0x77}
	hello         = []byte{0x55, 0x55, 0x55, 0x55}
	cmdXRes       = []byte{0x53, 0x60, 0x00, 0x00}
	cmdYRes       = []byte{0x53, 0x63, 0x00, 0x00}
	cmdPowerState = []byte{0x53, 0x50, 0x00, 0x01}
)

// ErrNoHello is returned when the controller does not greet after a reset.
var ErrNoHello = errors.New("touch: controller did not answer the reset")

// Opts holds the panel geometry the coordinates are mapped to.
type Opts struct {
	// Width and Height of the panel in pixels.
	Width  int
	Height int
	// ResetTimeout bounds the wait for the hello packet.
	ResetTimeout time.Duration
}

// DefaultOpts matches the Inkplate 6PLUS panel.
var DefaultOpts = Opts{
	Width:        1024,
	Height:       758,
	ResetTimeout: time.Second,
}

// Report is one touch report.
type Report struct {
	// Fingers is the number of fingers on the panel.
	Fingers int
	// Points holds the first two touch positions in panel coordinates. Only
	// the first Fingers entries are meaningful.
	Points [2]image.Point
}

// Dev is a handle to the touch controller.
type Dev struct {
	d    *i2c.Dev
	rst  gpio.PinOut
	irq  gpio.PinIn
	opts Opts
	xres int
	yres int
}

// New resets the controller, reads its resolution and turns it on.
//
// rst is the active low reset line, irq the open drain interrupt line.
func New(bus i2c.Bus, rst gpio.PinOut, irq gpio.PinIn, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	d := &Dev{
		d:    &i2c.Dev{Bus: bus, Addr: DefaultAddr},
		rst:  rst,
		irq:  irq,
		opts: *opts,
	}
	if d.opts.Width == 0 || d.opts.Height == 0 {
		d.opts.Width, d.opts.Height = DefaultOpts.Width, DefaultOpts.Height
	}
	if d.opts.ResetTimeout == 0 {
		d.opts.ResetTimeout = DefaultOpts.ResetTimeout
	}
	if err := irq.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return nil, fmt.Errorf("touch: %w", err)
	}
	if err := d.Reset(); err != nil {
		return nil, err
	}
	var err error
	if d.xres, err = d.resolution(cmdXRes); err != nil {
		return nil, err
	}
	if d.yres, err = d.resolution(cmdYRes); err != nil {
		return nil, err
	}
	if d.xres == 0 || d.yres == 0 {
		return nil, fmt.Errorf("touch: invalid resolution %dx%d", d.xres, d.yres)
	}
	if err := d.SetPowerState(true); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("touch.Dev{%s, %dx%d}", d.d, d.xres, d.yres)
}

// Halt implements conn.Resource. It puts the controller to sleep.
func (d *Dev) Halt() error {
	return d.SetPowerState(false)
}

// Reset pulses the reset line, then sends the software reset and checks the
// hello packet.
func (d *Dev) Reset() error {
	if err := d.rst.Out(gpio.Low); err != nil {
		return fmt.Errorf("touch: %w", err)
	}
	time.Sleep(15 * time.Millisecond)
	if err := d.rst.Out(gpio.High); err != nil {
		return fmt.Errorf("touch: %w", err)
	}
	time.Sleep(15 * time.Millisecond)

	if err := d.d.Tx(cmdReset, nil); err != nil {
		return fmt.Errorf("touch: reset: %w", err)
	}
	// The hello packet is read even when the interrupt never comes.
	d.irq.WaitForEdge(d.opts.ResetTimeout)
	var b [4]byte
	if err := d.d.Tx(nil, b[:]); err != nil {
		return fmt.Errorf("touch: reset: %w", err)
	}
	if !bytes.Equal(b[:], hello) {
		return fmt.Errorf("%w: got % x", ErrNoHello, b)
	}
	return nil
}

// Resolution returns the sensor resolution along its two axes.
func (d *Dev) Resolution() (int, int) {
	return d.xres, d.yres
}

func (d *Dev) resolution(cmd []byte) (int, error) {
	var b [4]byte
	if err := d.query(cmd, b[:]); err != nil {
		return 0, err
	}
	return int(b[2]) | int(b[3]&0xF0)<<4, nil
}

// SetPowerState wakes the controller up or puts it to sleep.
func (d *Dev) SetPowerState(on bool) error {
	cmd := []byte{0x54, 0x50, 0x00, 0x01}
	if on {
		cmd[1] |= 1 << 3
	}
	if err := d.d.Tx(cmd, nil); err != nil {
		return fmt.Errorf("touch: power state: %w", err)
	}
	return nil
}

// PowerState reports whether the controller is awake.
func (d *Dev) PowerState() (bool, error) {
	var b [4]byte
	if err := d.query(cmdPowerState, b[:]); err != nil {
		return false, err
	}
	return b[1]>>3&1 != 0, nil
}

// Available waits up to timeout for a report to be announced.
func (d *Dev) Available(timeout time.Duration) bool {
	return d.irq.WaitForEdge(timeout)
}

// Read reads the current report.
func (d *Dev) Read() (Report, error) {
	var b [8]byte
	var r Report
	if err := d.d.Tx(nil, b[:]); err != nil {
		return r, fmt.Errorf("touch: read: %w", err)
	}
	r.Fingers = bits.OnesCount8(b[7])
	for i := range r.Points {
		p := b[1+3*i : 4+3*i]
		x := int(p[0]&0xF0)<<4 | int(p[1])
		y := int(p[0]&0x0F)<<8 | int(p[2])
		// The sensor is mounted rotated relative to the panel.
		r.Points[i] = image.Point{
			X: d.opts.Width - 1 - y*(d.opts.Width-1)/d.yres,
			Y: x * (d.opts.Height - 1) / d.xres,
		}
	}
	return r, nil
}

// query sends cmd and reads the answer in a separate transaction.
func (d *Dev) query(cmd, r []byte) error {
	if err := d.d.Tx(cmd, nil); err != nil {
		return fmt.Errorf("touch: command %#02x: %w", cmd[1], err)
	}
	if err := d.d.Tx(nil, r); err != nil {
		return fmt.Errorf("touch: command %#02x: %w", cmd[1], err)
	}
	return nil
}
