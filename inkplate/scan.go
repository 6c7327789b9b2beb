// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package inkplate

import (
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Bus is the host GPIO bank carrying the source data lines, CL and LE.
//
// Each call must be a single atomic write of the bank set or clear register.
type Bus interface {
	Set(mask uint32)
	Clear(mask uint32)
}

// vscanStart pulses SPV under CKV to move the gate driver to the first row.
func (d *Dev) vscanStart(eh *errorHandler) {
	eh.out(d.ckv, gpio.High)
	d.clock.Sleep(7 * time.Microsecond)
	eh.out(d.spv, gpio.Low)
	d.clock.Sleep(10 * time.Microsecond)
	eh.out(d.ckv, gpio.Low)
	eh.out(d.ckv, gpio.High)
	d.clock.Sleep(8 * time.Microsecond)
	eh.out(d.spv, gpio.High)
	d.clock.Sleep(10 * time.Microsecond)
	eh.out(d.ckv, gpio.Low)
	eh.out(d.ckv, gpio.High)
	d.clock.Sleep(18 * time.Microsecond)
	eh.out(d.ckv, gpio.Low)
	eh.out(d.ckv, gpio.High)
	d.clock.Sleep(18 * time.Microsecond)
	eh.out(d.ckv, gpio.Low)
	eh.out(d.ckv, gpio.High)
}

// hscanStart clocks the first word of a row in with SPH asserted.
func (d *Dev) hscanStart(eh *errorHandler, w uint32) {
	eh.out(d.sph, gpio.Low)
	d.bus.Set(w | d.t.cl)
	d.bus.Clear(d.t.data | d.t.cl)
	eh.out(d.sph, gpio.High)
	eh.out(d.ckv, gpio.High)
}

func (d *Dev) writeWord(w uint32) {
	d.bus.Set(w | d.t.cl)
	d.bus.Clear(d.t.data | d.t.cl)
}

// vscanEnd latches the row into the source drivers.
func (d *Dev) vscanEnd(eh *errorHandler) {
	eh.out(d.ckv, gpio.Low)
	d.bus.Set(d.t.le)
	d.bus.Clear(d.t.le)
}

// pass drives the whole panel once. fill receives the row index in scan
// order, which starts at the bottom of the framebuffer, and writes the
// expanded bus words of that row, rightmost pixels first.
func (d *Dev) pass(eh *errorHandler, fill func(i int, row []uint32)) {
	if eh.err != nil {
		return
	}
	d.vscanStart(eh)
	for i := 0; i < d.height && eh.err == nil; i++ {
		fill(i, d.row)
		d.hscanStart(eh, d.row[0])
		for _, w := range d.row[1:] {
			d.writeWord(w)
		}
		// Trailing clock pushes the last word out of the shift register.
		d.writeWord(0)
		d.vscanEnd(eh)
	}
	d.clock.Sleep(d.timings.PassDelay)
}

// cleanFast drives every pixel with dr, repeat times.
func (d *Dev) cleanFast(eh *errorHandler, dr Drive, repeat int) {
	w := d.t.expand[dr.fill()]
	fill := func(_ int, row []uint32) {
		for i := range row {
			row[i] = w
		}
	}
	for k := 0; k < repeat; k++ {
		d.pass(eh, fill)
	}
}

func (d *Dev) clean(eh *errorHandler, steps []Step) {
	for _, s := range steps {
		d.cleanFast(eh, s.Drive, s.Repeat)
	}
}
