// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package inkplate

import (
	"math/bits"
)

// Display runs a full refresh of the active framebuffer.
func (d *Dev) Display() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fb == d.gray {
		return d.display3Bit()
	}
	return d.display1Bit()
}

// PartialUpdate drives only the pixels that changed since the last refresh.
//
// It does nothing in Mode3Bit. After a mode switch, or before the first
// refresh, it runs a full refresh instead.
func (d *Dev) PartialUpdate() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fb != d.mono {
		d.log.Debug("inkplate: partial update ignored in 3 bit mode")
		return nil
	}
	if d.forceFull {
		return d.display1Bit()
	}
	d.diff()
	if err := d.powerOn(); err != nil {
		return err
	}
	d.log.WithField("passes", d.timings.PartialPasses).Debug("inkplate: partial refresh")
	eh := errorHandler{}
	stride := 2 * d.mono.stride
	for k := 0; k < d.timings.PartialPasses; k++ {
		d.pass(&eh, func(i int, row []uint32) {
			src := d.scratch[i*stride : (i+1)*stride]
			for j, v := range src {
				row[j] = d.t.expand[v]
			}
		})
	}
	d.clean(&eh, d.timings.Finish1Bit)
	d.vscanStart(&eh)
	if eh.err == nil {
		copy(d.mono.prev, d.mono.pix)
	}
	return d.finish(&eh)
}

// Diff summarizes the transitions a PartialUpdate would drive.
type Diff struct {
	ToWhite int
	ToBlack int
}

// Diff returns the number of pixels that differ from the image on the panel.
// In Mode3Bit it returns the zero value.
func (d *Dev) Diff() Diff {
	d.mu.Lock()
	defer d.mu.Unlock()
	var r Diff
	if d.fb != d.mono {
		return r
	}
	for i, cur := range d.mono.pix {
		x := cur ^ d.mono.prev[i]
		r.ToWhite += bits.OnesCount8(x &^ cur)
		r.ToBlack += bits.OnesCount8(x & cur)
	}
	return r
}

// diff fills scratch with the drive bytes of a partial refresh, in scan
// order.
func (d *Dev) diff() {
	stride := d.mono.stride
	n := 0
	for i := 0; i < d.height; i++ {
		y := d.height - 1 - i
		cur := d.mono.pix[y*stride : (y+1)*stride]
		prev := d.mono.prev[y*stride : (y+1)*stride]
		for m := stride - 1; m >= 0; m-- {
			x := cur[m] ^ prev[m]
			w := x &^ cur[m]
			b := x & cur[m]
			d.scratch[n] = d.t.lutw[w>>4] & d.t.lutb[b>>4]
			d.scratch[n+1] = d.t.lutw[w&0x0F] & d.t.lutb[b&0x0F]
			n += 2
		}
	}
}

func (d *Dev) display1Bit() error {
	if err := d.powerOn(); err != nil {
		return err
	}
	d.log.Debug("inkplate: full refresh, 1 bit")
	eh := errorHandler{}
	d.clean(&eh, d.timings.Clean)
	for k := 0; k < d.timings.WhitePasses; k++ {
		d.pass(&eh, func(i int, row []uint32) {
			d.monoRow(i, row, &d.t.lutw, 0xFF)
		})
	}
	for k := 0; k < d.timings.BlackPasses; k++ {
		d.pass(&eh, func(i int, row []uint32) {
			d.monoRow(i, row, &d.t.lutb, 0)
		})
	}
	d.clean(&eh, d.timings.Finish1Bit)
	d.vscanStart(&eh)
	if eh.err == nil {
		copy(d.mono.prev, d.mono.pix)
		d.forceFull = false
	}
	return d.finish(&eh)
}

func (d *Dev) display3Bit() error {
	if err := d.powerOn(); err != nil {
		return err
	}
	d.log.Debug("inkplate: full refresh, 3 bit")
	eh := errorHandler{}
	d.clean(&eh, d.timings.Clean)
	stride := d.gray.stride
	for p := 0; p < phases; p++ {
		low, high := &d.t.glutLow[p], &d.t.glutHigh[p]
		d.pass(&eh, func(i int, row []uint32) {
			y := d.height - 1 - i
			src := d.gray.pix[y*stride : (y+1)*stride]
			for j := range row {
				e := stride - 1 - 2*j
				row[j] = high[src[e]] | low[src[e-1]]
			}
		})
	}
	d.clean(&eh, d.timings.Finish3Bit)
	d.vscanStart(&eh)
	if eh.err == nil {
		d.forceFull = false
	}
	return d.finish(&eh)
}

// monoRow fills row from framebuffer row i in scan order. Bytes are XORed
// with invert before the lookup.
func (d *Dev) monoRow(i int, row []uint32, lut *[16]byte, invert byte) {
	stride := d.mono.stride
	y := d.height - 1 - i
	src := d.mono.pix[y*stride : (y+1)*stride]
	for m := 0; m < stride; m++ {
		b := src[stride-1-m] ^ invert
		row[2*m] = d.t.expand[lut[b>>4]]
		row[2*m+1] = d.t.expand[lut[b&0x0F]]
	}
}

// finish powers the panel down and reports the first error of the refresh.
func (d *Dev) finish(eh *errorHandler) error {
	err := d.powerOff()
	if eh.err != nil {
		return eh.err
	}
	return err
}
