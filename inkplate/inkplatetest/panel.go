// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package inkplatetest

import (
	"fmt"
	"image"
	"sync"

	"github.com/GermanBionicSystems/inkplate/inkplate"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"
)

// Panel emulates the ED060XH7 source and gate drivers.
//
// Rows are counted from the SPV falling edge and committed on the LE rising
// edge. The first row sent is the bottom one and the first word of a row
// holds its rightmost four pixels. Drives only reach the pixels while OE is
// high and the rails are good.
//
// Every pixel keeps the direction of its last black or white drive, and a
// gray level from 0 to 7 moved one step per drive.
type Panel struct {
	mu     sync.Mutex
	width  int
	height int
	data   [8]uint32
	cl, le uint32

	bank     uint32
	oe, spv  bool
	good     bool
	sph      bool
	row      int
	word     int
	shift    []byte
	black    []bool
	level    []uint8
	pulses   int
	vscans   int
	rowsSent int

	// CKV and SPH are the host driven gate clock and source start pulse.
	CKV *Line
	SPH *Line
}

// NewPanel returns a white panel wired according to l.
func NewPanel(width, height int, l inkplate.Layout) *Panel {
	p := &Panel{
		width:  width,
		height: height,
		cl:     1 << l.CL,
		le:     1 << l.LE,
		shift:  make([]byte, width/4),
		black:  make([]bool, width*height),
		level:  make([]uint8, width*height),
	}
	for i, b := range l.Data {
		p.data[i] = 1 << b
	}
	for i := range p.level {
		p.level[i] = 7
	}
	p.CKV = &Line{name: "CKV", p: p}
	p.SPH = &Line{name: "SPH", p: p}
	return p
}

func (p *Panel) String() string {
	return fmt.Sprintf("inkplatetest.Panel{%dx%d}", p.width, p.height)
}

// Set implements inkplate.Bus.
func (p *Panel) Set(mask uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	rising := mask &^ p.bank
	p.bank |= mask
	if rising&p.cl != 0 {
		p.clock()
	}
	if rising&p.le != 0 {
		p.latch()
	}
}

// Clear implements inkplate.Bus.
func (p *Panel) Clear(mask uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bank &^= mask
}

// clock shifts in one data byte.
func (p *Panel) clock() {
	if p.word < len(p.shift) {
		var b byte
		for i, m := range p.data {
			if p.bank&m != 0 {
				b |= 1 << uint(i)
			}
		}
		p.shift[p.word] = b
	}
	p.word++
}

// latch commits the shifted row.
func (p *Panel) latch() {
	p.rowsSent++
	if p.row >= p.height {
		return
	}
	if p.oe && p.good {
		y := p.height - 1 - p.row
		n := len(p.shift)
		for w, b := range p.shift {
			for k := 0; k < 4; k++ {
				x := 4*(n-1-w) + k
				p.drive(y*p.width+x, inkplate.Drive(b>>uint(2*k)&3))
			}
		}
	}
	p.row++
}

func (p *Panel) drive(i int, d inkplate.Drive) {
	switch d {
	case inkplate.Black:
		p.black[i] = true
		if p.level[i] > 0 {
			p.level[i]--
		}
	case inkplate.White:
		p.black[i] = false
		if p.level[i] < 7 {
			p.level[i]++
		}
	default:
		return
	}
	p.pulses++
}

// control receives the expander driven lines.
func (p *Panel) control(oe, spv, good bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.spv && !spv {
		p.row = 0
		p.vscans++
	}
	p.oe, p.spv, p.good = oe, spv, good
}

func (p *Panel) setSPH(l bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sph && !l {
		p.word = 0
	}
	p.sph = l
}

// Black reports whether the last drive of the pixel at physical (x, y) was
// black.
func (p *Panel) Black(x, y int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.black[y*p.width+x]
}

// Level returns the gray level of the pixel at physical (x, y), 0 black and
// 7 white.
func (p *Panel) Level(x, y int) uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level[y*p.width+x]
}

// Pulses returns the number of black or white pixel drives since the last
// ResetPulses.
func (p *Panel) Pulses() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pulses
}

// ResetPulses clears the pulse counter.
func (p *Panel) ResetPulses() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pulses = 0
}

// Scans returns the number of vertical scan starts and latched rows seen.
func (p *Panel) Scans() (vscans, rows int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.vscans, p.rowsSent
}

// Bank returns the current level of the host bank bits.
func (p *Panel) Bank() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bank
}

// Image renders the gray levels.
func (p *Panel) Image() *image.Gray {
	p.mu.Lock()
	defer p.mu.Unlock()
	img := image.NewGray(image.Rect(0, 0, p.width, p.height))
	for i, l := range p.level {
		img.Pix[i] = uint8(int(l) * 255 / 7)
	}
	return img
}

// Line is a host output pin wired to the panel.
type Line struct {
	name string
	p    *Panel
	mu   sync.Mutex
	l    gpio.Level
}

func (l *Line) String() string {
	return l.name
}

// Halt implements conn.Resource.
func (l *Line) Halt() error {
	return nil
}

// Name implements pin.Pin.
func (l *Line) Name() string {
	return l.name
}

// Number implements pin.Pin.
func (l *Line) Number() int {
	return -1
}

// Function implements pin.Pin.
func (l *Line) Function() string {
	return string(l.Func())
}

// Func implements pin.PinFunc.
func (l *Line) Func() pin.Func {
	return gpio.OUT
}

// SupportedFuncs implements pin.PinFunc.
func (l *Line) SupportedFuncs() []pin.Func {
	return []pin.Func{gpio.OUT}
}

// SetFunc implements pin.PinFunc.
func (l *Line) SetFunc(f pin.Func) error {
	if f != gpio.OUT {
		return fmt.Errorf("inkplatetest: %s is output only", l.name)
	}
	return nil
}

// Out implements gpio.PinOut.
func (l *Line) Out(v gpio.Level) error {
	l.mu.Lock()
	l.l = v
	l.mu.Unlock()
	if l == l.p.SPH {
		l.p.setSPH(bool(v))
	}
	return nil
}

// PWM implements gpio.PinOut.
func (l *Line) PWM(duty gpio.Duty, f physic.Frequency) error {
	return fmt.Errorf("inkplatetest: %s does not support PWM", l.name)
}

// Level returns the last level written.
func (l *Line) Level() gpio.Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.l
}

var _ inkplate.Bus = &Panel{}
var _ gpio.PinOut = &Line{}
var _ pin.PinFunc = &Line{}
