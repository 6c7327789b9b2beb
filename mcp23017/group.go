// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp23017

import (
	"fmt"
	"strings"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/pin"
)

type pinGroup struct {
	dev         *Dev
	pins        []*Pin
	defaultMask gpio.GPIOValue
}

// Group returns a gpio.Group made of the listed pins, which may span both
// ports. It returns nil if a pin number is out of range.
func (d *Dev) Group(pins ...int) gpio.Group {
	gp := make([]*Pin, len(pins))
	for i, n := range pins {
		if n < 0 || n >= PinCount {
			return nil
		}
		gp[i] = d.Pins[n]
	}
	return &pinGroup{dev: d, pins: gp, defaultMask: gpio.GPIOValue(1<<uint(len(pins))) - 1}
}

// Pins implements gpio.Group.
func (pg *pinGroup) Pins() []pin.Pin {
	pins := make([]pin.Pin, len(pg.pins))
	for i, p := range pg.pins {
		pins[i] = p
	}
	return pins
}

// ByOffset implements gpio.Group.
func (pg *pinGroup) ByOffset(offset int) pin.Pin {
	return pg.pins[offset]
}

// ByName implements gpio.Group.
func (pg *pinGroup) ByName(name string) pin.Pin {
	for _, p := range pg.pins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// ByNumber implements gpio.Group.
func (pg *pinGroup) ByNumber(number int) pin.Pin {
	for _, p := range pg.pins {
		if p.Number() == number {
			return p
		}
	}
	return nil
}

// portMask converts a group relative value to absolute port bits.
func (pg *pinGroup) portMask(value, mask gpio.GPIOValue) (uint16, uint16) {
	if mask == 0 {
		mask = pg.defaultMask
	} else {
		mask &= pg.defaultMask
	}
	var v, m uint16
	for i, p := range pg.pins {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		m |= 1 << uint(p.num)
		if value&(1<<uint(i)) != 0 {
			v |= 1 << uint(p.num)
		}
	}
	return v, m
}

// Out implements gpio.Group. Pins that are inputs are switched to outputs
// first.
func (pg *pinGroup) Out(value, mask gpio.GPIOValue) error {
	v, m := pg.portMask(value, mask)
	d := pg.dev
	d.mu.Lock()
	defer d.mu.Unlock()
	iodir := uint16(d.regs[IODIRA]) | uint16(d.regs[IODIRB])<<8
	if iodir&m != 0 {
		iodir &^= m
		if err := d.write(IODIRA, byte(iodir), byte(iodir>>8)); err != nil {
			return err
		}
	}
	olat := uint16(d.regs[OLATA]) | uint16(d.regs[OLATB])<<8
	next := olat&^m | v
	if next == olat {
		return nil
	}
	return d.write(OLATA, byte(next), byte(next>>8))
}

// Read implements gpio.Group. Pins that are outputs are transparently
// switched to inputs.
func (pg *pinGroup) Read(mask gpio.GPIOValue) (gpio.GPIOValue, error) {
	_, m := pg.portMask(0, mask)
	d := pg.dev
	d.mu.Lock()
	defer d.mu.Unlock()
	iodir := uint16(d.regs[IODIRA]) | uint16(d.regs[IODIRB])<<8
	if iodir&m != m {
		iodir |= m
		if err := d.write(IODIRA, byte(iodir), byte(iodir>>8)); err != nil {
			return 0, err
		}
	}
	if err := d.read(GPIOA, 2); err != nil {
		return 0, err
	}
	levels := uint16(d.regs[GPIOA]) | uint16(d.regs[GPIOB])<<8
	var result gpio.GPIOValue
	for i, p := range pg.pins {
		if m&(1<<uint(p.num)) != 0 && levels&(1<<uint(p.num)) != 0 {
			result |= 1 << uint(i)
		}
	}
	return result, nil
}

// WaitForEdge implements gpio.Group.
func (pg *pinGroup) WaitForEdge(timeout time.Duration) (int, gpio.Edge, error) {
	return -1, gpio.NoEdge, gpio.ErrGroupFeatureNotImplemented
}

// Halt implements conn.Resource.
func (pg *pinGroup) Halt() error {
	return nil
}

// String returns the device name and the pins of the group.
func (pg *pinGroup) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s - [ ", pg.dev)
	for _, p := range pg.pins {
		fmt.Fprintf(&b, "%d ", p.Number())
	}
	b.WriteString("]")
	return b.String()
}

var _ gpio.Group = &pinGroup{}
