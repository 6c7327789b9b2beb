// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp23017

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// SetIntOutput configures the INTA/INTB output drivers.
//
// With mirror set both outputs fire for a change on either port.
func (d *Dev) SetIntOutput(mirror, openDrain, activeHigh bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	v := d.regs[IOCONA] &^ (ioconMirror | ioconODR | ioconIntPol)
	if mirror {
		v |= ioconMirror
	}
	if openDrain {
		v |= ioconODR
	}
	if activeHigh {
		v |= ioconIntPol
	}
	if err := d.update(IOCONA, v); err != nil {
		return err
	}
	// IOCONB aliases IOCONA.
	d.regs[IOCONB] = v
	return nil
}

// SetIntPin enables the interrupt on pin.
//
// BothEdges fires on any change. RisingEdge and FallingEdge compare the pin
// against DEFVAL, so the chip reports the level leaving its rest value.
// NoEdge is the same as RemoveIntPin.
func (d *Dev) SetIntPin(pin int, edge gpio.Edge) error {
	if edge == gpio.NoEdge {
		return d.RemoveIntPin(pin)
	}
	port, bit, err := locate(pin)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	switch edge {
	case gpio.BothEdges:
		d.regs[INTCONA+port] &^= bit
	case gpio.RisingEdge:
		d.regs[INTCONA+port] |= bit
		d.regs[DEFVALA+port] &^= bit
	case gpio.FallingEdge:
		d.regs[INTCONA+port] |= bit
		d.regs[DEFVALA+port] |= bit
	default:
		return fmt.Errorf("mcp23017: unknown edge %s", edge)
	}
	d.regs[GPINTENA+port] |= bit
	return d.write(GPINTENA, d.regs[GPINTENA:INTCONB+1]...)
}

// RemoveIntPin disables the interrupt on pin.
func (d *Dev) RemoveIntPin(pin int) error {
	port, bit, err := locate(pin)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.update(GPINTENA+port, d.regs[GPINTENA+port]&^bit)
}

// IntFlags returns which pins caused the pending interrupt, GPA in the low
// byte.
func (d *Dev) IntFlags() (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.read(INTFA, 2); err != nil {
		return 0, err
	}
	return uint16(d.regs[INTFA]) | uint16(d.regs[INTFB])<<8, nil
}

// IntCapture returns the port levels latched when the interrupt fired.
// Reading it clears the interrupt on the chip.
func (d *Dev) IntCapture() (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.read(INTCAPA, 2); err != nil {
		return 0, err
	}
	return uint16(d.regs[INTCAPA]) | uint16(d.regs[INTCAPB])<<8, nil
}

// SetEdgePin sets the host pin wired to the chip INT output. It must already
// be configured for edge detection. Pin.WaitForEdge relies on it.
func (d *Dev) SetEdgePin(p gpio.PinIn) {
	d.mu.Lock()
	d.edgePin = p
	d.mu.Unlock()
}
