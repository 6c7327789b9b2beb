// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp23017

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
)

// Register addresses with IOCON.BANK=0.
const (
	IODIRA   byte = 0x00
	IODIRB   byte = 0x01
	IPOLA    byte = 0x02
	IPOLB    byte = 0x03
	GPINTENA byte = 0x04
	GPINTENB byte = 0x05
	DEFVALA  byte = 0x06
	DEFVALB  byte = 0x07
	INTCONA  byte = 0x08
	INTCONB  byte = 0x09
	IOCONA   byte = 0x0A
	IOCONB   byte = 0x0B
	GPPUA    byte = 0x0C
	GPPUB    byte = 0x0D
	INTFA    byte = 0x0E
	INTFB    byte = 0x0F
	INTCAPA  byte = 0x10
	INTCAPB  byte = 0x11
	GPIOA    byte = 0x12
	GPIOB    byte = 0x13
	OLATA    byte = 0x14
	OLATB    byte = 0x15

	// RegisterCount is the size of the register file.
	RegisterCount = 22
	// PinCount is the number of GPIO lines, GPA0..GPA7 then GPB0..GPB7.
	PinCount = 16
)

// IOCON bits.
const (
	ioconMirror = 1 << 6
	ioconODR    = 1 << 2
	ioconIntPol = 1 << 1
)

// Mode is the direction and pull configuration of a pin.
type Mode uint8

// Pin modes accepted by PinMode.
const (
	Input Mode = iota
	InputPullUp
	Output
)

func (m Mode) String() string {
	switch m {
	case Input:
		return "Input"
	case InputPullUp:
		return "InputPullUp"
	case Output:
		return "Output"
	default:
		return fmt.Sprintf("Mode(%d)", m)
	}
}

var (
	// ErrNotPresent is returned by New when the chip does not acknowledge its
	// address.
	ErrNotPresent = errors.New("mcp23017: device not present")
	// ErrInvalidPin is returned for pin numbers outside [0, 15].
	ErrInvalidPin = errors.New("mcp23017: invalid pin")
)

// Dev is a handle to one MCP23017 together with its register shadow.
type Dev struct {
	// Pins holds the 16 lines as gpio.PinIO.
	Pins [PinCount]*Pin

	mu         sync.Mutex
	d          *i2c.Dev
	name       string
	regs       [RegisterCount]byte
	edgePin    gpio.PinIn
	registered []string
}

// New probes the expander at addr, loads its registers into the shadow,
// switches every pin to input and writes the whole shadow back.
//
// The initial register read doubles as the presence probe: a chip that does
// not answer results in ErrNotPresent.
func New(bus i2c.Bus, addr uint16) (*Dev, error) {
	d := &Dev{
		d:    &i2c.Dev{Bus: bus, Addr: addr},
		name: fmt.Sprintf("MCP23017_%x", addr),
	}
	if err := d.d.Tx([]byte{IODIRA}, d.regs[:]); err != nil {
		return nil, fmt.Errorf("%w at %#x: %v", ErrNotPresent, addr, err)
	}
	d.regs[IODIRA] = 0xFF
	d.regs[IODIRB] = 0xFF
	if err := d.d.Tx(append([]byte{IODIRA}, d.regs[:]...), nil); err != nil {
		return nil, fmt.Errorf("mcp23017: initializing %#x: %w", addr, err)
	}
	for i := range d.Pins {
		p := &Pin{dev: d, num: i}
		d.Pins[i] = p
		// Ignore registration failure.
		if gpioreg.Register(p) == nil {
			d.registered = append(d.registered, p.Name())
		}
	}
	return d, nil
}

func (d *Dev) String() string {
	return d.name
}

// Close removes the pins registration.
func (d *Dev) Close() error {
	d.mu.Lock()
	names := d.registered
	d.registered = nil
	d.mu.Unlock()
	for _, n := range names {
		if err := gpioreg.Unregister(n); err != nil {
			return err
		}
	}
	return nil
}

// Registers returns a copy of the register shadow.
func (d *Dev) Registers() [RegisterCount]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.regs
}

// PinMode sets the direction and pull-up of pin. Only the IODIR and GPPU
// bytes that change are written.
func (d *Dev) PinMode(pin int, m Mode) error {
	port, bit, err := locate(pin)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	iodir := d.regs[IODIRA+port]
	gppu := d.regs[GPPUA+port]
	switch m {
	case Input:
		iodir |= bit
		gppu &^= bit
	case InputPullUp:
		iodir |= bit
		gppu |= bit
	case Output:
		iodir &^= bit
		gppu &^= bit
	default:
		return fmt.Errorf("mcp23017: unknown mode %s", m)
	}
	if err := d.update(IODIRA+port, iodir); err != nil {
		return err
	}
	return d.update(GPPUA+port, gppu)
}

// DigitalWrite sets the output latch of pin. It is ignored when the pin is
// configured as an input.
func (d *Dev) DigitalWrite(pin int, l gpio.Level) error {
	port, bit, err := locate(pin)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.regs[IODIRA+port]&bit != 0 {
		return nil
	}
	v := d.regs[OLATA+port]
	if l {
		v |= bit
	} else {
		v &^= bit
	}
	return d.update(OLATA+port, v)
}

// DigitalRead returns the live level of pin.
func (d *Dev) DigitalRead(pin int) (gpio.Level, error) {
	port, bit, err := locate(pin)
	if err != nil {
		return gpio.Low, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.read(GPIOA+port, 1); err != nil {
		return gpio.Low, err
	}
	return d.regs[GPIOA+port]&bit != 0, nil
}

// SetPorts writes both output latches at once, GPA in the low byte.
func (d *Dev) SetPorts(v uint16) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.write(OLATA, byte(v), byte(v>>8))
}

// Ports reads the level of all 16 pins, GPA in the low byte.
func (d *Dev) Ports() (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.read(GPIOA, 2); err != nil {
		return 0, err
	}
	return uint16(d.regs[GPIOA]) | uint16(d.regs[GPIOB])<<8, nil
}

// update writes v to reg unless the shadow already holds it.
//
// d.mu must be held.
func (d *Dev) update(reg, v byte) error {
	if d.regs[reg] == v {
		return nil
	}
	return d.write(reg, v)
}

// write pushes v at consecutive registers starting at reg and mirrors them in
// the shadow on success.
//
// d.mu must be held.
func (d *Dev) write(reg byte, v ...byte) error {
	w := make([]byte, 0, len(v)+1)
	w = append(w, reg)
	w = append(w, v...)
	if err := d.d.Tx(w, nil); err != nil {
		return fmt.Errorf("mcp23017: writing %#02x: %w", reg, err)
	}
	copy(d.regs[reg:], v)
	return nil
}

// read loads n consecutive registers starting at reg into the shadow.
//
// d.mu must be held.
func (d *Dev) read(reg byte, n int) error {
	r := make([]byte, n)
	if err := d.d.Tx([]byte{reg}, r); err != nil {
		return fmt.Errorf("mcp23017: reading %#02x: %w", reg, err)
	}
	copy(d.regs[reg:], r)
	return nil
}

func locate(pin int) (byte, byte, error) {
	if pin < 0 || pin >= PinCount {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidPin, pin)
	}
	return byte(pin / 8), 1 << uint(pin%8), nil
}
