// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package inkplatetest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/GermanBionicSystems/inkplate/mcp23017"
	"github.com/GermanBionicSystems/inkplate/tps65186"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Addresses answered by Board.
const (
	InternalAddr uint16 = 0x20
	ExternalAddr uint16 = 0x22
)

// Internal expander lines seen by the panel.
const (
	pinOE     = 0
	pinSPV    = 2
	pinWakeup = 3
	pinPwrup  = 4
)

// ErrNoAck is returned for transactions to an address nobody answers.
var ErrNoAck = errors.New("inkplatetest: no acknowledge")

// expander is the register file of one MCP23017 in IOCON.BANK=0 layout.
type expander struct {
	regs   [mcp23017.RegisterCount]byte
	ptr    byte
	inputs uint16
}

func newExpander() *expander {
	e := &expander{}
	// Power-on reset state.
	e.regs[mcp23017.IODIRA] = 0xFF
	e.regs[mcp23017.IODIRB] = 0xFF
	return e
}

func (e *expander) tx(w, r []byte) {
	if len(w) > 0 {
		e.ptr = w[0] % mcp23017.RegisterCount
		for _, v := range w[1:] {
			e.store(e.ptr, v)
			e.ptr = (e.ptr + 1) % mcp23017.RegisterCount
		}
	}
	for i := range r {
		r[i] = e.load(e.ptr)
		e.ptr = (e.ptr + 1) % mcp23017.RegisterCount
	}
}

func (e *expander) store(reg, v byte) {
	switch reg {
	case mcp23017.GPIOA, mcp23017.GPIOB:
		e.regs[reg+2] = v
	case mcp23017.INTFA, mcp23017.INTFB, mcp23017.INTCAPA, mcp23017.INTCAPB:
	default:
		e.regs[reg] = v
	}
}

func (e *expander) load(reg byte) byte {
	switch reg {
	case mcp23017.GPIOA, mcp23017.GPIOB:
		port := uint(reg - mcp23017.GPIOA)
		dir := e.regs[mcp23017.IODIRA+byte(port)]
		in := byte(e.inputs >> (8 * port))
		return e.regs[reg+2]&^dir | in&dir
	}
	return e.regs[reg]
}

// output returns the level driven on pin, Low for inputs.
func (e *expander) output(pin int) gpio.Level {
	port, bit := byte(pin/8), byte(1)<<uint(pin%8)
	if e.regs[mcp23017.IODIRA+port]&bit != 0 {
		return gpio.Low
	}
	return e.regs[mcp23017.OLATA+port]&bit != 0
}

// Board emulates the I²C side of the Inkplate: both expanders and the PMIC.
// It forwards the panel control lines to its Panel.
type Board struct {
	mu       sync.Mutex
	internal *expander
	external *expander
	pmic     [256]byte
	pmicPtr  byte
	failPG   bool
	panel    *Panel
}

// NewBoard returns a Board driving p. p may be nil.
func NewBoard(p *Panel) *Board {
	return &Board{
		internal: newExpander(),
		external: newExpander(),
		panel:    p,
	}
}

func (b *Board) String() string {
	return "inkplatetest.Board"
}

// SetSpeed implements i2c.Bus.
func (b *Board) SetSpeed(f physic.Frequency) error {
	return nil
}

// Tx implements i2c.Bus.
func (b *Board) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch addr {
	case InternalAddr:
		b.internal.tx(w, r)
		b.notify()
	case ExternalAddr:
		b.external.tx(w, r)
	case tps65186.DefaultAddr:
		if b.internal.output(pinWakeup) == gpio.Low {
			return fmt.Errorf("%w at %#x", ErrNoAck, addr)
		}
		b.pmicTx(w, r)
		b.notify()
	default:
		return fmt.Errorf("%w at %#x", ErrNoAck, addr)
	}
	return nil
}

func (b *Board) pmicTx(w, r []byte) {
	if len(w) > 0 {
		b.pmicPtr = w[0]
		for _, v := range w[1:] {
			if b.pmicPtr != tps65186.RegPowerGood {
				b.pmic[b.pmicPtr] = v
			}
			b.pmicPtr++
		}
	}
	for i := range r {
		if b.pmicPtr == tps65186.RegPowerGood {
			r[i] = b.powerGood()
		} else {
			r[i] = b.pmic[b.pmicPtr]
		}
		b.pmicPtr++
	}
}

func (b *Board) powerGood() byte {
	if b.railsGood() {
		return tps65186.PowerGoodAll
	}
	return 0
}

func (b *Board) railsGood() bool {
	return !b.failPG &&
		b.internal.output(pinWakeup) == gpio.High &&
		b.internal.output(pinPwrup) == gpio.High &&
		b.pmic[tps65186.RegEnable] == tps65186.AllRails
}

// notify forwards the internal expander lines to the panel. The PMIC loses
// its enable register while asleep.
func (b *Board) notify() {
	if b.internal.output(pinWakeup) == gpio.Low {
		b.pmic[tps65186.RegEnable] = 0
	}
	if b.panel != nil {
		b.panel.control(b.internal.output(pinOE) == gpio.High, b.internal.output(pinSPV) == gpio.High, b.railsGood())
	}
}

// FailPowerGood makes the PMIC report the rails down regardless of their
// enables.
func (b *Board) FailPowerGood(fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failPG = fail
	b.notify()
}

// SetTemperature sets the thermistor reading in °C.
func (b *Board) SetTemperature(c int8) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pmic[tps65186.RegTMST] = byte(c)
}

// PMICRegister returns a PMIC register.
func (b *Board) PMICRegister(reg byte) byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if reg == tps65186.RegPowerGood {
		return b.powerGood()
	}
	return b.pmic[reg]
}

// SetInput sets the level seen by an expander pin configured as input.
func (b *Board) SetInput(addr uint16, pin int, l gpio.Level) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e := b.expander(addr)
	m := uint16(1) << uint(pin)
	if l {
		e.inputs |= m
	} else {
		e.inputs &^= m
	}
}

// Output returns the level an expander drives on pin. Pins configured as
// input read Low.
func (b *Board) Output(addr uint16, pin int) gpio.Level {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.expander(addr).output(pin)
}

// Registers returns the register file of an expander.
func (b *Board) Registers(addr uint16) [mcp23017.RegisterCount]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.expander(addr).regs
}

func (b *Board) expander(addr uint16) *expander {
	if addr == ExternalAddr {
		return b.external
	}
	return b.internal
}

var _ i2c.Bus = &Board{}
