// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp23017

import (
	"errors"
	"strconv"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"
)

var supportedFuncs = [...]pin.Func{gpio.IN, gpio.OUT}

// Pin is one expander line.
type Pin struct {
	dev *Dev
	num int
}

func (p *Pin) String() string {
	return p.Name()
}

// Halt implements conn.Resource.
//
// The pin becomes a floating input.
func (p *Pin) Halt() error {
	return p.In(gpio.Float, gpio.NoEdge)
}

// Name implements pin.Pin.
func (p *Pin) Name() string {
	port := "A"
	if p.num >= 8 {
		port = "B"
	}
	return p.dev.name + "_GP" + port + strconv.Itoa(p.num%8)
}

// Number implements pin.Pin.
func (p *Pin) Number() int {
	return p.num
}

// Function implements pin.Pin.
func (p *Pin) Function() string {
	return string(p.Func())
}

// In implements gpio.PinIn.
func (p *Pin) In(pull gpio.Pull, edge gpio.Edge) error {
	var m Mode
	switch pull {
	case gpio.PullDown:
		return errors.New("mcp23017: PullDown is not supported")
	case gpio.PullUp:
		m = InputPullUp
	case gpio.Float:
		m = Input
	case gpio.PullNoChange:
		m = Input
		if p.Pull() == gpio.PullUp {
			m = InputPullUp
		}
	}
	if err := p.dev.PinMode(p.num, m); err != nil {
		return err
	}
	return p.dev.SetIntPin(p.num, edge)
}

// Read implements gpio.PinIn.
func (p *Pin) Read() gpio.Level {
	l, _ := p.dev.DigitalRead(p.num)
	return l
}

// WaitForEdge implements gpio.PinIn.
//
// It only works once Dev.SetEdgePin was called. The interrupt is cleared
// before returning.
func (p *Pin) WaitForEdge(timeout time.Duration) bool {
	p.dev.mu.Lock()
	e := p.dev.edgePin
	p.dev.mu.Unlock()
	if e == nil || !e.WaitForEdge(timeout) {
		return false
	}
	flags, err := p.dev.IntFlags()
	if err != nil {
		return false
	}
	if _, err := p.dev.IntCapture(); err != nil {
		return false
	}
	return flags&(1<<uint(p.num)) != 0
}

// Pull implements gpio.PinIn.
func (p *Pin) Pull() gpio.Pull {
	if p.bit(GPPUA) {
		return gpio.PullUp
	}
	return gpio.Float
}

// DefaultPull implements gpio.PinIn.
func (p *Pin) DefaultPull() gpio.Pull {
	return gpio.Float
}

// Out implements gpio.PinOut.
func (p *Pin) Out(l gpio.Level) error {
	if err := p.dev.PinMode(p.num, Output); err != nil {
		return err
	}
	return p.dev.DigitalWrite(p.num, l)
}

// PWM implements gpio.PinOut.
func (p *Pin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return errors.New("mcp23017: PWM is not supported")
}

// Func implements pin.PinFunc.
func (p *Pin) Func() pin.Func {
	if p.bit(IODIRA) {
		return gpio.IN
	}
	return gpio.OUT
}

// SupportedFuncs implements pin.PinFunc.
func (p *Pin) SupportedFuncs() []pin.Func {
	return supportedFuncs[:]
}

// SetFunc implements pin.PinFunc.
func (p *Pin) SetFunc(f pin.Func) error {
	switch f {
	case gpio.IN:
		return p.dev.PinMode(p.num, Input)
	case gpio.OUT:
		return p.dev.PinMode(p.num, Output)
	default:
		return errors.New("mcp23017: Function not supported: " + string(f))
	}
}

// bit returns the shadow bit of this pin in the A/B register pair at base.
func (p *Pin) bit(base byte) bool {
	port, mask, _ := locate(p.num)
	p.dev.mu.Lock()
	defer p.dev.mu.Unlock()
	return p.dev.regs[base+port]&mask != 0
}

var _ gpio.PinIO = &Pin{}
var _ pin.PinFunc = &Pin{}
