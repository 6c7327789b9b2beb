// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp23017

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

const addr uint16 = 0x20

// initOps is the traffic of New for a chip that powered up with some pins
// left as outputs.
func initOps() []i2ctest.IO {
	read := make([]byte, RegisterCount)
	read[IODIRA] = 0x00
	read[IODIRB] = 0x0F
	read[OLATA] = 0x80
	write := append([]byte{IODIRA}, read...)
	write[1+IODIRA] = 0xFF
	write[1+IODIRB] = 0xFF
	return []i2ctest.IO{
		{Addr: addr, W: []byte{IODIRA}, R: read},
		{Addr: addr, W: write},
	}
}

func newDev(t *testing.T, ops ...i2ctest.IO) (*Dev, *i2ctest.Playback) {
	t.Helper()
	bus := &i2ctest.Playback{Ops: append(initOps(), ops...), DontPanic: true}
	d, err := New(bus, addr)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Error(err)
		}
	})
	return d, bus
}

func TestNew(t *testing.T) {
	d, bus := newDev(t)
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
	want := [RegisterCount]byte{}
	want[IODIRA] = 0xFF
	want[IODIRB] = 0xFF
	want[OLATA] = 0x80
	if diff := cmp.Diff(want, d.Registers()); diff != "" {
		t.Errorf("Registers() difference (-want +got):\n%s", diff)
	}
	if p := gpioreg.ByName("MCP23017_20_GPB3"); p == nil {
		t.Error("expected pin MCP23017_20_GPB3 to be registered")
	}
	if s := d.String(); s != "MCP23017_20" {
		t.Errorf("String() = %q", s)
	}
}

func TestNewNotPresent(t *testing.T) {
	bus := &i2ctest.Playback{DontPanic: true}
	if _, err := New(bus, 0x22); !errors.Is(err, ErrNotPresent) {
		t.Fatalf("New() error = %v, want ErrNotPresent", err)
	}
}

func TestPinModeAndWrite(t *testing.T) {
	d, bus := newDev(t,
		i2ctest.IO{Addr: addr, W: []byte{IODIRA, 0xFE}},
		i2ctest.IO{Addr: addr, W: []byte{GPPUB, 0x02}},
		i2ctest.IO{Addr: addr, W: []byte{OLATA, 0x81}},
		i2ctest.IO{Addr: addr, W: []byte{OLATA, 0x80}},
	)
	if err := d.PinMode(0, Output); err != nil {
		t.Fatal(err)
	}
	if err := d.PinMode(9, InputPullUp); err != nil {
		t.Fatal(err)
	}
	// Writes to an input are dropped.
	if err := d.DigitalWrite(9, gpio.High); err != nil {
		t.Fatal(err)
	}
	if err := d.DigitalWrite(0, gpio.High); err != nil {
		t.Fatal(err)
	}
	// Unchanged latch: no bus traffic.
	if err := d.DigitalWrite(0, gpio.High); err != nil {
		t.Fatal(err)
	}
	if err := d.DigitalWrite(0, gpio.Low); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
	if p := d.Pins[9].Pull(); p != gpio.PullUp {
		t.Errorf("Pull() = %s", p)
	}
	if f := d.Pins[0].Func(); f != gpio.OUT {
		t.Errorf("Func() = %s", f)
	}
}

func TestInvalidPin(t *testing.T) {
	d, _ := newDev(t)
	for _, pin := range []int{-1, 16} {
		if err := d.PinMode(pin, Output); !errors.Is(err, ErrInvalidPin) {
			t.Errorf("PinMode(%d) = %v", pin, err)
		}
	}
}

func TestDigitalReadAndPorts(t *testing.T) {
	d, bus := newDev(t,
		i2ctest.IO{Addr: addr, W: []byte{GPIOB}, R: []byte{0x10}},
		i2ctest.IO{Addr: addr, W: []byte{OLATA, 0x34, 0x12}},
		i2ctest.IO{Addr: addr, W: []byte{GPIOA}, R: []byte{0x01, 0x80}},
	)
	l, err := d.DigitalRead(12)
	if err != nil {
		t.Fatal(err)
	}
	if l != gpio.High {
		t.Errorf("DigitalRead(12) = %s", l)
	}
	if err := d.SetPorts(0x1234); err != nil {
		t.Fatal(err)
	}
	v, err := d.Ports()
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x8001 {
		t.Errorf("Ports() = %#04x", v)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestInterrupts(t *testing.T) {
	d, bus := newDev(t,
		i2ctest.IO{Addr: addr, W: []byte{IOCONA, 0x42}},
		i2ctest.IO{Addr: addr, W: []byte{GPINTENA, 0x00, 0x04, 0x00, 0x04, 0x00, 0x04}},
		i2ctest.IO{Addr: addr, W: []byte{INTFA}, R: []byte{0x00, 0x04}},
		i2ctest.IO{Addr: addr, W: []byte{INTCAPA}, R: []byte{0x00, 0x00}},
		i2ctest.IO{Addr: addr, W: []byte{GPINTENB, 0x00}},
	)
	if err := d.SetIntOutput(true, false, true); err != nil {
		t.Fatal(err)
	}
	if err := d.SetIntPin(10, gpio.FallingEdge); err != nil {
		t.Fatal(err)
	}
	flags, err := d.IntFlags()
	if err != nil {
		t.Fatal(err)
	}
	if flags != 1<<10 {
		t.Errorf("IntFlags() = %#04x", flags)
	}
	if _, err := d.IntCapture(); err != nil {
		t.Fatal(err)
	}
	if err := d.RemoveIntPin(10); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
	regs := d.Registers()
	if regs[IOCONB] != 0x42 {
		t.Errorf("IOCONB shadow = %#02x", regs[IOCONB])
	}
}

func TestPinIO(t *testing.T) {
	d, bus := newDev(t,
		i2ctest.IO{Addr: addr, W: []byte{IODIRA, 0xF7}},
		i2ctest.IO{Addr: addr, W: []byte{OLATA, 0x88}},
		i2ctest.IO{Addr: addr, W: []byte{IODIRA, 0xFF}},
		i2ctest.IO{Addr: addr, W: []byte{GPIOA}, R: []byte{0x08}},
	)
	var p gpio.PinIO = d.Pins[3]
	if err := p.Out(gpio.High); err != nil {
		t.Fatal(err)
	}
	if err := p.Halt(); err != nil {
		t.Fatal(err)
	}
	if l := p.Read(); l != gpio.High {
		t.Errorf("Read() = %s", l)
	}
	if err := p.In(gpio.PullDown, gpio.NoEdge); err == nil {
		t.Error("expected PullDown to fail")
	}
	if err := p.PWM(gpio.DutyHalf, 0); err == nil {
		t.Error("expected PWM to fail")
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestGroup(t *testing.T) {
	d, bus := newDev(t,
		i2ctest.IO{Addr: addr, W: []byte{GPIOA}, R: []byte{0x00, 0x0A}},
		i2ctest.IO{Addr: addr, W: []byte{IODIRA, 0xFF, 0xFC}},
		i2ctest.IO{Addr: addr, W: []byte{OLATA, 0x80, 0x02}},
	)
	pads := d.Group(10, 11, 12)
	v, err := pads.Read(0)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x2 {
		t.Errorf("Read() = %#x", v)
	}
	out := d.Group(8, 9)
	if err := out.Out(0x2, 0); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
	if d.Group(3, 16) != nil {
		t.Error("expected nil group for invalid pin")
	}
	if p := pads.ByOffset(1); p.Number() != 11 {
		t.Errorf("ByOffset(1) = %s", p)
	}
}
