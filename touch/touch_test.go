// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package touch

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func initOps() []i2ctest.IO {
	return []i2ctest.IO{
		{Addr: DefaultAddr, W: []byte{0x77, 0x77, 0x77, 0x77}},
		{Addr: DefaultAddr, R: []byte{0x55, 0x55, 0x55, 0x55}},
		// 600
		{Addr: DefaultAddr, W: []byte{0x53, 0x60, 0x00, 0x00}},
		{Addr: DefaultAddr, R: []byte{0x52, 0x60, 0x58, 0x20}},
		// 800
		{Addr: DefaultAddr, W: []byte{0x53, 0x63, 0x00, 0x00}},
		{Addr: DefaultAddr, R: []byte{0x52, 0x63, 0x20, 0x30}},
		{Addr: DefaultAddr, W: []byte{0x54, 0x58, 0x00, 0x01}},
	}
}

func newPins() (*gpiotest.Pin, *gpiotest.Pin) {
	rst := &gpiotest.Pin{N: "TS_RTS", Num: 1}
	irq := &gpiotest.Pin{N: "TS_INT", Num: 2, EdgesChan: make(chan gpio.Level, 1)}
	return rst, irq
}

// testOpts keeps the wait for the reset interrupt short, gpiotest.Pin drops
// edges queued before In.
var testOpts = &Opts{Width: 1024, Height: 758, ResetTimeout: time.Millisecond}

func TestNew(t *testing.T) {
	bus := &i2ctest.Playback{Ops: initOps()}
	defer func() {
		if err := bus.Close(); err != nil {
			t.Fatal(err)
		}
	}()
	rst, irq := newPins()
	d, err := New(bus, rst, irq, testOpts)
	if err != nil {
		t.Fatal(err)
	}
	if x, y := d.Resolution(); x != 600 || y != 800 {
		t.Fatalf("Resolution() = %d, %d", x, y)
	}
	if rst.Read() != gpio.High {
		t.Fatal("reset line left low")
	}
	if irq.Pull() != gpio.PullUp {
		t.Fatal("interrupt line not pulled up")
	}
}

func TestNoHello(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: DefaultAddr, W: []byte{0x77, 0x77, 0x77, 0x77}},
			{Addr: DefaultAddr, R: []byte{0x00, 0x00, 0x00, 0x00}},
		},
	}
	defer func() {
		if err := bus.Close(); err != nil {
			t.Fatal(err)
		}
	}()
	rst := &gpiotest.Pin{N: "TS_RTS", Num: 1}
	irq := &gpiotest.Pin{N: "TS_INT", Num: 2, EdgesChan: make(chan gpio.Level)}
	_, err := New(bus, rst, irq, &Opts{ResetTimeout: time.Millisecond})
	if !errors.Is(err, ErrNoHello) {
		t.Fatalf("New() = %v", err)
	}
}

func TestRead(t *testing.T) {
	ops := append(initOps(),
		i2ctest.IO{Addr: DefaultAddr, R: []byte{0x5A, 0x11, 0x2C, 0x64, 0x00, 0x00, 0x00, 0x01}},
	)
	bus := &i2ctest.Playback{Ops: ops}
	defer func() {
		if err := bus.Close(); err != nil {
			t.Fatal(err)
		}
	}()
	rst, irq := newPins()
	d, err := New(bus, rst, irq, testOpts)
	if err != nil {
		t.Fatal(err)
	}
	irq.EdgesChan <- gpio.Low
	if !d.Available(time.Millisecond) {
		t.Fatal("report not announced")
	}
	r, err := d.Read()
	if err != nil {
		t.Fatal(err)
	}
	want := Report{
		Fingers: 1,
		Points:  [2]image.Point{{X: 568, Y: 378}, {X: 1023, Y: 0}},
	}
	if diff := cmp.Diff(want, r); diff != "" {
		t.Fatalf("Read() (-want +got):\n%s", diff)
	}
	if d.Available(time.Millisecond) {
		t.Fatal("spurious report")
	}
}

func TestPowerState(t *testing.T) {
	ops := append(initOps(),
		i2ctest.IO{Addr: DefaultAddr, W: []byte{0x53, 0x50, 0x00, 0x01}},
		i2ctest.IO{Addr: DefaultAddr, R: []byte{0x52, 0x58, 0x00, 0x01}},
		i2ctest.IO{Addr: DefaultAddr, W: []byte{0x54, 0x50, 0x00, 0x01}},
	)
	bus := &i2ctest.Playback{Ops: ops}
	defer func() {
		if err := bus.Close(); err != nil {
			t.Fatal(err)
		}
	}()
	rst, irq := newPins()
	d, err := New(bus, rst, irq, testOpts)
	if err != nil {
		t.Fatal(err)
	}
	on, err := d.PowerState()
	if err != nil {
		t.Fatal(err)
	}
	if !on {
		t.Fatal("controller should be awake")
	}
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
}
