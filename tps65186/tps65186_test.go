// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tps65186

import (
	"testing"

	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"
)

func TestPowerSequence(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: DefaultAddr, W: []byte{RegUpSeq0, 0x1B, 0x00, 0x1B, 0x00}},
			{Addr: DefaultAddr, W: []byte{RegEnable, AllRails}},
			{Addr: DefaultAddr, W: []byte{RegPowerGood}, R: []byte{PowerGoodAll}},
			{Addr: DefaultAddr, W: []byte{RegEnable, 0x00}},
		},
		DontPanic: true,
	}
	d := New(bus, DefaultAddr)
	if err := d.SetSequence(DefaultSequence); err != nil {
		t.Fatal(err)
	}
	if err := d.EnableRails(AllRails); err != nil {
		t.Fatal(err)
	}
	pg, err := d.PowerGood()
	if err != nil {
		t.Fatal(err)
	}
	if pg != PowerGoodAll {
		t.Errorf("PowerGood() = %#02x", pg)
	}
	if err := d.EnableRails(0); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestTemperature(t *testing.T) {
	tests := []struct {
		raw  byte
		want physic.Temperature
	}{
		{0x19, physic.ZeroCelsius + 25*physic.Kelvin},
		{0x00, physic.ZeroCelsius},
		{0xF6, physic.ZeroCelsius - 10*physic.Kelvin},
	}
	for _, tc := range tests {
		bus := &i2ctest.Playback{
			Ops: []i2ctest.IO{
				{Addr: DefaultAddr, W: []byte{RegTMST1, 0x80}},
				{Addr: DefaultAddr, W: []byte{RegTMST}, R: []byte{tc.raw}},
			},
			DontPanic: true,
		}
		d := New(bus, DefaultAddr)
		if err := d.StartTemperature(); err != nil {
			t.Fatal(err)
		}
		got, err := d.ReadTemperature()
		if err != nil {
			t.Fatal(err)
		}
		if got != tc.want {
			t.Errorf("ReadTemperature(%#02x) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}

func TestBusError(t *testing.T) {
	d := New(&i2ctest.Playback{DontPanic: true}, DefaultAddr)
	if _, err := d.PowerGood(); err == nil {
		t.Fatal("expected error on an empty bus")
	}
}
