// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package inkplate

import (
	"testing"
)

func TestModeSet(t *testing.T) {
	var m Mode
	if err := m.Set("3bit"); err != nil || m != Mode3Bit {
		t.Fatalf("Set(3bit) = %v, %s", err, m)
	}
	if err := m.Set("1"); err != nil || m != Mode1Bit {
		t.Fatalf("Set(1) = %v, %s", err, m)
	}
	if err := m.Set("8bit"); err == nil {
		t.Fatal("expected error")
	}
	if s := Mode(7).String(); s != "Mode(7)" {
		t.Fatalf("String() = %q", s)
	}
}

func TestRotationSet(t *testing.T) {
	var r Rotation
	if err := r.Set("270"); err != nil || r != Rotate270 {
		t.Fatalf("Set(270) = %v, %s", err, r)
	}
	if s := r.String(); s != "270°" {
		t.Fatalf("String() = %q", s)
	}
	if err := r.Set("45"); err == nil {
		t.Fatal("expected error")
	}
}

func TestDrive(t *testing.T) {
	data := []struct {
		d    Drive
		fill byte
		s    string
	}{
		{Discharge, 0x00, "discharge"},
		{Black, 0x55, "black"},
		{White, 0xAA, "white"},
		{Skip, 0xFF, "skip"},
	}
	for _, line := range data {
		if f := line.d.fill(); f != line.fill {
			t.Errorf("%s.fill() = %#02x, want %#02x", line.d, f, line.fill)
		}
		if s := line.d.String(); s != line.s {
			t.Errorf("String() = %q, want %q", s, line.s)
		}
	}
}
