// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package inkplate

import (
	"fmt"
)

// Mode is the framebuffer encoding.
type Mode uint8

// Supported Mode.
const (
	Mode1Bit Mode = iota
	Mode3Bit
)

func (m Mode) String() string {
	switch m {
	case Mode1Bit:
		return "1bit"
	case Mode3Bit:
		return "3bit"
	default:
		return fmt.Sprintf("Mode(%d)", m)
	}
}

// Set sets the Mode to a value represented by the string s. Set implements the flag.Value interface.
func (m *Mode) Set(s string) error {
	switch s {
	case "1bit", "1":
		*m = Mode1Bit
	case "3bit", "3":
		*m = Mode3Bit
	default:
		return fmt.Errorf("unknown mode %q: expected 1bit or 3bit", s)
	}
	return nil
}

// Rotation is a clockwise rotation of the logical coordinate space.
type Rotation uint8

// Valid Rotation.
const (
	Rotate0 Rotation = iota
	Rotate90
	Rotate180
	Rotate270
)

func (r Rotation) String() string {
	return fmt.Sprintf("%d°", 90*int(r%4))
}

// Set sets the Rotation to a value represented by the string s. Set implements the flag.Value interface.
func (r *Rotation) Set(s string) error {
	switch s {
	case "0":
		*r = Rotate0
	case "90":
		*r = Rotate90
	case "180":
		*r = Rotate180
	case "270":
		*r = Rotate270
	default:
		return fmt.Errorf("unknown rotation %q: expected 0, 90, 180 or 270", s)
	}
	return nil
}

// Drive is the 2 bit instruction sent for one pixel during one bus cycle.
type Drive uint8

// Valid Drive.
const (
	Discharge Drive = 0x0
	Black     Drive = 0x1
	White     Drive = 0x2
	Skip      Drive = 0x3
)

func (d Drive) String() string {
	switch d & 3 {
	case Discharge:
		return "discharge"
	case Black:
		return "black"
	case White:
		return "white"
	default:
		return "skip"
	}
}

// fill returns the data byte driving all four slots with d.
func (d Drive) fill() byte {
	d &= 3
	return byte(d | d<<2 | d<<4 | d<<6)
}

// PowerState is the state of the panel rails.
type PowerState uint8

// Valid PowerState. RailsEnabling and RailsDisabling are only observable
// from within a transition.
const (
	Off PowerState = iota
	RailsEnabling
	On
	RailsDisabling
)

func (p PowerState) String() string {
	switch p {
	case Off:
		return "off"
	case RailsEnabling:
		return "rails enabling"
	case On:
		return "on"
	case RailsDisabling:
		return "rails disabling"
	default:
		return fmt.Sprintf("PowerState(%d)", p)
	}
}
