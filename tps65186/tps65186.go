// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tps65186

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// DefaultAddr is the fixed I²C address of the chip.
const DefaultAddr uint16 = 0x48

// Registers.
const (
	RegTMST      byte = 0x00 // thermistor value, signed °C
	RegEnable    byte = 0x01
	RegUpSeq0    byte = 0x09
	RegTMST1     byte = 0x0D
	RegPowerGood byte = 0x0F
	RegRevision  byte = 0x10
)

const (
	// AllRails enables VEE, VNEG, VPOS, VDDH, VCOM and the 3.3V switch.
	AllRails byte = 0x3F
	// PowerGoodAll is the power-good register value once every rail is
	// within regulation.
	PowerGoodAll byte = 0xFA

	readThermistor byte = 0x80
)

// Sequence is the content of the UPSEQ0/UPSEQ1/DWNSEQ0/DWNSEQ1 registers.
type Sequence struct {
	Up, UpDelay, Down, DownDelay byte
}

// DefaultSequence is the strobe order used by the ED060XH7 panel.
var DefaultSequence = Sequence{Up: 0x1B, Down: 0x1B}

// Dev is a handle to a TPS65186.
type Dev struct {
	d *i2c.Dev
}

// New returns a handle to the chip at addr. No I/O is done; the chip only
// answers while WAKEUP is high.
func New(bus i2c.Bus, addr uint16) *Dev {
	return &Dev{d: &i2c.Dev{Bus: bus, Addr: addr}}
}

func (d *Dev) String() string {
	return fmt.Sprintf("tps65186.Dev{%s}", d.d)
}

// SetSequence programs the rail power up and power down order.
func (d *Dev) SetSequence(s Sequence) error {
	return d.write(RegUpSeq0, s.Up, s.UpDelay, s.Down, s.DownDelay)
}

// EnableRails writes the ENABLE register. Use AllRails to power the panel.
func (d *Dev) EnableRails(mask byte) error {
	return d.write(RegEnable, mask)
}

// PowerGood returns the raw power-good register.
func (d *Dev) PowerGood() (byte, error) {
	return d.read(RegPowerGood)
}

// Revision returns the chip revision register.
func (d *Dev) Revision() (byte, error) {
	return d.read(RegRevision)
}

// StartTemperature triggers a thermistor conversion. The result is available
// through ReadTemperature about 5ms later.
func (d *Dev) StartTemperature() error {
	return d.write(RegTMST1, readThermistor)
}

// ReadTemperature returns the last thermistor conversion.
func (d *Dev) ReadTemperature() (physic.Temperature, error) {
	v, err := d.read(RegTMST)
	if err != nil {
		return 0, err
	}
	return physic.ZeroCelsius + physic.Temperature(int8(v))*physic.Kelvin, nil
}

func (d *Dev) write(reg byte, v ...byte) error {
	if err := d.d.Tx(append([]byte{reg}, v...), nil); err != nil {
		return fmt.Errorf("tps65186: writing %#02x: %w", reg, err)
	}
	return nil
}

func (d *Dev) read(reg byte) (byte, error) {
	var r [1]byte
	if err := d.d.Tx([]byte{reg}, r[:]); err != nil {
		return 0, fmt.Errorf("tps65186: reading %#02x: %w", reg, err)
	}
	return r[0], nil
}
