// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/GermanBionicSystems/inkplate/inkplate"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config is the YAML configuration of the tool. Flags override it.
type Config struct {
	// I2C is the bus name passed to i2creg.Open, empty for the first bus.
	I2C string `yaml:"i2c"`
	// CKV and SPH are the gpioreg names of the gate clock and source start
	// pulse lines.
	CKV string `yaml:"ckv"`
	SPH string `yaml:"sph"`
	// Data, CL and LE are the host bank bits of the source bus.
	Data []int `yaml:"data"`
	CL   int   `yaml:"cl"`
	LE   int   `yaml:"le"`

	// Mode is "1bit" or "3bit".
	Mode string `yaml:"mode"`
	// Rotation is 0, 90, 180 or 270.
	Rotation int `yaml:"rotation"`
	// Partial uses partial updates in 1 bit mode after the first refresh.
	Partial bool `yaml:"partial"`
	// Refresh is a cron schedule; empty draws once and exits.
	Refresh string `yaml:"refresh"`

	// Content. Bitmap takes precedence over Image and Text.
	Bitmap   string  `yaml:"bitmap"`
	Image    string  `yaml:"image"`
	Text     string  `yaml:"text"`
	FontSize float64 `yaml:"font_size"`

	Touch TouchConfig `yaml:"touch"`
	// Scale is the terminal preview downscale factor in simulation.
	Scale int `yaml:"scale"`
}

// TouchConfig enables the touch controller.
type TouchConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Reset     string `yaml:"reset"`
	Interrupt string `yaml:"interrupt"`
}

// piLayout is the source bus wiring on a Raspberry Pi header. It stays clear
// of the I²C (GPIO0-3), SPI0 (GPIO7-11) and UART (GPIO14-15) lines and of the
// default CKV, SPH and touch pins.
var piLayout = inkplate.Layout{
	Data: [8]uint8{4, 5, 6, 18, 19, 20, 21, 22},
	CL:   23,
	LE:   24,
}

// i2cBits are the bank bits of I2C0 and I2C1.
const i2cBits = 4

// DefaultConfig returns the Raspberry Pi wiring.
func DefaultConfig() *Config {
	l := piLayout
	data := make([]int, len(l.Data))
	for i, b := range l.Data {
		data[i] = int(b)
	}
	return &Config{
		CKV:      "GPIO12",
		SPH:      "GPIO13",
		Data:     data,
		CL:       int(l.CL),
		LE:       int(l.LE),
		Mode:     inkplate.Mode1Bit.String(),
		FontSize: 48,
		Touch: TouchConfig{
			Reset:     "GPIO16",
			Interrupt: "GPIO17",
		},
		Scale: 8,
	}
}

// Normalize fills in zero values and validates the rest.
func (c *Config) Normalize() error {
	def := DefaultConfig()
	if c.CKV == "" {
		c.CKV = def.CKV
	}
	if c.SPH == "" {
		c.SPH = def.SPH
	}
	if len(c.Data) == 0 {
		c.Data, c.CL, c.LE = def.Data, def.CL, def.LE
	}
	if len(c.Data) != 8 {
		return fmt.Errorf("config: data needs 8 bank bits, got %d", len(c.Data))
	}
	seen := map[int]bool{}
	for _, b := range append([]int{c.CL, c.LE}, c.Data...) {
		if b < 0 || b > 31 {
			return fmt.Errorf("config: bank bit %d out of range", b)
		}
		if b < i2cBits {
			return fmt.Errorf("config: bank bit %d is an I²C line", b)
		}
		if seen[b] {
			return fmt.Errorf("config: bank bit %d used twice", b)
		}
		seen[b] = true
	}
	if c.Mode == "" {
		c.Mode = def.Mode
	}
	if _, err := c.mode(); err != nil {
		return err
	}
	if _, err := c.rotation(); err != nil {
		return err
	}
	if c.Refresh != "" {
		if _, err := cron.ParseStandard(c.Refresh); err != nil {
			return fmt.Errorf("config: refresh: %w", err)
		}
	}
	if c.FontSize <= 0 {
		c.FontSize = def.FontSize
	}
	if c.Touch.Reset == "" {
		c.Touch.Reset = def.Touch.Reset
	}
	if c.Touch.Interrupt == "" {
		c.Touch.Interrupt = def.Touch.Interrupt
	}
	if c.Scale < 1 {
		c.Scale = def.Scale
	}
	return nil
}

func (c *Config) mode() (inkplate.Mode, error) {
	var m inkplate.Mode
	if err := m.Set(c.Mode); err != nil {
		return m, fmt.Errorf("config: %w", err)
	}
	return m, nil
}

func (c *Config) rotation() (inkplate.Rotation, error) {
	var r inkplate.Rotation
	if err := r.Set(fmt.Sprint(c.Rotation)); err != nil {
		return r, fmt.Errorf("config: %w", err)
	}
	return r, nil
}

func (c *Config) layout() inkplate.Layout {
	var l inkplate.Layout
	for i, b := range c.Data {
		l.Data[i] = uint8(b)
	}
	l.CL, l.LE = uint8(c.CL), uint8(c.LE)
	return l
}

// Load reads the YAML file at path over the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config: path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}
