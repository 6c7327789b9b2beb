// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"image"

	"github.com/GermanBionicSystems/inkplate/inkplate"
	"github.com/GermanBionicSystems/inkplate/inkplate/inkplatetest"
	"github.com/GermanBionicSystems/inkplate/termview"
	"github.com/GermanBionicSystems/inkplate/touch"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
	"periph.io/x/host/v3/bcm283x"
)

// bank drives the source bus through the BCM283x set and clear registers, one
// register write per call.
type bank struct{}

func (bank) Set(mask uint32) {
	bcm283x.PinsSet0To31(mask)
}

func (bank) Clear(mask uint32) {
	bcm283x.PinsClear0To31(mask)
}

// board is an opened panel, real or simulated.
type board struct {
	dev   *inkplate.Dev
	touch *touch.Dev
	bus   i2c.BusCloser
	// preview shows the panel content in simulation.
	preview func() error
}

func (b *board) Close() error {
	var err error
	if b.touch != nil {
		err = b.touch.Halt()
	}
	if e := b.dev.Close(); err == nil {
		err = e
	}
	if b.bus != nil {
		if e := b.bus.Close(); err == nil {
			err = e
		}
	}
	return err
}

func openHardware(cfg *Config, opts *inkplate.Opts, log logrus.FieldLogger) (*board, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	if !bcm283x.Present() {
		return nil, errors.New("the source bus needs a BCM283x GPIO bank")
	}
	ckv, sph := gpioreg.ByName(cfg.CKV), gpioreg.ByName(cfg.SPH)
	if ckv == nil || sph == nil {
		return nil, fmt.Errorf("unknown pins %q or %q", cfg.CKV, cfg.SPH)
	}
	bus, err := i2creg.Open(cfg.I2C)
	if err != nil {
		return nil, err
	}
	for _, n := range append([]int{cfg.CL, cfg.LE}, cfg.Data...) {
		p := gpioreg.ByName(fmt.Sprintf("GPIO%d", n))
		if p == nil {
			bus.Close()
			return nil, fmt.Errorf("no GPIO%d", n)
		}
		if err := p.Out(gpio.Low); err != nil {
			bus.Close()
			return nil, err
		}
	}
	d, err := inkplate.New(bus, bank{}, ckv, sph, opts)
	if err != nil {
		bus.Close()
		return nil, err
	}
	b := &board{dev: d, bus: bus, preview: func() error { return nil }}
	if cfg.Touch.Enabled {
		rst, irq := gpioreg.ByName(cfg.Touch.Reset), gpioreg.ByName(cfg.Touch.Interrupt)
		if rst == nil || irq == nil {
			b.Close()
			return nil, fmt.Errorf("unknown touch pins %q or %q", cfg.Touch.Reset, cfg.Touch.Interrupt)
		}
		t, err := touch.New(bus, rst, irq, &touch.Opts{Width: opts.Width, Height: opts.Height})
		if err != nil {
			b.Close()
			return nil, err
		}
		b.touch = t
		log.WithField("touch", t).Info("touch controller ready")
	}
	return b, nil
}

// openSim returns a board backed by the emulator, previewed on the terminal.
func openSim(cfg *Config, opts *inkplate.Opts) (*board, error) {
	p := inkplatetest.NewPanel(opts.Width, opts.Height, opts.Layout)
	sim := inkplatetest.NewBoard(p)
	sim.SetTemperature(22)
	opts.Clock = inkplatetest.NewClock()
	d, err := inkplate.New(sim, p, p.CKV, p.SPH, opts)
	if err != nil {
		return nil, err
	}
	view := termview.New(&termview.Opts{Width: opts.Width, Height: opts.Height, Scale: cfg.Scale})
	return &board{
		dev: d,
		preview: func() error {
			return view.Draw(view.Bounds(), p.Image(), image.Point{})
		},
	}, nil
}
