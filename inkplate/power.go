// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package inkplate

import (
	"errors"
	"fmt"
	"time"

	"github.com/GermanBionicSystems/inkplate/tps65186"
	"periph.io/x/conn/v3/gpio"
)

// ErrPowerGood is returned when the rails do not come up in time. The panel
// is left powered down.
var ErrPowerGood = errors.New("inkplate: panel did not turn on")

// PowerState returns the state of the panel rails.
func (d *Dev) PowerState() PowerState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// PowerOn enables the panel rails. It is a no-op when they are already on.
//
// Refreshes power the panel on and off on their own; use PowerOn to keep it
// powered across several refreshes.
func (d *Dev) PowerOn() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.powerOn()
}

// PowerOff disables the panel rails. It is a no-op when they are already off.
func (d *Dev) PowerOff() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.powerOff()
}

func (d *Dev) powerOn() error {
	if d.state == On {
		return nil
	}
	d.state = RailsEnabling
	eh := errorHandler{}
	eh.out(d.wakeup, gpio.High)
	d.clock.Sleep(time.Millisecond)
	eh.out(d.pwrup, gpio.High)
	eh.do(func() error {
		return d.pmic.EnableRails(tps65186.AllRails)
	})
	d.bus.Clear(d.t.le | d.t.cl)
	eh.out(d.oe, gpio.Low)
	eh.out(d.sph, gpio.High)
	eh.out(d.gmod, gpio.High)
	eh.out(d.spv, gpio.High)
	eh.out(d.ckv, gpio.Low)
	eh.out(d.vcom, gpio.High)

	good := false
	eh.do(func() (err error) {
		good, err = d.waitPowerGood(func(v byte) bool { return v == tps65186.PowerGoodAll })
		return err
	})
	if eh.err == nil && good {
		eh.out(d.oe, gpio.High)
	}
	if eh.err != nil || !good {
		if err := d.release(); err != nil {
			d.log.WithError(err).Warn("inkplate: releasing control lines")
		}
		d.state = Off
		if eh.err != nil {
			return fmt.Errorf("inkplate: power on: %w", eh.err)
		}
		d.log.WithField("timeout", d.timings.PowerGoodTimeout).Warn("inkplate: power good timeout")
		return ErrPowerGood
	}
	d.state = On
	d.log.Debug("inkplate: panel on")
	return nil
}

func (d *Dev) powerOff() error {
	if d.state == Off {
		return nil
	}
	d.state = RailsDisabling
	err := d.release()
	if err == nil {
		// The PMIC may stop answering once WAKEUP is low, which also means
		// the rails are down.
		down, perr := d.waitPowerGood(func(v byte) bool { return v == 0 })
		if perr == nil && !down {
			d.log.Warn("inkplate: rails still up after power off")
		}
	}
	d.state = Off
	d.log.Debug("inkplate: panel off")
	if err != nil {
		return fmt.Errorf("inkplate: power off: %w", err)
	}
	return nil
}

// release drives every control line to its off level, then drops the PMIC
// enables. Every line is attempted; the first error is returned.
func (d *Dev) release() error {
	var first error
	low := func(p gpio.PinOut) {
		if err := p.Out(gpio.Low); err != nil && first == nil {
			first = err
		}
	}
	low(d.oe)
	low(d.gmod)
	d.bus.Clear(d.t.data | d.t.le | d.t.cl)
	low(d.ckv)
	low(d.sph)
	low(d.spv)
	low(d.vcom)
	d.clock.Sleep(d.timings.VCOMSettle)
	low(d.pwrup)
	low(d.wakeup)
	return first
}

// waitPowerGood polls the power good register until ok accepts it or the
// timeout expires.
func (d *Dev) waitPowerGood(ok func(byte) bool) (bool, error) {
	deadline := d.clock.Now().Add(d.timings.PowerGoodTimeout)
	for {
		d.clock.Sleep(d.timings.PowerGoodPoll)
		v, err := d.pmic.PowerGood()
		if err != nil {
			return false, err
		}
		if ok(v) {
			return true, nil
		}
		if !d.clock.Now().Before(deadline) {
			return false, nil
		}
	}
}
