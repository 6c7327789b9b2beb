// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package mcp23017 drives the Microchip MCP23017 16-bit I²C GPIO expander.
//
// The driver keeps a host-side image of the 22 chip registers (IOCON.BANK=0
// layout) and pushes only the bytes that change, so that a pin toggle costs a
// single two byte write on the bus. Each of the 16 pins is also exposed as a
// gpio.PinIO and registered with gpioreg.
//
// # Datasheet
//
// https://ww1.microchip.com/downloads/en/DeviceDoc/20001952C.pdf
package mcp23017
