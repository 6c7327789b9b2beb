// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package inkplate drives the ED060XH7 e-paper panel of the Inkplate 6PLUS
// board.
//
// The panel has no controller of its own: the host clocks every row out over
// an 8 bit parallel source bus and pulses the gate driver directly. This
// package owns the framebuffer, the waveform tables, the scan timing, the
// differential refresh and the power sequencing of the TPS65186 rails. Two
// MCP23017 expanders provide the slow control lines.
//
// Two framebuffer modes exist. Mode1Bit stores one bit per pixel (1 is black)
// and supports partial refresh. Mode3Bit stores eight gray levels (0 is black,
// 7 is white) and only supports full refresh. Switching modes clears the
// framebuffer and forces the next refresh to be a full one.
//
// # Datasheet
//
// https://www.ti.com/lit/ds/symlink/tps65186.pdf
package inkplate
