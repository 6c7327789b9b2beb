// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package inkplatetest emulates the Inkplate board for tests and simulation.
//
// Board answers the I²C traffic of both MCP23017 expanders and the TPS65186
// PMIC. Panel decodes the source bus and gate lines and keeps the optical
// state of every pixel, so that a refresh can be checked by looking at the
// resulting image instead of the bus traffic.
package inkplatetest
