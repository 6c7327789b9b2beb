// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package devices is a container for the Inkplate 6PLUS board drivers.
//
// The panel driver lives in inkplate, the chips it sequences in mcp23017 and
// tps65186, and the touch controller in touch.
package devices
