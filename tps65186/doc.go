// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package tps65186 controls the Texas Instruments TPS65186 e-paper power
// management IC.
//
// The chip generates the gate and source rails of an e-paper panel. Its
// WAKEUP and PWRUP inputs are driven by the host (usually through an
// expander); this package only covers the I²C register interface.
//
// # Datasheet
//
// https://www.ti.com/lit/ds/symlink/tps65186.pdf
package tps65186
