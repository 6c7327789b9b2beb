// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package inkplate

import "time"

// Clock is the time source of the scan and power sequences.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// SystemClock is the host clock.
//
// Sleeps shorter than a millisecond busy-wait, the scheduler granularity is
// too coarse for the scan timing.
var SystemClock Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	if d >= time.Millisecond {
		time.Sleep(d)
		return
	}
	for start := time.Now(); time.Since(start) < d; {
	}
}
