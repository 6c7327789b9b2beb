// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package inkplate

// phases is the number of grayscale waveform phases.
const phases = 9

// waveform gives, for each gray level (0 black, 7 white), the Drive of every
// phase. A level L ends with L+1 white pulses after being cleaned to black;
// the last phase discharges.
var waveform = [8][phases]Drive{
	{Black, Black, Black, Black, Black, Black, Black, Black, Discharge},
	{Skip, Skip, Skip, Skip, Skip, Skip, Skip, White, Discharge},
	{Skip, Skip, Skip, Skip, Skip, Skip, White, White, Discharge},
	{Skip, Skip, Skip, Skip, Skip, White, White, White, Discharge},
	{Skip, Skip, Skip, Skip, White, White, White, White, Discharge},
	{Skip, Skip, Skip, White, White, White, White, White, Discharge},
	{Skip, Skip, White, White, White, White, White, White, Discharge},
	{White, White, White, White, White, White, White, White, Discharge},
}

// tables holds everything derived from the Layout. It is immutable once
// built.
type tables struct {
	// expand scatters a data byte onto the bank bits of D0..D7.
	expand [256]uint32
	// lutw and lutb turn a nibble of pixel bits into a data byte with White
	// (resp. Black) for set bits and Skip for the others.
	lutw [16]byte
	lutb [16]byte
	// glutLow packs the two pixels of a 3 bit framebuffer byte in slots 0
	// and 1, glutHigh in slots 2 and 3. Both are already expanded.
	glutLow  [phases][256]uint32
	glutHigh [phases][256]uint32

	data uint32
	cl   uint32
	le   uint32
}

func newTables(l *Layout) *tables {
	t := &tables{
		cl: 1 << l.CL,
		le: 1 << l.LE,
	}
	for _, b := range l.Data {
		t.data |= 1 << b
	}
	for v := 0; v < 256; v++ {
		var w uint32
		for i, b := range l.Data {
			if v&(1<<uint(i)) != 0 {
				w |= 1 << b
			}
		}
		t.expand[v] = w
	}
	for n := 0; n < 16; n++ {
		for k := uint(0); k < 4; k++ {
			w, b := Skip, Skip
			if n&(1<<k) != 0 {
				w, b = White, Black
			}
			t.lutw[n] |= byte(w) << (2 * k)
			t.lutb[n] |= byte(b) << (2 * k)
		}
	}
	for p := 0; p < phases; p++ {
		for v := 0; v < 256; v++ {
			// Even pixel in the high nibble goes first.
			z := byte(waveform[v>>4&7][p]) | byte(waveform[v&7][p])<<2
			t.glutLow[p][v] = t.expand[z]
			t.glutHigh[p][v] = t.expand[z<<4]
		}
	}
	return t
}
