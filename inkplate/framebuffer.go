// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package inkplate

// frame is the pixel storage of one Mode. Coordinates are physical and
// already bounds checked.
type frame interface {
	mode() Mode
	set(x, y int, c uint8)
	get(x, y int) uint8
	clear()
	// reset clears every buffer including the refresh history.
	reset()
}

// monoFrame stores one bit per pixel, 1 is black. Bit x%8 of byte x/8 holds
// pixel x.
type monoFrame struct {
	stride int
	pix    []byte
	// prev is the image currently shown on the panel.
	prev []byte
}

func newMonoFrame(w, h int) *monoFrame {
	return &monoFrame{
		stride: w / 8,
		pix:    make([]byte, w/8*h),
		prev:   make([]byte, w/8*h),
	}
}

func (f *monoFrame) mode() Mode {
	return Mode1Bit
}

func (f *monoFrame) set(x, y int, c uint8) {
	i := y*f.stride + x/8
	m := byte(1) << uint(x%8)
	if c != 0 {
		f.pix[i] |= m
	} else {
		f.pix[i] &^= m
	}
}

func (f *monoFrame) get(x, y int) uint8 {
	return f.pix[y*f.stride+x/8] >> uint(x%8) & 1
}

func (f *monoFrame) clear() {
	for i := range f.pix {
		f.pix[i] = 0
	}
}

func (f *monoFrame) reset() {
	f.clear()
	for i := range f.prev {
		f.prev[i] = 0
	}
}

// grayFrame stores a 3 bit level per nibble, 0 is black and 7 white. Even x
// lives in the high nibble.
type grayFrame struct {
	stride int
	pix    []byte
}

func newGrayFrame(w, h int) *grayFrame {
	f := &grayFrame{
		stride: w / 2,
		pix:    make([]byte, w/2*h),
	}
	f.clear()
	return f
}

func (f *grayFrame) mode() Mode {
	return Mode3Bit
}

func (f *grayFrame) set(x, y int, c uint8) {
	i := y*f.stride + x/2
	c &= 7
	if x%2 == 0 {
		f.pix[i] = f.pix[i]&0x0F | c<<4
	} else {
		f.pix[i] = f.pix[i]&0xF0 | c
	}
}

func (f *grayFrame) get(x, y int) uint8 {
	v := f.pix[y*f.stride+x/2]
	if x%2 == 0 {
		v >>= 4
	}
	return v & 7
}

func (f *grayFrame) clear() {
	for i := range f.pix {
		f.pix[i] = 0xFF
	}
}

func (f *grayFrame) reset() {
	f.clear()
}

// physical maps logical coordinates to the panel, reporting whether the
// point is on the panel.
func (d *Dev) physical(x, y int) (int, int, bool) {
	w, h := d.width, d.height
	switch d.rotation {
	case Rotate90:
		x, y = w-1-y, x
	case Rotate180:
		x, y = w-1-x, h-1-y
	case Rotate270:
		x, y = y, h-1-x
	}
	return x, y, x >= 0 && x < w && y >= 0 && y < h
}
