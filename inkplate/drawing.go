// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package inkplate

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/GermanBionicSystems/inkplate/bitmap"
	"periph.io/x/conn/v3/display"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// grayModel quantizes to the eight levels of Mode3Bit.
var grayModel = color.ModelFunc(func(c color.Color) color.Color {
	g := color.GrayModel.Convert(c).(color.Gray)
	return color.Gray{Y: level(g.Y >> 5)}
})

// level spreads a 3 bit level over the 8 bit gray range.
func level(v uint8) uint8 {
	return uint8(int(v) * 255 / 7)
}

// ColorModel implements display.Drawer.
//
// It is image1bit.BitModel in Mode1Bit and an eight level gray in Mode3Bit.
func (d *Dev) ColorModel() color.Model {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fb == d.gray {
		return grayModel
	}
	return image1bit.BitModel
}

// Bounds implements display.Drawer. It is the logical size, which depends on
// the rotation.
func (d *Dev) Bounds() image.Rectangle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bounds()
}

func (d *Dev) bounds() image.Rectangle {
	if d.rotation == Rotate90 || d.rotation == Rotate270 {
		return image.Rect(0, 0, d.height, d.width)
	}
	return image.Rect(0, 0, d.width, d.height)
}

// At implements image.Image.
func (d *Dev) At(x, y int) color.Color {
	d.mu.Lock()
	defer d.mu.Unlock()
	px, py, ok := d.physical(x, y)
	if d.fb == d.gray {
		if !ok {
			return color.Gray{Y: 255}
		}
		return color.Gray{Y: level(d.gray.get(px, py))}
	}
	if !ok {
		return image1bit.Off
	}
	// Bit set means black, image1bit.On is white.
	return image1bit.Bit(d.mono.get(px, py) == 0)
}

// Set implements draw.Image.
func (d *Dev) Set(x, y int, c color.Color) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fb == d.gray {
		g := color.GrayModel.Convert(c).(color.Gray)
		d.setPixel(x, y, g.Y>>5)
		return
	}
	var v uint8
	if !image1bit.BitModel.Convert(c).(image1bit.Bit) {
		v = 1
	}
	d.setPixel(x, y, v)
}

// SetPixel writes a framebuffer value at logical coordinates: 0 (white) or 1
// (black) in Mode1Bit, a level from 0 (black) to 7 (white) in Mode3Bit.
//
// Points outside the panel are ignored.
func (d *Dev) SetPixel(x, y int, c uint8) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.setPixel(x, y, c)
}

// Pixel returns the framebuffer value at logical coordinates.
func (d *Dev) Pixel(x, y int) uint8 {
	d.mu.Lock()
	defer d.mu.Unlock()
	px, py, ok := d.physical(x, y)
	if !ok {
		return 0
	}
	return d.fb.get(px, py)
}

func (d *Dev) setPixel(x, y int, c uint8) {
	px, py, ok := d.physical(x, y)
	if !ok {
		return
	}
	d.fb.set(px, py, c)
}

// Clear blanks the active framebuffer to white. The panel is not touched.
func (d *Dev) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fb.clear()
}

// Mode returns the active framebuffer mode.
func (d *Dev) Mode() Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fb.mode()
}

// SetMode switches the framebuffer mode. On a change both framebuffers and
// the refresh history are cleared so the next partial update runs a full
// refresh. Setting the active mode again keeps everything.
func (d *Dev) SetMode(m Mode) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var fb frame
	switch m {
	case Mode1Bit:
		fb = d.mono
	case Mode3Bit:
		fb = d.gray
	default:
		return fmt.Errorf("inkplate: unknown mode %s", m)
	}
	if fb == d.fb {
		return nil
	}
	d.fb = fb
	d.mono.reset()
	d.gray.reset()
	d.forceFull = true
	d.log.WithField("mode", m).Debug("inkplate: mode switched")
	return nil
}

// Rotation returns the logical rotation.
func (d *Dev) Rotation() Rotation {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rotation
}

// SetRotation changes how logical coordinates map to the panel. The
// framebuffer content is kept as is.
func (d *Dev) SetRotation(r Rotation) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rotation = r % 4
}

// Draw implements display.Drawer.
//
// It copies src into the framebuffer and runs a full refresh.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	draw.Draw(d, r, src, sp, draw.Src)
	return d.Display()
}

// DrawPartial copies src into the framebuffer and runs a partial update.
func (d *Dev) DrawPartial(r image.Rectangle, src image.Image, sp image.Point) error {
	draw.Draw(d, r, src, sp, draw.Src)
	return d.PartialUpdate()
}

// DrawBitmap decodes a BMP file into the framebuffer with its top left corner
// at (x, y). 1 bit files switch to Mode1Bit and 24 bit files to Mode3Bit.
//
// Nothing is drawn and the mode is kept for unsupported files.
func (d *Dev) DrawBitmap(r io.ReadSeeker, x, y int) error {
	h, err := bitmap.ReadHeader(r)
	if err != nil {
		return err
	}
	if err := h.Validate(); err != nil {
		return err
	}
	m := Mode1Bit
	if h.BitsPerPixel == 24 {
		m = Mode3Bit
	}
	if d.Mode() != m {
		if err := d.SetMode(m); err != nil {
			return err
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return bitmap.Decode(r, h, frameWriter{d}, x, y)
}

// frameWriter writes pixels with the lock already held.
type frameWriter struct {
	d *Dev
}

func (f frameWriter) SetPixel(x, y int, c uint8) {
	f.d.setPixel(x, y, c)
}

var _ display.Drawer = &Dev{}
var _ draw.Image = &Dev{}
