// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package termview implements a display.Drawer that previews a panel image on
// a terminal using ANSI color codes.
//
// It is the screen of the simulated board: the emulated panel image is drawn
// here after every refresh.
package termview

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
)

// Opts represents the options available for this display.
type Opts struct {
	// Width and Height of the previewed image in pixels.
	Width  int
	Height int
	// Scale is the side of the pixel square averaged into one character
	// cell. 0 means 1.
	Scale   int
	Palette *ansi256.Palette
	// W defaults to stdout.
	W io.Writer

	_ struct{}
}

// Dev is a terminal preview of a gray panel.
type Dev struct {
	w       io.Writer
	scale   int
	palette ansi256.Palette

	img *image.Gray
	buf bytes.Buffer
}

// New returns a Dev that displays at the console.
func New(opts *Opts) *Dev {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.W
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	s := opts.Scale
	if s < 1 {
		s = 1
	}
	return &Dev{
		w:       w,
		scale:   s,
		palette: *p,
		img:     image.NewGray(image.Rect(0, 0, opts.Width, opts.Height)),
	}
}

func (d *Dev) String() string {
	return fmt.Sprintf("TermView{%dx%d}", d.img.Rect.Dx(), d.img.Rect.Dy())
}

// Halt implements conn.Resource.
//
// It resets the terminal colors.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\033[0m\n"))
	return err
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return color.GrayModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return d.img.Rect
}

// Draw implements display.Drawer.
//
// The whole preview is printed again after every call.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	draw.Draw(d.img, r, src, sp, draw.Src)
	return d.refresh()
}

func (d *Dev) refresh() error {
	d.buf.Reset()
	b := d.img.Rect
	for y := b.Min.Y; y < b.Max.Y; y += d.scale {
		_, _ = d.buf.WriteString("\033[0m")
		for x := b.Min.X; x < b.Max.X; x += d.scale {
			g := d.average(x, y)
			_, _ = io.WriteString(&d.buf, d.palette.Block(color.NRGBA{g, g, g, 255}))
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	_, err := d.buf.WriteTo(d.w)
	return err
}

// average returns the mean gray of the cell starting at (x, y).
func (d *Dev) average(x, y int) uint8 {
	cell := image.Rect(x, y, x+d.scale, y+d.scale).Intersect(d.img.Rect)
	sum, n := 0, 0
	for j := cell.Min.Y; j < cell.Max.Y; j++ {
		for i := cell.Min.X; i < cell.Max.X; i++ {
			sum += int(d.img.GrayAt(i, j).Y)
			n++
		}
	}
	return uint8(sum / n)
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
