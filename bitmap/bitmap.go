// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package bitmap reads Windows BMP files into a panel framebuffer.
//
// Only uncompressed 1 bit and 24 bit files are accepted. 1 bit files map to
// black and white, 24 bit files to the eight gray levels of a 3 bit panel.
package bitmap

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/image/bmp"
)

// Signature is "BM" read as a little endian uint16.
const Signature = 0x4D42

const headerSize = 54

// MaxSize bounds the width and height of accepted files.
const MaxSize = 4096

// ErrUnsupported is returned for files that are not uncompressed 1 or 24 bit
// bitmaps.
var ErrUnsupported = errors.New("bitmap: unsupported file")

// Header is the file header followed by the BITMAPINFOHEADER fields used for
// decoding.
type Header struct {
	Signature    uint16
	FileSize     uint32
	DataOffset   uint32
	InfoSize     uint32
	Width        int32
	Height       int32
	BitsPerPixel uint16
	Compression  uint32
}

// PixelWriter receives decoded pixels. c is 0 (white) or 1 (black) for 1 bit
// files and a gray level from 0 (black) to 7 (white) for 24 bit files.
type PixelWriter interface {
	SetPixel(x, y int, c uint8)
}

// ReadHeader reads the header at the start of r.
func ReadHeader(r io.ReadSeeker) (Header, error) {
	var h Header
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return h, err
	}
	var b [headerSize]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return h, fmt.Errorf("%w: short header: %v", ErrUnsupported, err)
	}
	le := binary.LittleEndian
	h.Signature = le.Uint16(b[0:])
	h.FileSize = le.Uint32(b[2:])
	h.DataOffset = le.Uint32(b[10:])
	h.InfoSize = le.Uint32(b[14:])
	h.Width = int32(le.Uint32(b[18:]))
	h.Height = int32(le.Uint32(b[22:]))
	h.BitsPerPixel = le.Uint16(b[28:])
	h.Compression = le.Uint32(b[30:])
	return h, nil
}

// Validate checks that the file can be decoded.
func (h *Header) Validate() error {
	switch {
	case h.Signature != Signature:
		return fmt.Errorf("%w: bad signature %#04x", ErrUnsupported, h.Signature)
	case h.Compression != 0:
		return fmt.Errorf("%w: compression %d", ErrUnsupported, h.Compression)
	case h.BitsPerPixel != 1 && h.BitsPerPixel != 24:
		return fmt.Errorf("%w: %d bits per pixel", ErrUnsupported, h.BitsPerPixel)
	case h.Width <= 0 || h.Height == 0 || h.Width > MaxSize || h.Height > MaxSize || h.Height < -MaxSize:
		return fmt.Errorf("%w: size %dx%d", ErrUnsupported, h.Width, h.Height)
	}
	return nil
}

// Decode draws the image described by h at (x, y). The header is validated
// first so that nothing is drawn for an unsupported file.
func Decode(r io.ReadSeeker, h Header, w PixelWriter, x, y int) error {
	if err := h.Validate(); err != nil {
		return err
	}
	if h.BitsPerPixel == 1 {
		return decodeMono(r, h, w, x, y)
	}
	return decodeRGB(r, w, x, y)
}

// decodeMono reads 1 bit rows, padded to 32 bits and stored bottom-up unless
// the height is negative. The palette decides which index is black.
func decodeMono(r io.ReadSeeker, h Header, w PixelWriter, x, y int) error {
	black, err := monoPalette(r, h)
	if err != nil {
		return err
	}
	if _, err := r.Seek(int64(h.DataOffset), io.SeekStart); err != nil {
		return err
	}
	width, height := int(h.Width), int(h.Height)
	topDown := height < 0
	if topDown {
		height = -height
	}
	row := make([]byte, (width+31)/32*4)
	for j := 0; j < height; j++ {
		if _, err := io.ReadFull(r, row); err != nil {
			return fmt.Errorf("bitmap: reading row %d: %w", j, err)
		}
		py := y + height - 1 - j
		if topDown {
			py = y + j
		}
		for i := 0; i < width; i++ {
			w.SetPixel(x+i, py, black[row[i/8]>>uint(7-i%8)&1])
		}
	}
	return nil
}

// monoPalette returns the pixel value of palette index 0 and 1. Without a
// readable palette index 1 is white.
func monoPalette(r io.ReadSeeker, h Header) ([2]uint8, error) {
	black := [2]uint8{1, 0}
	start := int64(14 + h.InfoSize)
	if h.InfoSize == 0 || int64(h.DataOffset) < start+8 {
		return black, nil
	}
	if _, err := r.Seek(start, io.SeekStart); err != nil {
		return black, err
	}
	var p [8]byte
	if _, err := io.ReadFull(r, p[:]); err != nil {
		return black, fmt.Errorf("bitmap: reading palette: %w", err)
	}
	for i := range black {
		// Entries are B, G, R, reserved.
		if luminance(uint32(p[4*i+2]), uint32(p[4*i+1]), uint32(p[4*i])) < 128 {
			black[i] = 1
		} else {
			black[i] = 0
		}
	}
	return black, nil
}

func decodeRGB(r io.ReadSeeker, w PixelWriter, x, y int) error {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return err
	}
	img, err := bmp.Decode(r)
	if err != nil {
		return fmt.Errorf("bitmap: %w", err)
	}
	b := img.Bounds()
	for py := b.Min.Y; py < b.Max.Y; py++ {
		for px := b.Min.X; px < b.Max.X; px++ {
			cr, cg, cb, _ := img.At(px, py).RGBA()
			w.SetPixel(x+px-b.Min.X, y+py-b.Min.Y, luminance(cr>>8, cg>>8, cb>>8)>>5)
		}
	}
	return nil
}

// luminance uses the Rec. 709 weights on 8 bit channels.
func luminance(r, g, b uint32) uint8 {
	return uint8((2126*r + 7152*g + 722*b) / 10000)
}
