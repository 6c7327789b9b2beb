// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bitmap

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/bmp"
)

type recorder map[image.Point]uint8

func (r recorder) SetPixel(x, y int, c uint8) {
	r[image.Pt(x, y)] = c
}

// monoFile builds a 1 bit file; rows are given top to bottom.
func monoFile(width int, rows [][]byte, palette [8]byte) []byte {
	stride := (width + 31) / 32 * 4
	var b bytes.Buffer
	le := binary.LittleEndian
	hdr := make([]byte, headerSize)
	le.PutUint16(hdr[0:], Signature)
	le.PutUint32(hdr[2:], uint32(headerSize+8+stride*len(rows)))
	le.PutUint32(hdr[10:], headerSize+8)
	le.PutUint32(hdr[14:], 40)
	le.PutUint32(hdr[18:], uint32(width))
	le.PutUint32(hdr[22:], uint32(len(rows)))
	le.PutUint16(hdr[26:], 1)
	le.PutUint16(hdr[28:], 1)
	b.Write(hdr)
	b.Write(palette[:])
	for j := len(rows) - 1; j >= 0; j-- {
		row := make([]byte, stride)
		copy(row, rows[j])
		b.Write(row)
	}
	return b.Bytes()
}

var (
	blackWhite = [8]byte{0, 0, 0, 0, 0xFF, 0xFF, 0xFF, 0}
	whiteBlack = [8]byte{0xFF, 0xFF, 0xFF, 0, 0, 0, 0, 0}
)

func TestDecodeMono(t *testing.T) {
	rows := [][]byte{
		{0x80, 0x00},
		{0xFF, 0xC0},
	}
	for _, tc := range []struct {
		name    string
		palette [8]byte
		black   uint8
	}{
		{"standard palette", blackWhite, 1},
		{"inverted palette", whiteBlack, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := bytes.NewReader(monoFile(10, rows, tc.palette))
			h, err := ReadHeader(r)
			if err != nil {
				t.Fatal(err)
			}
			got := recorder{}
			if err := Decode(r, h, got, 5, 7); err != nil {
				t.Fatal(err)
			}
			want := recorder{}
			for x := 0; x < 10; x++ {
				want[image.Pt(5+x, 7)] = tc.black
				want[image.Pt(5+x, 8)] = 1 - tc.black
			}
			want[image.Pt(5, 7)] = 1 - tc.black
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Decode() difference (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeRGB(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(0, 0, color.White)
	img.Set(1, 0, color.Black)
	img.Set(2, 0, color.RGBA{128, 128, 128, 255})
	img.Set(0, 1, color.RGBA{255, 0, 0, 255})
	img.Set(1, 1, color.RGBA{0, 255, 0, 255})
	img.Set(2, 1, color.RGBA{0, 0, 255, 255})
	var b bytes.Buffer
	if err := bmp.Encode(&b, img); err != nil {
		t.Fatal(err)
	}
	r := bytes.NewReader(b.Bytes())
	h, err := ReadHeader(r)
	if err != nil {
		t.Fatal(err)
	}
	if h.BitsPerPixel != 24 {
		t.Fatalf("BitsPerPixel = %d", h.BitsPerPixel)
	}
	got := recorder{}
	if err := Decode(r, h, got, 0, 0); err != nil {
		t.Fatal(err)
	}
	want := recorder{
		image.Pt(0, 0): 7,
		image.Pt(1, 0): 0,
		image.Pt(2, 0): 4,
		image.Pt(0, 1): 1,
		image.Pt(1, 1): 5,
		image.Pt(2, 1): 0,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decode() difference (-want +got):\n%s", diff)
	}
}

func TestUnsupported(t *testing.T) {
	valid := monoFile(8, [][]byte{{0xFF}}, blackWhite)
	for _, tc := range []struct {
		name   string
		mutate func(b []byte)
	}{
		{"signature", func(b []byte) { b[0] = 'X' }},
		{"compression", func(b []byte) { b[30] = 1 }},
		{"depth", func(b []byte) { b[28] = 8 }},
		{"width", func(b []byte) { binary.LittleEndian.PutUint32(b[18:], 0) }},
		{"huge width", func(b []byte) { binary.LittleEndian.PutUint32(b[18:], 1<<31-1) }},
		{"huge height", func(b []byte) { binary.LittleEndian.PutUint32(b[22:], MaxSize+1) }},
		{"huge top-down height", func(b []byte) {
			binary.LittleEndian.PutUint32(b[22:], uint32(0xFFFFFFFF-MaxSize))
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b := append([]byte(nil), valid...)
			tc.mutate(b)
			r := bytes.NewReader(b)
			h, err := ReadHeader(r)
			if err != nil {
				t.Fatal(err)
			}
			got := recorder{}
			if err := Decode(r, h, got, 0, 0); !errors.Is(err, ErrUnsupported) {
				t.Fatalf("Decode() = %v, want ErrUnsupported", err)
			}
			if len(got) != 0 {
				t.Errorf("%d pixels drawn for an unsupported file", len(got))
			}
		})
	}
}

func TestShortHeader(t *testing.T) {
	if _, err := ReadHeader(bytes.NewReader([]byte("BM"))); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("ReadHeader() = %v", err)
	}
}
