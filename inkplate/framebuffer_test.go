// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package inkplate

import (
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPhysical(t *testing.T) {
	const w, h = 16, 4
	corners := map[Rotation]image.Point{
		Rotate0:   {0, 0},
		Rotate90:  {w - 1, 0},
		Rotate180: {w - 1, h - 1},
		Rotate270: {0, h - 1},
	}
	for r, want := range corners {
		d := &Dev{width: w, height: h, rotation: r}
		x, y, ok := d.physical(0, 0)
		if !ok || x != want.X || y != want.Y {
			t.Errorf("%s: (0, 0) -> (%d, %d, %t), want %v", r, x, y, ok, want)
		}
		seen := map[image.Point]bool{}
		b := d.bounds()
		for ly := b.Min.Y; ly < b.Max.Y; ly++ {
			for lx := b.Min.X; lx < b.Max.X; lx++ {
				x, y, ok := d.physical(lx, ly)
				if !ok {
					t.Fatalf("%s: (%d, %d) is off panel", r, lx, ly)
				}
				seen[image.Pt(x, y)] = true
			}
		}
		if len(seen) != w*h {
			t.Errorf("%s: %d physical pixels reached, want %d", r, len(seen), w*h)
		}
		if _, _, ok := d.physical(b.Max.X, 0); ok {
			t.Errorf("%s: point past the bounds is on panel", r)
		}
		if _, _, ok := d.physical(-1, 0); ok {
			t.Errorf("%s: negative point is on panel", r)
		}
	}
}

func TestMonoFrame(t *testing.T) {
	f := newMonoFrame(16, 2)
	f.set(3, 0, 1)
	f.set(8, 1, 1)
	f.set(15, 1, 1)
	f.set(15, 1, 0)
	if diff := cmp.Diff([]byte{0x08, 0x00, 0x00, 0x01}, f.pix); diff != "" {
		t.Fatalf("pix (-want +got):\n%s", diff)
	}
	if f.get(3, 0) != 1 || f.get(4, 0) != 0 {
		t.Fatal("get does not match set")
	}
	copy(f.prev, f.pix)
	f.clear()
	if diff := cmp.Diff([]byte{0x08, 0x00, 0x00, 0x01}, f.prev); diff != "" {
		t.Fatalf("clear touched the history (-want +got):\n%s", diff)
	}
	f.reset()
	if diff := cmp.Diff(make([]byte, 4), f.prev); diff != "" {
		t.Fatalf("reset kept the history (-want +got):\n%s", diff)
	}
}

func TestGrayFrame(t *testing.T) {
	f := newGrayFrame(4, 1)
	if diff := cmp.Diff([]byte{0xFF, 0xFF}, f.pix); diff != "" {
		t.Fatalf("blank (-want +got):\n%s", diff)
	}
	if f.get(2, 0) != 7 {
		t.Fatal("blank pixel is not white")
	}
	f.set(0, 0, 2)
	f.set(1, 0, 5)
	f.set(3, 0, 0x0B)
	if diff := cmp.Diff([]byte{0x25, 0xF3}, f.pix); diff != "" {
		t.Fatalf("pix (-want +got):\n%s", diff)
	}
	if f.get(0, 0) != 2 || f.get(1, 0) != 5 || f.get(3, 0) != 3 {
		t.Fatal("get does not match set")
	}
	f.reset()
	if diff := cmp.Diff([]byte{0xFF, 0xFF}, f.pix); diff != "" {
		t.Fatalf("reset (-want +got):\n%s", diff)
	}
}
