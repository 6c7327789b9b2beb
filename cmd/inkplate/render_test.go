// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"image"
	"testing"

	"github.com/GermanBionicSystems/inkplate/inkplate"
)

func TestCompose(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Text = "periph"
	cfg.FontSize = 24
	b := image.Rect(0, 0, 120, 40)

	img, err := compose(b, cfg, inkplate.Mode1Bit)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != b {
		t.Fatal(img.Bounds())
	}
	black := 0
	for _, v := range img.Pix {
		switch v {
		case 0:
			black++
		case 0xFF:
		default:
			t.Fatalf("dithered image holds gray %d", v)
		}
	}
	if black == 0 {
		t.Fatal("no text drawn")
	}
	if img.GrayAt(0, 0).Y != 0xFF {
		t.Fatal("background is not white")
	}

	gray, err := compose(b, cfg, inkplate.Mode3Bit)
	if err != nil {
		t.Fatal(err)
	}
	if gray.GrayAt(0, 0).Y != 0xFF {
		t.Fatal("background is not white")
	}
}

func TestComposeMissingImage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Image = "does-not-exist.png"
	if _, err := compose(image.Rect(0, 0, 8, 8), cfg, inkplate.Mode3Bit); err == nil {
		t.Fatal("expected error")
	}
}
