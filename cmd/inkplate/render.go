// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	"github.com/GermanBionicSystems/inkplate/inkplate"
	"github.com/MaxHalford/halfgone"
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

// compose renders the configured image and text on a white canvas of the
// given size. In 1 bit mode the result is dithered.
func compose(b image.Rectangle, cfg *Config, mode inkplate.Mode) (*image.Gray, error) {
	w, h := b.Dx(), b.Dy()
	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	if cfg.Image != "" {
		src, err := imaging.Open(cfg.Image)
		if err != nil {
			return nil, err
		}
		dc.DrawImageAnchored(imaging.Fit(src, w, h, imaging.Lanczos), w/2, h/2, 0.5, 0.5)
	}
	if cfg.Text != "" {
		f, err := truetype.Parse(goregular.TTF)
		if err != nil {
			return nil, err
		}
		dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: cfg.FontSize}))
		dc.SetRGB(0, 0, 0)
		dc.DrawStringWrapped(cfg.Text, float64(w)/2, float64(h)/2, 0.5, 0.5, float64(w)*0.9, 1.5, gg.AlignCenter)
	}
	gray := image.NewGray(image.Rect(0, 0, w, h))
	draw.Draw(gray, gray.Bounds(), dc.Image(), image.Point{}, draw.Src)
	if mode == inkplate.Mode1Bit {
		return halfgone.FloydSteinbergDitherer{}.Apply(gray), nil
	}
	return gray, nil
}

// render draws the configured content and refreshes the panel. full forces a
// full refresh when partial updates are enabled.
func render(d *inkplate.Dev, cfg *Config, full bool) error {
	if cfg.Bitmap != "" {
		f, err := os.Open(cfg.Bitmap)
		if err != nil {
			return err
		}
		defer f.Close()
		d.Clear()
		if err := d.DrawBitmap(f, 0, 0); err != nil {
			return fmt.Errorf("%s: %w", cfg.Bitmap, err)
		}
		return refresh(d, cfg, full)
	}
	img, err := compose(d.Bounds(), cfg, d.Mode())
	if err != nil {
		return err
	}
	draw.Draw(d, d.Bounds(), img, image.Point{}, draw.Src)
	return refresh(d, cfg, full)
}

func refresh(d *inkplate.Dev, cfg *Config, full bool) error {
	if cfg.Partial && !full && d.Mode() == inkplate.Mode1Bit {
		return d.PartialUpdate()
	}
	return d.Display()
}
