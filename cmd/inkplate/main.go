// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// inkplate draws an image, a text or a BMP file on an Inkplate 6PLUS panel,
// once or on a cron schedule.
//
// With -sim the board is emulated and the panel is previewed on the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GermanBionicSystems/inkplate/inkplate"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

func mainImpl() error {
	configPath := flag.String("config", "", "YAML configuration file")
	sim := flag.Bool("sim", false, "emulate the board and preview on the terminal")
	verbose := flag.Bool("d", false, "debug logging")
	var mode inkplate.Mode
	flag.Var(&mode, "mode", "framebuffer mode: 1bit or 3bit")
	var rotation inkplate.Rotation
	flag.Var(&rotation, "rotation", "rotation: 0, 90, 180 or 270")
	text := flag.String("text", "", "text to draw")
	img := flag.String("image", "", "image file to draw")
	bmp := flag.String("bmp", "", "1 or 24 bit BMP file to draw")
	refreshSpec := flag.String("refresh", "", "cron schedule of the refresh")
	flag.Parse()
	if flag.NArg() != 0 {
		return fmt.Errorf("unexpected argument: %v", flag.Args())
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg := DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = Load(*configPath); err != nil {
			return err
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			cfg.Mode = mode.String()
		case "rotation":
			cfg.Rotation = 90 * int(rotation)
		case "text":
			cfg.Text = *text
		case "image":
			cfg.Image = *img
		case "bmp":
			cfg.Bitmap = *bmp
		case "refresh":
			cfg.Refresh = *refreshSpec
		}
	})
	if err := cfg.Normalize(); err != nil {
		return err
	}

	opts := inkplate.Inkplate6Plus
	opts.Layout = cfg.layout()
	opts.Mode, _ = cfg.mode()
	opts.Rotation, _ = cfg.rotation()
	opts.Logger = log

	var b *board
	var err error
	if *sim {
		b, err = openSim(cfg, &opts)
	} else {
		b, err = openHardware(cfg, &opts, log)
	}
	if err != nil {
		return err
	}
	defer b.Close()
	log.WithField("dev", b.dev).Info("panel ready")

	run := func(full bool) error {
		start := time.Now()
		if err := render(b.dev, cfg, full); err != nil {
			return err
		}
		fields := logrus.Fields{"duration": time.Since(start).Round(time.Millisecond)}
		if t, err := b.dev.Temperature(); err == nil {
			fields["temperature"] = t
		}
		log.WithFields(fields).Info("refreshed")
		return b.preview()
	}
	if err := run(true); err != nil {
		return err
	}
	if cfg.Refresh == "" {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	c := cron.New(cron.WithLogger(cron.PrintfLogger(log)))
	if _, err := c.AddFunc(cfg.Refresh, func() {
		if err := run(false); err != nil {
			log.WithError(err).Error("refresh failed")
		}
	}); err != nil {
		return err
	}
	c.Start()
	defer c.Stop()
	if b.touch != nil {
		go watchTouch(ctx, b, log)
	}
	<-ctx.Done()
	log.Info("shutting down")
	return nil
}

// watchTouch logs touch reports until ctx is done.
func watchTouch(ctx context.Context, b *board, log logrus.FieldLogger) {
	for ctx.Err() == nil {
		if !b.touch.Available(time.Second) {
			continue
		}
		r, err := b.touch.Read()
		if err != nil {
			log.WithError(err).Warn("touch read")
			continue
		}
		if r.Fingers > 0 {
			log.WithFields(logrus.Fields{"fingers": r.Fingers, "at": r.Points[0]}).Info("touch")
		}
	}
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "inkplate: %s.\n", err)
		os.Exit(1)
	}
}
