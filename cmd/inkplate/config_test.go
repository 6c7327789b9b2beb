// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/GermanBionicSystems/inkplate/inkplate"
	"github.com/google/go-cmp/cmp"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if err := c.Normalize(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(piLayout, c.layout()); diff != "" {
		t.Fatalf("layout (-want +got):\n%s", diff)
	}
	if m, _ := c.mode(); m != inkplate.Mode1Bit {
		t.Fatal(m)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inkplate.yaml")
	data := []byte("mode: 3bit\nrotation: 90\nrefresh: \"*/5 * * * *\"\ntext: hello\ntouch:\n  enabled: true\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := DefaultConfig()
	want.Mode = "3bit"
	want.Rotation = 90
	want.Refresh = "*/5 * * * *"
	want.Text = "hello"
	want.Touch.Enabled = true
	if diff := cmp.Diff(want, c); diff != "" {
		t.Fatalf("Load() (-want +got):\n%s", diff)
	}
	if r, _ := c.rotation(); r != inkplate.Rotate90 {
		t.Fatal(r)
	}
}

func TestNormalizeInvalid(t *testing.T) {
	data := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"mode", func(c *Config) { c.Mode = "8bit" }},
		{"rotation", func(c *Config) { c.Rotation = 45 }},
		{"refresh", func(c *Config) { c.Refresh = "every minute" }},
		{"data length", func(c *Config) { c.Data = []int{1, 2, 3} }},
		{"bank bit", func(c *Config) { c.LE = 40 }},
		{"overlap", func(c *Config) { c.CL = c.Data[0] }},
		{"i2c sda", func(c *Config) { c.LE = 2 }},
		{"i2c scl", func(c *Config) { c.Data[7] = 3 }},
	}
	for _, line := range data {
		t.Run(line.name, func(t *testing.T) {
			c := DefaultConfig()
			line.mutate(c)
			if err := c.Normalize(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !os.IsNotExist(err) {
		t.Fatalf("Load() = %v", err)
	}
	if _, err := Load(""); err == nil {
		t.Fatal("expected error")
	}
}
