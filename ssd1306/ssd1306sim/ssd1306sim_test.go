// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1306sim

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/physic"
)

func newTestSim(t *testing.T, w, h int) (*Sim, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return New(&Opts{W: w, H: h, Out: &out}), &out
}

func TestNew(t *testing.T) {
	s, _ := newTestSim(t, 0, 0)
	if got, want := s.String(), "ssd1306sim(128x64@0x3C)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	want := State{Contrast: 0x7F, MemoryMode: 0x02, Multiplex: 0x3F, COMPins: 0x12}
	if diff := cmp.Diff(s.State(), want); diff != "" {
		t.Errorf("State() difference (-got +want):\n%s", diff)
	}
	if s.out == nil {
		t.Error("nil default output")
	}
	if d := New(nil); d.w != 128 || d.h != 64 {
		t.Errorf("New(nil) = %dx%d", d.w, d.h)
	}
}

func TestNewClampsGeometry(t *testing.T) {
	for _, tc := range []struct {
		name       string
		w, h       int
		wantW      int
		wantH      int
		wantString string
	}{
		{"too wide", 132, 64, 128, 64, "ssd1306sim(128x64@0x3C)"},
		{"too tall", 128, 72, 128, 64, "ssd1306sim(128x64@0x3C)"},
		{"negative", -8, -1, 128, 64, "ssd1306sim(128x64@0x3C)"},
		{"small", 64, 32, 64, 32, "ssd1306sim(64x32@0x3C)"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s, out := newTestSim(t, tc.w, tc.h)
			if got := s.String(); got != tc.wantString {
				t.Errorf("String() = %q, want %q", got, tc.wantString)
			}
			if got, want := len(s.RAM()), tc.wantW*(tc.wantH/8); got != want {
				t.Errorf("len(RAM()) = %d, want %d", got, want)
			}
			if err := s.Render(); err != nil {
				t.Fatal(err)
			}
			if got := strings.Count(out.String(), "\n"); got != tc.wantH {
				t.Errorf("Render() output %d rows, want %d", got, tc.wantH)
			}
		})
	}
}

func TestWrongAddress(t *testing.T) {
	s, _ := newTestSim(t, 128, 32)
	if err := s.Tx(0x3D, []byte{0x00, 0xAF}, nil); !errors.Is(err, ErrNoSuchDevice) {
		t.Errorf("Tx() = %v, want %v", err, ErrNoSuchDevice)
	}
	if s.State().On {
		t.Error("command reached the panel")
	}
}

func TestInvalidControl(t *testing.T) {
	s, _ := newTestSim(t, 128, 32)
	if err := s.Tx(0x3C, []byte{0x80, 0xAF}, nil); !errors.Is(err, ErrInvalidControl) {
		t.Errorf("Tx() = %v, want %v", err, ErrInvalidControl)
	}
	if err := s.Tx(0x3C, nil, nil); err == nil {
		t.Error("expected error on empty transaction")
	}
}

func TestCommands(t *testing.T) {
	s, _ := newTestSim(t, 128, 64)
	// One byte per transaction, the way the driver sends them.
	for _, b := range []byte{0xAF, 0x81, 0x10, 0xA7, 0x8D, 0x14, 0x20, 0x00, 0xA8, 0x1F, 0xDA, 0x02, 0xB3, 0x05, 0x12} {
		if err := s.Tx(0x3C, []byte{0x00, b}, nil); err != nil {
			t.Fatal(err)
		}
	}
	want := State{
		On:         true,
		Inverted:   true,
		Contrast:   0x10,
		MemoryMode: 0x00,
		Multiplex:  0x1F,
		ChargePump: 0x14,
		COMPins:    0x02,
		Page:       3,
		Column:     0x25,
	}
	if diff := cmp.Diff(s.State(), want); diff != "" {
		t.Errorf("State() difference (-got +want):\n%s", diff)
	}
}

func TestScroll(t *testing.T) {
	s, _ := newTestSim(t, 128, 64)
	if err := s.Tx(0x3C, []byte{0x00, 0x26, 0x00, 0x00, 0x00, 0x07, 0x00, 0xFF, 0x2F}, nil); err != nil {
		t.Fatal(err)
	}
	if !s.State().Scrolling {
		t.Error("expected scrolling")
	}
	if err := s.Tx(0x3C, []byte{0x00, 0x2E}, nil); err != nil {
		t.Fatal(err)
	}
	if s.State().Scrolling {
		t.Error("expected scrolling to stop")
	}
}

func TestDataDuringCommand(t *testing.T) {
	s, _ := newTestSim(t, 128, 64)
	if err := s.Tx(0x3C, []byte{0x00, 0x81}, nil); err != nil {
		t.Fatal(err)
	}
	if err := s.Tx(0x3C, []byte{0x40, 0xFF}, nil); err == nil {
		t.Error("expected error on data while a command awaits its argument")
	}
	// The decoder recovers.
	if err := s.Tx(0x3C, []byte{0x00, 0x81, 0x42}, nil); err != nil {
		t.Fatal(err)
	}
	if got := s.State().Contrast; got != 0x42 {
		t.Errorf("Contrast = 0x%02X, want 0x42", got)
	}
}

func TestData(t *testing.T) {
	s, _ := newTestSim(t, 128, 64)
	// Page 2, column 0x12.
	if err := s.Tx(0x3C, []byte{0x00, 0xB2, 0x02, 0x11}, nil); err != nil {
		t.Fatal(err)
	}
	if err := s.Tx(0x3C, []byte{0x40, 0x01, 0x80}, nil); err != nil {
		t.Fatal(err)
	}
	if !s.Pixel(0x12, 16) || !s.Pixel(0x13, 23) {
		t.Error("expected pixels to be set")
	}
	if s.Pixel(0x12, 17) || s.Pixel(0x11, 16) || s.Pixel(-1, 0) || s.Pixel(0, 64) {
		t.Error("unexpected pixel set")
	}
	if st := s.State(); st.Page != 2 || st.Column != 0x14 {
		t.Errorf("pointer = (%d, %d), want (2, 20)", st.Page, st.Column)
	}
	if got := s.Page(2); got[0x12] != 0x01 || got[0x13] != 0x80 || len(got) != 128 {
		t.Errorf("Page(2) = %v", got)
	}
	for _, n := range []int{-1, 8, 10} {
		if got := s.Page(n); got != nil {
			t.Errorf("Page(%d) = %v, want nil", n, got)
		}
	}
}

func TestDataWrap(t *testing.T) {
	for _, tc := range []struct {
		name     string
		mode     byte
		wantPage int
	}{
		{"horizontal", 0x00, 1},
		{"page", 0x02, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := newTestSim(t, 128, 64)
			if err := s.Tx(0x3C, []byte{0x00, 0x20, tc.mode, 0xB0, 0x00, 0x10}, nil); err != nil {
				t.Fatal(err)
			}
			if err := s.Tx(0x3C, append([]byte{0x40}, bytes.Repeat([]byte{0xFF}, 129)...), nil); err != nil {
				t.Fatal(err)
			}
			st := s.State()
			if st.Page != tc.wantPage || st.Column != 1 {
				t.Errorf("pointer = (%d, %d), want (%d, 1)", st.Page, st.Column, tc.wantPage)
			}
		})
	}
}

func TestRAM(t *testing.T) {
	s, _ := newTestSim(t, 16, 16)
	if err := s.Tx(0x3C, []byte{0x00, 0xB1, 0x03, 0x10}, nil); err != nil {
		t.Fatal(err)
	}
	if err := s.Tx(0x3C, []byte{0x40, 0xAA}, nil); err != nil {
		t.Fatal(err)
	}
	want := make([]byte, 32)
	want[16+3] = 0xAA
	if diff := cmp.Diff(s.RAM(), want); diff != "" {
		t.Errorf("RAM() difference (-got +want):\n%s", diff)
	}
}

func TestRead(t *testing.T) {
	s, _ := newTestSim(t, 128, 64)
	r := make([]byte, 1)
	if err := s.Tx(0x3C, []byte{0x00}, r); err != nil {
		t.Fatal(err)
	}
	if r[0]&0x40 == 0 {
		t.Errorf("status 0x%02X, want display off bit", r[0])
	}
	if err := s.Tx(0x3C, []byte{0x00, 0xAF}, nil); err != nil {
		t.Fatal(err)
	}
	if err := s.Tx(0x3C, []byte{0x00}, r); err != nil {
		t.Fatal(err)
	}
	if r[0]&0x40 != 0 {
		t.Errorf("status 0x%02X, want display on", r[0])
	}
}

func TestSetSpeed(t *testing.T) {
	s, _ := newTestSim(t, 128, 64)
	if err := s.SetSpeed(400 * physic.KiloHertz); err != nil {
		t.Error(err)
	}
	if err := s.SetSpeed(physic.MegaHertz); err == nil {
		t.Error("expected error above 400kHz")
	}
}

func TestRender(t *testing.T) {
	s, out := newTestSim(t, 4, 8)
	if err := s.Tx(0x3C, []byte{0x00, 0xAF, 0xB0, 0x00, 0x10}, nil); err != nil {
		t.Fatal(err)
	}
	if err := s.Tx(0x3C, []byte{0x40, 0x01}, nil); err != nil {
		t.Fatal(err)
	}
	if err := s.Render(); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if len(lines) != 8 {
		t.Fatalf("got %d lines, want 8", len(lines))
	}
	if lines[0] == lines[1] {
		t.Error("lit row renders like an unlit one")
	}
	if lines[1] != lines[2] {
		t.Error("unlit rows render differently")
	}

	// Inverted, row 0 now looks like the other rows used to.
	unlit := lines[1]
	out.Reset()
	if err := s.Tx(0x3C, []byte{0x00, 0xA7}, nil); err != nil {
		t.Fatal(err)
	}
	if err := s.Render(); err != nil {
		t.Fatal(err)
	}
	lines = strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if lines[1] == unlit {
		t.Error("inversion ignored")
	}
}
