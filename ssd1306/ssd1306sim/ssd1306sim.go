// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ssd1306sim implements a simulated SSD1306 panel sitting on an I²C
// bus.
//
// It decodes the command and data stream a driver sends, keeps a copy of the
// controller's display RAM and can render it to the terminal using ANSI color
// codes.
//
// Useful while you are waiting for your OLED module to come by mail.
package ssd1306sim

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"sync"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// ErrNoSuchDevice is returned when a transaction targets another address
// than the simulated panel's.
var ErrNoSuchDevice = errors.New("ssd1306sim: no such device")

// ErrInvalidControl is returned for a transaction that does not start with a
// supported control byte.
var ErrInvalidControl = errors.New("ssd1306sim: invalid control byte")

const (
	ramColumns = 128
	ramPages   = 8

	ctrlCommand = 0x00
	ctrlData    = 0x40
)

// Opts represents the options available for the simulated panel.
type Opts struct {
	// W and H are the visible panel size. Defaults to 128x64. Values outside
	// the controller's 128x64 RAM are clamped to it.
	W, H int
	// Addr is the I²C address the panel answers to. Defaults to 0x3C.
	Addr uint16
	// Out receives Render() output. Defaults to a colorable stdout.
	Out     io.Writer
	Palette *ansi256.Palette

	_ struct{}
}

// State is a snapshot of the controller registers.
type State struct {
	On         bool
	Inverted   bool
	Scrolling  bool
	Contrast   byte
	MemoryMode byte
	Multiplex  byte
	ChargePump byte
	COMPins    byte
	// Page and Column are the GDDRAM write pointer.
	Page   int
	Column int
}

// Sim is a simulated SSD1306 controller. It implements i2c.Bus.
type Sim struct {
	addr    uint16
	w, h    int
	out     io.Writer
	palette ansi256.Palette

	mu      sync.Mutex
	ram     [ramPages][ramColumns]byte
	st      State
	pending []byte
	speed   physic.Frequency
	buf     bytes.Buffer
}

// New returns a Sim in the controller's power on reset state.
func New(opts *Opts) *Sim {
	o := Opts{}
	if opts != nil {
		o = *opts
	}
	if o.W <= 0 || o.W > ramColumns {
		o.W = ramColumns
	}
	if o.H <= 0 || o.H > ramPages*8 {
		o.H = ramPages * 8
	}
	if o.Addr == 0 {
		o.Addr = 0x3C
	}
	if o.Out == nil {
		o.Out = colorable.NewColorableStdout()
	}
	p := o.Palette
	if p == nil {
		p = ansi256.Default
	}
	return &Sim{
		addr:    o.Addr,
		w:       o.W,
		h:       o.H,
		out:     o.Out,
		palette: *p,
		st: State{
			Contrast:   0x7F,
			MemoryMode: 0x02,
			Multiplex:  0x3F,
			COMPins:    0x12,
		},
	}
}

func (s *Sim) String() string {
	return fmt.Sprintf("ssd1306sim(%dx%d@0x%02X)", s.w, s.h, s.addr)
}

// SetSpeed implements i2c.Bus.
func (s *Sim) SetSpeed(f physic.Frequency) error {
	if f > 400*physic.KiloHertz {
		return fmt.Errorf("ssd1306sim: invalid speed %s; maximum supported clock is 400kHz", f)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speed = f
	return nil
}

// Tx implements i2c.Bus.
//
// A read returns the status byte: bit 6 is set while the display is off.
func (s *Sim) Tx(addr uint16, w, r []byte) error {
	if addr != s.addr {
		return ErrNoSuchDevice
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(r) != 0 {
		if len(w) > 1 {
			return errors.New("ssd1306sim: write-then-read must write only the control byte")
		}
		status := byte(0x03)
		if !s.st.On {
			status |= 0x40
		}
		r[0] = status
		for i := 1; i < len(r); i++ {
			r[i] = 0
		}
		return nil
	}
	if len(w) == 0 {
		return errors.New("ssd1306sim: empty transaction")
	}
	switch w[0] {
	case ctrlCommand:
		for _, b := range w[1:] {
			s.command(b)
		}
		return nil
	case ctrlData:
		if len(s.pending) != 0 {
			err := fmt.Errorf("ssd1306sim: data while command 0x%02X awaits %d argument(s)", s.pending[0], argCount(s.pending[0])-len(s.pending)+1)
			s.pending = s.pending[:0]
			return err
		}
		for _, b := range w[1:] {
			s.data(b)
		}
		return nil
	default:
		return fmt.Errorf("%w 0x%02X", ErrInvalidControl, w[0])
	}
}

// State returns the current controller registers.
func (s *Sim) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st
}

// Pixel reports whether the GDDRAM bit for (x, y) is set. The display
// inversion does not affect the result.
func (s *Sim) Pixel(x, y int) bool {
	if x < 0 || x >= ramColumns || y < 0 || y >= ramPages*8 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ram[y/8][x]&(1<<uint(y&7)) != 0
}

// Page returns a copy of the first w bytes of GDDRAM page n. It returns nil
// when n is not in [0, 8).
func (s *Sim) Page(n int) []byte {
	if n < 0 || n >= ramPages {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, s.w)
	copy(out, s.ram[n][:])
	return out
}

// RAM returns the visible part of GDDRAM in the same layout as
// image1bit.VerticalLSB.Pix.
func (s *Sim) RAM() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, 0, s.w*(s.h/8))
	for p := 0; p < s.h/8; p++ {
		out = append(out, s.ram[p][:s.w]...)
	}
	return out
}

// Render draws the panel as seen by a user to Opts.Out.
func (s *Sim) Render() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Reset()
	on := color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF}
	off := color.NRGBA{0x00, 0x00, 0x00, 0xFF}
	for y := 0; y < s.h; y++ {
		_, _ = s.buf.WriteString("\033[0m")
		for x := 0; x < s.w; x++ {
			lit := s.ram[y/8][x]&(1<<uint(y&7)) != 0
			if s.st.Inverted {
				lit = !lit
			}
			c := off
			if lit && s.st.On {
				c = on
			}
			_, _ = io.WriteString(&s.buf, s.palette.Block(c))
		}
		_, _ = s.buf.WriteString("\033[0m\n")
	}
	_, err := s.buf.WriteTo(s.out)
	return err
}

// command feeds one command stream byte to the decoder.
func (s *Sim) command(b byte) {
	s.pending = append(s.pending, b)
	if len(s.pending) <= argCount(s.pending[0]) {
		return
	}
	s.exec(s.pending[0], s.pending[1:])
	s.pending = s.pending[:0]
}

func (s *Sim) exec(op byte, args []byte) {
	switch {
	case op <= 0x0F:
		s.st.Column = s.st.Column&0xF0 | int(op)
	case op >= 0x10 && op <= 0x1F:
		s.st.Column = s.st.Column&0x0F | int(op&0x0F)<<4
	case op >= 0xB0 && op <= 0xB7:
		s.st.Page = int(op & 0x07)
	case op == 0x20:
		s.st.MemoryMode = args[0] & 0x03
	case op == 0x26, op == 0x27, op == 0x29, op == 0x2A:
		// Scroll setup only. 0x2F starts it.
	case op == 0x2E:
		s.st.Scrolling = false
	case op == 0x2F:
		s.st.Scrolling = true
	case op == 0x81:
		s.st.Contrast = args[0]
	case op == 0x8D:
		s.st.ChargePump = args[0]
	case op == 0xA6:
		s.st.Inverted = false
	case op == 0xA7:
		s.st.Inverted = true
	case op == 0xA8:
		s.st.Multiplex = args[0] & 0x3F
	case op == 0xAE:
		s.st.On = false
	case op == 0xAF:
		s.st.On = true
	case op == 0xDA:
		s.st.COMPins = args[0]
	}
}

// data writes one GDDRAM byte at the write pointer and advances it.
func (s *Sim) data(b byte) {
	if s.st.Column < ramColumns {
		s.ram[s.st.Page][s.st.Column] = b
	}
	s.st.Column++
	if s.st.Column < ramColumns {
		return
	}
	s.st.Column = 0
	if s.st.MemoryMode == 0x00 {
		s.st.Page = (s.st.Page + 1) % ramPages
	}
}

// argCount returns the number of argument bytes following op.
func argCount(op byte) int {
	switch op {
	case 0x20, 0x81, 0x8D, 0xA8, 0xD3, 0xD5, 0xD9, 0xDA, 0xDB:
		return 1
	case 0x21, 0x22, 0xA3:
		return 2
	case 0x29, 0x2A:
		return 5
	case 0x26, 0x27:
		return 6
	default:
		return 0
	}
}

var _ i2c.Bus = &Sim{}
