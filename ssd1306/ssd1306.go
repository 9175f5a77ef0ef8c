// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1306

// The SSD1306 is an OLED display controller with 128x64 pixels of GDDRAM.
//
// https://hallard.me/adafruit-oled-display-driver-for-pi/
//
// https://learn.adafruit.com/ssd1306-oled-displays-with-raspberry-pi-and-beaglebone-black?view=all

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"

	"github.com/GermanBionicSystems/oled/ssd1306/image1bit"
	"github.com/GermanBionicSystems/oled/ssd1306/text"
)

const (
	_CHARGEPUMP          = 0x8D
	_COMSCANDEC          = 0xC8
	_DEACTIVATE_SCROLL   = 0x2E
	_ACTIVATE_SCROLL     = 0x2F
	_DISPLAYALLON_RESUME = 0xA4
	_DISPLAYOFF          = 0xAE
	_DISPLAYON           = 0xAF
	_INVERTDISPLAY       = 0xA7
	_MEMORYMODE          = 0x20
	_NORMALDISPLAY       = 0xA6
	_PAGESTARTADDRESS    = 0xB0
	_SETCOMPINS          = 0xDA
	_SETCONTRAST         = 0x81
	_SETDISPLAYCLOCKDIV  = 0xD5
	_SETDISPLAYOFFSET    = 0xD3
	_SETHIGHCOLUMN       = 0x10
	_SETLOWCOLUMN        = 0x00
	_SETMULTIPLEX        = 0xA8
	_SETPRECHARGE        = 0xD9
	_SETSEGMENTREMAP     = 0xA1
	_SETSTARTLINE        = 0x40
	_SETVCOMDETECT       = 0xDB
)

const (
	i2cCmd  = 0x00 // I²C transaction has stream of command bytes
	i2cData = 0x40 // I²C transaction has stream of data bytes
)

// FrameRate determines scrolling speed.
type FrameRate byte

// Possible frame rates. The value determines the number of refreshes between
// movement. The lower value, the higher speed.
const (
	FrameRate2   FrameRate = 7
	FrameRate3   FrameRate = 4
	FrameRate4   FrameRate = 5
	FrameRate5   FrameRate = 0
	FrameRate25  FrameRate = 6
	FrameRate64  FrameRate = 1
	FrameRate128 FrameRate = 2
	FrameRate256 FrameRate = 3
)

// Orientation is used for scrolling.
type Orientation byte

// Possible orientations for scrolling.
const (
	Left    Orientation = 0x27
	Right   Orientation = 0x26
	UpRight Orientation = 0x29
	UpLeft  Orientation = 0x2A
)

// TextRenderer rasterizes a string directly into the display buffer.
//
// (x, y) is the top left corner of the first glyph. Implementations must
// silently drop pixels outside dst.
type TextRenderer interface {
	DrawText(dst *image1bit.VerticalLSB, s string, x, y int, c image1bit.Bit)
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	W:    128,
	H:    64,
	Addr: 0x3c,
}

// Opts defines the options for the device.
type Opts struct {
	W int
	H int
	// The I2C address of the display. 0 selects 0x3C.
	Addr uint16
	// ExternalVCC is set when the panel is powered by an external supply
	// instead of the internal charge pump.
	ExternalVCC bool
	// ColumnOffset is the first GDDRAM column written by Show(). Some 128
	// pixels wide modules are wired to a 132 columns RAM and need 2.
	ColumnOffset byte
	// Speed is the I²C bus clock. 0 leaves the bus speed untouched. The
	// controller supports up to 400kHz.
	Speed physic.Frequency
	// Font renders Text(). nil selects text.Default.
	Font TextRenderer
}

// NewI2C returns a Dev object that communicates over I²C to a SSD1306 display
// controller.
//
// The display is initialized, cleared and turned on before returning.
func NewI2C(b i2c.Bus, opts *Opts) (*Dev, error) {
	o := *opts
	if o.Addr == 0 {
		o.Addr = DefaultOpts.Addr
	}
	if o.Speed != 0 {
		if err := b.SetSpeed(o.Speed); err != nil {
			return nil, fmt.Errorf("ssd1306: failed to set bus speed: %w", err)
		}
	}
	return newDev(&i2c.Dev{Bus: b, Addr: o.Addr}, &o)
}

// Dev is an open handle to the display controller.
//
// It is not safe for concurrent use.
type Dev struct {
	c conn.Conn

	externalVCC  bool
	columnOffset byte
	font         TextRenderer

	// See page 25 for the GDDRAM pages structure.
	// There is 8 pages, each covering an horizontal band of 8 pixels high (1
	// byte) for 128 bytes.
	// 8*128 = 1024 bytes total for 128x64 display.
	// Short screen will ignore the lower pages.
	img *image1bit.VerticalLSB
}

func (d *Dev) String() string {
	return fmt.Sprintf("ssd1306.Dev{%s, %s}", d.c, d.img.Rect.Max)
}

// ColorModel implements display.Drawer.
//
// It is a one bit color model, as implemented by image1bit.Bit.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer. Min is guaranteed to be {0, 0}.
func (d *Dev) Bounds() image.Rectangle {
	return d.img.Rect
}

// Draw implements display.Drawer.
//
// src is composed into the buffer then the whole buffer is sent. It draws
// synchronously, once this function returns, the display is updated.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	draw.Src.Draw(d.img, r, src, sp)
	return d.Show()
}

// Write replaces the buffer with pixels and sends it to the display.
//
// The format is unsual as each byte represent 8 vertical pixels at a time. The
// format is horizontal bands of 8 pixels high.
//
// This function accepts the content of image1bit.VerticalLSB.Pix.
func (d *Dev) Write(pixels []byte) (int, error) {
	if len(pixels) != len(d.img.Pix) {
		return 0, fmt.Errorf("ssd1306: invalid pixel stream length; expected %d bytes, got %d bytes", len(d.img.Pix), len(pixels))
	}
	copy(d.img.Pix, pixels)
	if err := d.Show(); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// Image returns the buffer the drawing calls mutate.
//
// Changes are not visible until Show() is called.
func (d *Dev) Image() *image1bit.VerticalLSB {
	return d.img
}

// Buffer returns the raw packed pixels. It aliases Image().Pix.
func (d *Dev) Buffer() []byte {
	return d.img.Pix
}

// Pages returns the number of 8 pixels high bands backed by the buffer.
func (d *Dev) Pages() int {
	return d.img.Rect.Dy() / 8
}

// Fill sets every pixel of the buffer to c.
func (d *Dev) Fill(c image1bit.Bit) {
	d.img.Fill(c)
}

// Pixel sets the pixel at (x, y) to c. Coordinates outside the display are
// ignored.
func (d *Dev) Pixel(x, y int, c image1bit.Bit) {
	d.img.SetBit(x, y, c)
}

// Text draws s with its top left corner at (x, y) using Opts.Font.
func (d *Dev) Text(s string, x, y int, c image1bit.Bit) {
	d.font.DrawText(d.img, s, x, y, c)
}

// Show sends the whole buffer to the controller, one page at a time.
func (d *Dev) Show() error {
	w := d.img.Stride
	for page := 0; page < d.Pages(); page++ {
		err := d.Command(
			_PAGESTARTADDRESS|byte(page),
			_SETLOWCOLUMN|(d.columnOffset&0x0F),
			_SETHIGHCOLUMN|(d.columnOffset>>4),
		)
		if err != nil {
			return err
		}
		if err := d.Data(d.img.Pix[page*w : (page+1)*w]); err != nil {
			return err
		}
	}
	return nil
}

// Scroll scrolls horizontally to the right the pages from start to stop
// inclusive, moving one column every 5 frames.
//
// Use -1 for stop to extend to the bottom of the display. Only the low 3
// bits of start and stop are sent, so 9 selects page 1.
func (d *Dev) Scroll(start, stop int) error {
	return d.ScrollHorizontal(Right, FrameRate5, start, stop)
}

// ScrollHorizontal scrolls the pages from start to stop inclusive to the left
// or to the right.
//
// Only one scrolling operation can happen at a time. Use -1 for stop to
// extend to the bottom of the display.
func (d *Dev) ScrollHorizontal(o Orientation, rate FrameRate, start, stop int) error {
	if stop < 0 {
		stop = d.Pages() - 1
	}
	// page 28
	// <op>, dummy, <start page>, <rate>, <end page>, <dummy>, <dummy>, <ENABLE>
	return d.Command(byte(o), 0x00, byte(start&7), byte(rate), byte(stop&7), 0x00, 0xFF, _ACTIVATE_SCROLL)
}

// ScrollDiagonal scrolls the pages from start to stop inclusive vertically
// by one row per step and horizontally to o.
//
// o must be UpLeft or UpRight.
func (d *Dev) ScrollDiagonal(o Orientation, rate FrameRate, start, stop int) error {
	if o != UpLeft && o != UpRight {
		return fmt.Errorf("ssd1306: invalid diagonal scroll orientation 0x%02X", byte(o))
	}
	if stop < 0 {
		stop = d.Pages() - 1
	}
	// page 29
	// <op>, dummy, <start page>, <rate>, <end page>, <offset>, <ENABLE>
	return d.Command(byte(o), 0x00, byte(start&7), byte(rate), byte(stop&7), 0x01, _ACTIVATE_SCROLL)
}

// StopScroll stops any scrolling previously set.
//
// The GDDRAM content is not restored; call Show() to redraw the buffer.
func (d *Dev) StopScroll() error {
	return d.Command(_DEACTIVATE_SCROLL)
}

// SetContrast changes the screen contrast.
func (d *Dev) SetContrast(level byte) error {
	return d.Command(_SETCONTRAST, level)
}

// Invert the display (black on white vs white on black).
func (d *Dev) Invert(blackOnWhite bool) error {
	if blackOnWhite {
		return d.Command(_INVERTDISPLAY)
	}
	return d.Command(_NORMALDISPLAY)
}

// PowerOff turns off the panel. GDDRAM content is retained.
func (d *Dev) PowerOff() error {
	return d.Command(_DISPLAYOFF)
}

// PowerOn turns the panel back on.
func (d *Dev) PowerOn() error {
	return d.Command(_DISPLAYON)
}

// Halt implements conn.Resource.
//
// It turns off the display.
func (d *Dev) Halt() error {
	return d.PowerOff()
}

// Command sends each byte of cmds as its own command transaction.
func (d *Dev) Command(cmds ...byte) error {
	for _, c := range cmds {
		if err := d.c.Tx([]byte{i2cCmd, c}, nil); err != nil {
			return err
		}
	}
	return nil
}

// Data sends p as display RAM content in a single transaction.
func (d *Dev) Data(p []byte) error {
	return d.c.Tx(append([]byte{i2cData}, p...), nil)
}

// newDev is the common initialization code.
func newDev(c conn.Conn, opts *Opts) (*Dev, error) {
	if opts.W < 1 || opts.W > 128 {
		return nil, fmt.Errorf("ssd1306: invalid width %d", opts.W)
	}
	if opts.H < 1 || opts.H > 64 {
		return nil, fmt.Errorf("ssd1306: invalid height %d", opts.H)
	}
	d := &Dev{
		c:            c,
		externalVCC:  opts.ExternalVCC,
		columnOffset: opts.ColumnOffset,
		font:         opts.Font,
		img:          image1bit.NewVerticalLSB(image.Rect(0, 0, opts.W, opts.H)),
	}
	if d.font == nil {
		d.font = text.Default
	}
	for _, s := range initSequence(opts) {
		if err := d.Command(s...); err != nil {
			return nil, fmt.Errorf("ssd1306: failed to initialize display: %w", err)
		}
	}
	d.Fill(image1bit.Off)
	if err := d.Show(); err != nil {
		return nil, fmt.Errorf("ssd1306: failed to clear display: %w", err)
	}
	return d, nil
}

// initSequence returns the power up command list. Each entry is a command
// followed by its arguments. The order follows the controller's
// application note and must not change.
func initSequence(opts *Opts) [][]byte {
	// Set COM pins hardware configuration; see page 40. Alternative COM pin
	// configuration on 64 rows panels, sequential otherwise.
	comPins := byte(0x02)
	if opts.H == 64 {
		comPins = 0x12
	}
	chargePump, contrast, precharge := byte(0x14), byte(0xCF), byte(0xF1)
	if opts.ExternalVCC {
		chargePump, contrast, precharge = 0x10, 0x9F, 0x22
	}
	return [][]byte{
		{_DISPLAYOFF},
		{_SETDISPLAYCLOCKDIV, 0x80}, // Power on reset value
		{_SETMULTIPLEX, byte(opts.H - 1)},
		{_SETDISPLAYOFFSET, 0x00},
		{_SETSTARTLINE | 0x00},
		{_CHARGEPUMP, chargePump}, // page 62
		{_MEMORYMODE, 0x00},       // Horizontal addressing
		{_SETSEGMENTREMAP},        // Column 127 is SEG0
		{_COMSCANDEC},
		{_SETCOMPINS, comPins},
		{_SETCONTRAST, contrast},
		{_SETPRECHARGE, precharge},
		{_SETVCOMDETECT, 0x40}, // page 32
		{_DISPLAYALLON_RESUME}, // Output follows GDDRAM content
		{_NORMALDISPLAY},
		{_DISPLAYON},
	}
}

var _ display.Drawer = &Dev{}
