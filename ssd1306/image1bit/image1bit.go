// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package image1bit implements black and white (1 bit per pixel) 2D graphics
// in the memory format of the ssd1306 controller.
//
// It is compatible with package image/draw.
package image1bit

import (
	"image"
	"image/color"
	"image/draw"
)

// Bit implements a 1 bit color.
type Bit bool

// RGBA returns either all white or all black.
//
// Technically the monochrome display could be colored but this information is
// unknown here.
func (b Bit) RGBA() (uint32, uint32, uint32, uint32) {
	if b {
		return 65535, 65535, 65535, 65535
	}
	return 0, 0, 0, 65535
}

func (b Bit) String() string {
	if b {
		return "On"
	}
	return "Off"
}

// Possible bitness.
const (
	On  = Bit(true)
	Off = Bit(false)
)

// BitModel is the color Model for 1 bit color.
var BitModel = color.ModelFunc(convert)

// VerticalLSB is a 1 bit (black and white) image.
//
// Each byte is 8 vertical pixels. Each stride is an horizontal band of 8
// pixels high with LSB first. So the first byte represent the following
// pixels, with lowest bit being the top left pixel:
//
//	0 x x x x x x x
//	1 x x x x x x x
//	2 x x x x x x x
//	3 x x x x x x x
//	4 x x x x x x x
//	5 x x x x x x x
//	6 x x x x x x x
//	7 x x x x x x x
//
// It is designed specifically to work with SSD1306 OLED display controller.
//
// Only complete bands are backed by Pix: when the height is not a multiple of
// 8, the rows of the trailing partial band read as Off and ignore writes.
type VerticalLSB struct {
	// Pix holds the image's pixels, as vertically LSB-first packed bitmap. It
	// can be passed directly to ssd1306.Dev.Write()
	Pix []byte
	// Stride is the Pix stride (in bytes) between vertically adjacent 8 pixels
	// horizontal bands.
	Stride int
	// Rect is the image's bounds.
	Rect image.Rectangle
}

// NewVerticalLSB returns an initialized VerticalLSB instance.
func NewVerticalLSB(r image.Rectangle) *VerticalLSB {
	w := r.Dx()
	h := r.Dy()
	if w < 0 || h < 0 {
		return &VerticalLSB{Rect: r}
	}
	return &VerticalLSB{Pix: make([]byte, w*(h/8)), Stride: w, Rect: r}
}

// ColorModel implements image.Image.
func (i *VerticalLSB) ColorModel() color.Model {
	return BitModel
}

// Bounds implements image.Image.
func (i *VerticalLSB) Bounds() image.Rectangle {
	return i.Rect
}

// At implements image.Image.
func (i *VerticalLSB) At(x, y int) color.Color {
	return i.BitAt(x, y)
}

// BitAt is the optimized version of At().
func (i *VerticalLSB) BitAt(x, y int) Bit {
	offset, mask, ok := i.PixOffset(x, y)
	if !ok {
		return Off
	}
	return Bit(i.Pix[offset]&mask != 0)
}

// Opaque scans the entire image and reports whether it is fully opaque.
func (i *VerticalLSB) Opaque() bool {
	return true
}

// PixOffset returns the index of the byte of Pix that holds the pixel at
// (x, y), the bit mask selecting it within that byte and whether (x, y) is
// backed by Pix at all.
func (i *VerticalLSB) PixOffset(x, y int) (int, byte, bool) {
	if !(image.Point{X: x, Y: y}.In(i.Rect)) {
		return 0, 0, false
	}
	pX := x - i.Rect.Min.X
	pY := y - i.Rect.Min.Y
	offset := pX + (pY/8)*i.Stride
	if offset >= len(i.Pix) {
		return 0, 0, false
	}
	return offset, byte(1 << uint(pY&7)), true
}

// Set implements draw.Image
func (i *VerticalLSB) Set(x, y int, c color.Color) {
	i.SetBit(x, y, convertBit(c))
}

// SetBit is the optimized version of Set().
//
// Coordinates outside the image are silently ignored.
func (i *VerticalLSB) SetBit(x, y int, b Bit) {
	offset, mask, ok := i.PixOffset(x, y)
	if !ok {
		return
	}
	if b {
		i.Pix[offset] |= mask
	} else {
		i.Pix[offset] &^= mask
	}
}

// Fill sets every pixel, including the unused ones of a partial band, to b.
func (i *VerticalLSB) Fill(b Bit) {
	v := byte(0)
	if b {
		v = 0xFF
	}
	for j := range i.Pix {
		i.Pix[j] = v
	}
}

// DrawHLine draws a horizontal line from x0 (inclusive) to x1 (exclusive) at
// row y.
func (i *VerticalLSB) DrawHLine(x0, x1, y int, b Bit) {
	for x := x0; x < x1; x++ {
		i.SetBit(x, y, b)
	}
}

// DrawVLine draws a vertical line from y0 (inclusive) to y1 (exclusive) at
// column x.
func (i *VerticalLSB) DrawVLine(y0, y1, x int, b Bit) {
	for y := y0; y < y1; y++ {
		i.SetBit(x, y, b)
	}
}

var _ draw.Image = &VerticalLSB{}

func convert(c color.Color) color.Color {
	return convertBit(c)
}

// Any channel at half intensity or more turns the bit on.
func convertBit(c color.Color) Bit {
	switch t := c.(type) {
	case Bit:
		return t
	default:
		r, g, b, _ := c.RGBA()
		return Bit((r | g | b) >= 0x8000)
	}
}
