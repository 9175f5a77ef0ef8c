// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package text rasterizes strings into a 1 bit vertical LSB buffer.
//
// It is the font collaborator of package ssd1306: the driver hands it the raw
// buffer and its geometry and the glyphs are written in place.
package text

import (
	"fmt"
	"image"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/GermanBionicSystems/oled/ssd1306/image1bit"
)

// Default draws with the 7x13 fixed font of golang.org/x/image.
var Default = New(basicfont.Face7x13)

// Drawer renders text with a font.Face.
type Drawer struct {
	face font.Face
}

// New returns a Drawer using face.
func New(face font.Face) *Drawer {
	return &Drawer{face: face}
}

// NewTrueType parses a TrueType font and returns a Drawer rendering it at
// size points with 72 DPI, so one point is one pixel.
func NewTrueType(ttf []byte, size float64) (*Drawer, error) {
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("text: failed to parse font: %w", err)
	}
	return New(truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})), nil
}

// Face returns the underlying font face.
func (d *Drawer) Face() font.Face {
	return d.face
}

// DrawText draws s into dst. (x, y) is the top left corner of the first
// glyph. Pixels falling outside dst are dropped.
func (d *Drawer) DrawText(dst *image1bit.VerticalLSB, s string, x, y int, c image1bit.Bit) {
	m := d.face.Metrics()
	fd := font.Drawer{
		Dst:  dst,
		Src:  &image.Uniform{C: c},
		Face: d.face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y) + m.Ascent},
	}
	fd.DrawString(s)
}

// Measure returns the size in pixels of the box s occupies when drawn.
func (d *Drawer) Measure(s string) image.Point {
	m := d.face.Metrics()
	w := font.MeasureString(d.face, s)
	return image.Point{X: w.Ceil(), Y: (m.Ascent + m.Descent).Ceil()}
}
