// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ssd1306 controls a monochrome OLED display via a SSD1306 controller
// over I²C.
//
// The driver owns a frame buffer in the controller's memory layout. Drawing
// calls (Fill, Pixel, Text, Draw) only change the buffer; Show sends it to the
// controller one 8 pixels high page at a time. Out of range coordinates are
// ignored.
//
// Every call is synchronous and a bus error aborts the call in flight. The
// driver does no locking: serialize access when sharing a Dev between
// goroutines.
//
// Text rendering is delegated to a TextRenderer, package text by default.
// Package ssd1306sim provides a simulated panel to run the driver without
// hardware.
//
// Some boards expose a RES / Reset pin. If present, it must be normally be
// High. When set to Low (Ground), it enables the reset circuitry. It can be
// used externally to this driver, if used, the driver must be reinstantiated.
//
// # Datasheets
//
// https://cdn-shop.adafruit.com/datasheets/SSD1306.pdf
//
// "DM-OLED096-624": https://drive.google.com/file/d/0B5lkVYnewKTGaEVENlYwbDkxSGM/view
package ssd1306
