// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package oled is a container for the SSD1306 OLED display driver and its
// companion packages.
//
// See package ssd1306 to drive a panel.
package oled
