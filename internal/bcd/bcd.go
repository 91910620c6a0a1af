// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bcd implements packed binary-coded-decimal conversions,
// where each 4-bit nibble of a byte holds one decimal digit.
package bcd // import "github.com/go-lpc/ds3231/internal/bcd"

// Enc converts a binary value (0-99) to its packed BCD encoding.
func Enc(v uint8) uint8 {
	return ((v / 10) << 4) | (v % 10)
}

// Dec converts a packed BCD byte to its binary value.
func Dec(v uint8) uint8 {
	return (v>>4)*10 + v&0x0f
}
