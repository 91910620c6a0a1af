// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rtc provides access to the time-of-day registers of a DS3231
// real-time-clock chip over an I2C/SMBus link.
package rtc // import "github.com/go-lpc/ds3231/rtc"

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/xerrors"
)

// Time is a calendar date and time as held by the DS3231 time-of-day
// registers. Hour is always in 24-hour form, Month runs from 1 to 12
// and Year is the absolute year, in the [2000, 2199] range.
type Time struct {
	Sec   uint8
	Min   uint8
	Hour  uint8
	Day   uint8
	Month uint8
	Year  uint16
}

func (t Time) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d",
		t.Year, t.Month, t.Day,
		t.Hour, t.Min, t.Sec,
	)
}

// timeSize is the length of the binary encoding of a Time.
const timeSize = 8

// MarshalBinary implements encoding.BinaryMarshaler.
func (t Time) MarshalBinary() ([]byte, error) {
	buf := make([]byte, timeSize)
	buf[0] = t.Sec
	buf[1] = t.Min
	buf[2] = t.Hour
	buf[3] = t.Day
	buf[4] = t.Month
	binary.BigEndian.PutUint16(buf[5:7], t.Year)
	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (t *Time) UnmarshalBinary(p []byte) error {
	if len(p) < timeSize {
		return xerrors.Errorf("rtc: not enough data to unmarshal Time (got=%d bytes)", len(p))
	}
	t.Sec = p[0]
	t.Min = p[1]
	t.Hour = p[2]
	t.Day = p[3]
	t.Month = p[4]
	t.Year = binary.BigEndian.Uint16(p[5:7])
	return nil
}
