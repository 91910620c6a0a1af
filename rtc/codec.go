// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtc

import (
	"golang.org/x/xerrors"

	"github.com/go-lpc/ds3231/internal/bcd"
)

// ErrCenturyBit is returned by Decode when the century bit of the month
// register is set, ie: the stored year is outside the [2000, 2099] range
// this package can decode.
var ErrCenturyBit = xerrors.New("rtc: century bit set")

// Decode converts a raw time-of-day register block into a Time.
//
// The hours register is transcoded to 24-hour form whatever the hour mode
// bit says. The weekday register carries no calendar information and is
// ignored.
func Decode(regs [nRegs]byte) (Time, error) {
	var t Time

	if regs[regMonth]&bitCentury != 0 {
		return t, xerrors.Errorf("rtc: could not decode month register 0x%02x: %w",
			regs[regMonth], ErrCenturyBit,
		)
	}

	var (
		hours = regs[regHours]
		pm    uint8
	)
	if hours&bit12h != 0 {
		hours &^= bit12h
		if hours&bitPM != 0 {
			pm = 12
			hours &^= bitPM
		}
	}

	t.Sec = bcd.Dec(regs[regSeconds])
	t.Min = bcd.Dec(regs[regMinutes])
	t.Hour = bcd.Dec(hours) + pm
	t.Day = bcd.Dec(regs[regDate])
	t.Month = bcd.Dec(regs[regMonth])
	t.Year = 2000 + uint16(bcd.Dec(regs[regYear]))

	return t, nil
}

// Encode writes t into a copy of the register block regs and returns it.
//
// The block must have been read from the chip beforehand: the 12h/24h
// hour mode bit and the weekday register are persistent chip state and
// are carried over unchanged. Years above 2099 set the century bit.
// Encode performs no range checks: t must have been validated.
func Encode(regs [nRegs]byte, t Time) [nRegs]byte {
	regs[regDate] = bcd.Enc(t.Day & 0x3f)

	regs[regMonth] &^= 0x9f
	regs[regMonth] |= bcd.Enc(t.Month & 0x1f)
	if t.Year > 2099 {
		regs[regMonth] |= bitCentury
	}
	regs[regYear] = bcd.Enc(uint8(t.Year % 100))

	hour := t.Hour
	switch {
	case regs[regHours]&bit12h != 0:
		if hour >= 12 {
			regs[regHours] |= bitPM
			hour -= 12
		} else {
			regs[regHours] &^= bitPM
		}
		regs[regHours] &^= 0x1f
		regs[regHours] |= bcd.Enc(hour & 0x1f)
	default:
		regs[regHours] &^= 0x3f
		regs[regHours] |= bcd.Enc(hour & 0x3f)
	}

	regs[regMinutes] = bcd.Enc(t.Min)
	regs[regSeconds] = bcd.Enc(t.Sec)

	return regs
}
