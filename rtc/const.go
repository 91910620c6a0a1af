// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtc

// DefaultAddr is the fixed I2C address of the DS3231 chip.
const DefaultAddr = 0x68

const (
	regSeconds = 0x00
	regMinutes = 0x01
	regHours   = 0x02
	regWeekday = 0x03 // day-of-week, opaque to this package
	regDate    = 0x04
	regMonth   = 0x05
	regYear    = 0x06
	regControl = 0x0e
	regStatus  = 0x0f

	bit12h     = 0x40 // hours: 12-hour mode
	bitPM      = 0x20 // hours: PM flag (12-hour mode only)
	bitCentury = 0x80 // month: century roll-over

	bitEOSC  = 0x80 // control: oscillator disabled
	bitINTCN = 0x04 // control: interrupt control
	bitA2IE  = 0x02 // control: alarm-2 interrupt enable
	bitA1IE  = 0x01 // control: alarm-1 interrupt enable

	bitOSF = 0x80 // status: oscillator-stop flag
)

// nRegs is the size of the time-of-day register block (seconds..year).
const nRegs = 7
