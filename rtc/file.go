// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtc

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"golang.org/x/xerrors"
)

// Cmd is a structured command applied to an open File.
type Cmd uint32

const (
	CmdGetTime Cmd = iota + 1
	CmdSetTime
	CmdUpdateOn  // enable update notifications (acknowledged only)
	CmdUpdateOff // disable update notifications (acknowledged only)
)

var (
	// ErrFormat is returned when a written date-time stamp does not
	// follow the "YYYY-MM-DD HH:MM:SS" layout.
	ErrFormat = xerrors.New("rtc: invalid date-time format")

	// ErrUnknownCmd is returned by Control for unsupported commands.
	ErrUnknownCmd = xerrors.New("rtc: unknown command")
)

// stampLen is the length of a "YYYY-MM-DD HH:MM:SS" stamp.
// maxStampLen allows for a trailing newline.
const (
	stampLen    = 19
	maxStampLen = 20
)

// File is one open session on a Device, with the read/write semantics of
// a character device file: the first Read yields the current time as a
// "DD.MM.YYYY HH:MM:SS\n" line, subsequent reads report end-of-stream
// until a new session is opened; Write accepts a "YYYY-MM-DD HH:MM:SS"
// stamp and sets the clock.
type File struct {
	dev *Device

	mu  sync.Mutex
	eof bool
}

// OpenFile opens a new session on the device.
func (dev *Device) OpenFile() *File {
	return &File{dev: dev}
}

func (f *File) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.eof {
		return 0, io.EOF
	}

	t, err := f.dev.Now()
	if err != nil {
		return 0, err
	}

	str := fmt.Sprintf("%02d.%02d.%04d %02d:%02d:%02d\n",
		t.Day, t.Month, t.Year,
		t.Hour, t.Min, t.Sec,
	)
	n := copy(p, str)
	f.eof = true
	return n, nil
}

func (f *File) Write(p []byte) (int, error) {
	t, err := parseStamp(p)
	if err != nil {
		return 0, err
	}

	err = f.dev.SetTime(t)
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

// Control applies a structured command to the session.
// CmdGetTime fills *t with the current time, CmdSetTime writes *t to the
// chip. CmdUpdateOn and CmdUpdateOff are acknowledged for compatibility
// with clock tools but change nothing: this driver has no update-interrupt
// machinery.
func (f *File) Control(cmd Cmd, t *Time) error {
	switch cmd {
	case CmdGetTime:
		v, err := f.dev.Now()
		if err != nil {
			return err
		}
		*t = v
		return nil

	case CmdSetTime:
		return f.dev.SetTime(*t)

	case CmdUpdateOn, CmdUpdateOff:
		f.dev.msg.Printf("update-interrupt command 0x%x acknowledged", uint32(cmd))
		return nil

	default:
		return xerrors.Errorf("rtc: could not handle command 0x%x: %w",
			uint32(cmd), ErrUnknownCmd,
		)
	}
}

// Close closes the session.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dev = nil
	return nil
}

// parseStamp parses a "YYYY-MM-DD HH:MM:SS" stamp, with an optional
// trailing newline. The delimiter layout is checked before any numeric
// parsing takes place.
func parseStamp(p []byte) (Time, error) {
	var t Time

	if len(p) > maxStampLen {
		return t, xerrors.Errorf("rtc: date-time stamp too long (%d bytes): %w",
			len(p), ErrFormat,
		)
	}
	if len(p) < stampLen {
		return t, xerrors.Errorf("rtc: date-time stamp too short (%d bytes): %w",
			len(p), ErrFormat,
		)
	}
	if !(p[4] == '-' && p[7] == '-' && p[10] == ' ' &&
		p[13] == ':' && p[16] == ':') {
		return t, xerrors.Errorf("rtc: invalid date-time layout %q: %w", p, ErrFormat)
	}

	var perr error
	num := func(p []byte) int {
		v, err := strconv.Atoi(string(p))
		if err != nil && perr == nil {
			perr = err
		}
		if v < 0 {
			v = 0
			if perr == nil {
				perr = fmt.Errorf("negative field %q", p)
			}
		}
		return v
	}

	var (
		year  = num(p[0:4])
		month = num(p[5:7])
		day   = num(p[8:10])
		hour  = num(p[11:13])
		min   = num(p[14:16])
		sec   = num(p[17:19])
	)
	if perr != nil {
		return t, xerrors.Errorf("rtc: could not parse date-time %q (%v): %w",
			p, perr, ErrFormat,
		)
	}

	t = Time{
		Sec:   uint8(sec),
		Min:   uint8(min),
		Hour:  uint8(hour),
		Day:   uint8(day),
		Month: uint8(month),
		Year:  uint16(year),
	}
	return t, nil
}
