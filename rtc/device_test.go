// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtc

import (
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"strings"
	"testing"
)

// fakeConn is an in-memory SMBus connection to a fake DS3231 register
// file. Individual registers can be made to fail reads or writes.
type fakeConn struct {
	regs   [regStatus + 1]uint8
	failRd map[uint8]error
	failWr map[uint8]error

	writes []uint8 // registers written, in order
	closed bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		failRd: make(map[uint8]error),
		failWr: make(map[uint8]error),
	}
}

func (c *fakeConn) ReadReg(addr, reg uint8) (uint8, error) {
	if err, ok := c.failRd[reg]; ok {
		return 0, err
	}
	return c.regs[reg], nil
}

func (c *fakeConn) WriteReg(addr, reg, v uint8) error {
	if err, ok := c.failWr[reg]; ok {
		return err
	}
	c.regs[reg] = v
	c.writes = append(c.writes, reg)
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func newTestDevice(t *testing.T, conn *fakeConn) *Device {
	t.Helper()
	dev, err := NewDevice(conn, DefaultAddr,
		WithLogger(log.New(ioutil.Discard, "", 0)),
	)
	if err != nil {
		t.Fatalf("could not create fake device: %+v", err)
	}
	return dev
}

func TestDeviceInit(t *testing.T) {
	conn := newFakeConn()
	conn.regs[regControl] = bitEOSC | bitINTCN | bitA2IE | bitA1IE | 0x18
	conn.regs[regStatus] = bitOSF | 0x08

	dev := newTestDevice(t, conn)
	defer dev.Close()

	if got, want := conn.regs[regControl], uint8(0x18); got != want {
		t.Fatalf("invalid control register: got=0x%02x, want=0x%02x", got, want)
	}
	if got, want := conn.regs[regStatus], uint8(0x08); got != want {
		t.Fatalf("invalid status register: got=0x%02x, want=0x%02x", got, want)
	}
}

func TestDeviceInitSkipsStatusWrite(t *testing.T) {
	conn := newFakeConn()
	conn.regs[regStatus] = 0x00

	dev := newTestDevice(t, conn)
	defer dev.Close()

	for _, reg := range conn.writes {
		if reg == regStatus {
			t.Fatalf("status register written with no oscillator-stop flag set")
		}
	}
}

func TestDeviceInitFailure(t *testing.T) {
	for _, tc := range []struct {
		name string
		mod  func(conn *fakeConn)
	}{
		{
			name: "read-control",
			mod:  func(c *fakeConn) { c.failRd[regControl] = errors.New("boom") },
		},
		{
			name: "read-status",
			mod:  func(c *fakeConn) { c.failRd[regStatus] = errors.New("boom") },
		},
		{
			name: "write-control",
			mod:  func(c *fakeConn) { c.failWr[regControl] = errors.New("boom") },
		},
		{
			name: "write-status",
			mod: func(c *fakeConn) {
				c.regs[regStatus] = bitOSF
				c.failWr[regStatus] = errors.New("boom")
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			conn := newFakeConn()
			tc.mod(conn)

			_, err := NewDevice(conn, DefaultAddr,
				WithLogger(log.New(ioutil.Discard, "", 0)),
			)
			if err == nil {
				t.Fatalf("expected an init error")
			}
		})
	}
}

func TestDeviceNow(t *testing.T) {
	conn := newFakeConn()
	copy(conn.regs[:nRegs], []uint8{0x07, 0x02, 0x09, 0x03, 0x05, 0x07, 0x23})

	dev := newTestDevice(t, conn)
	defer dev.Close()

	got, err := dev.Now()
	if err != nil {
		t.Fatalf("could not read time: %+v", err)
	}

	want := Time{Sec: 7, Min: 2, Hour: 9, Day: 5, Month: 7, Year: 2023}
	if got != want {
		t.Fatalf("invalid time:\ngot= %#v\nwant=%#v", got, want)
	}
}

func TestDeviceNowTransportError(t *testing.T) {
	conn := newFakeConn()
	dev := newTestDevice(t, conn)
	defer dev.Close()

	werr := errors.New("bus glitch")
	conn.failRd[regDate] = werr

	_, err := dev.Now()
	if err == nil {
		t.Fatalf("expected a transport error")
	}
	if !errors.Is(err, werr) {
		t.Fatalf("invalid error chain: got=%+v, want=%+v", err, werr)
	}
	if !strings.Contains(err.Error(), fmt.Sprintf("0x%02x", regDate)) {
		t.Fatalf("error does not name the failing register: %v", err)
	}
}

func TestDeviceNowCenturyBit(t *testing.T) {
	conn := newFakeConn()
	conn.regs[regMonth] = bitCentury | 0x01
	conn.regs[regDate] = 0x01

	dev := newTestDevice(t, conn)
	defer dev.Close()

	_, err := dev.Now()
	if !errors.Is(err, ErrCenturyBit) {
		t.Fatalf("invalid decode error: got=%+v, want=%+v", err, ErrCenturyBit)
	}
}

func TestDeviceSetTime(t *testing.T) {
	conn := newFakeConn()
	conn.regs[regHours] = bit12h // chip left in 12-hour mode
	conn.regs[regWeekday] = 0x04

	dev := newTestDevice(t, conn)
	defer dev.Close()

	err := dev.SetTime(Time{Sec: 45, Min: 30, Hour: 12, Day: 15, Month: 3, Year: 2024})
	if err != nil {
		t.Fatalf("could not set time: %+v", err)
	}

	if got, want := conn.regs[regHours], uint8(bit12h|bitPM|0x00); got != want {
		t.Fatalf("invalid hours register: got=0x%02x, want=0x%02x", got, want)
	}
	if got, want := conn.regs[regWeekday], uint8(0x04); got != want {
		t.Fatalf("weekday register not preserved: got=0x%02x, want=0x%02x", got, want)
	}

	got, err := dev.Now()
	if err != nil {
		t.Fatalf("could not read back time: %+v", err)
	}
	want := Time{Sec: 45, Min: 30, Hour: 12, Day: 15, Month: 3, Year: 2024}
	if got != want {
		t.Fatalf("invalid read-back time:\ngot= %#v\nwant=%#v", got, want)
	}
}

func TestDeviceSetTimeInvalid(t *testing.T) {
	conn := newFakeConn()
	copy(conn.regs[:nRegs], []uint8{0x07, 0x02, 0x09, 0x03, 0x05, 0x07, 0x23})

	dev := newTestDevice(t, conn)
	defer dev.Close()

	nwrites := len(conn.writes)

	err := dev.SetTime(Time{Sec: 0, Min: 0, Hour: 0, Day: 31, Month: 4, Year: 2024})
	if err == nil {
		t.Fatalf("expected a validation error")
	}
	var ferr *FieldError
	if !errors.As(err, &ferr) {
		t.Fatalf("invalid error type: got=%#v", err)
	}

	if got, want := len(conn.writes), nwrites; got != want {
		t.Fatalf("chip written to despite validation failure: %d extra writes",
			got-want,
		)
	}

	got, err := dev.Now()
	if err != nil {
		t.Fatalf("could not read time: %+v", err)
	}
	want := Time{Sec: 7, Min: 2, Hour: 9, Day: 5, Month: 7, Year: 2023}
	if got != want {
		t.Fatalf("time changed by failed set:\ngot= %#v\nwant=%#v", got, want)
	}
}

func TestDeviceSetTimeTransportError(t *testing.T) {
	conn := newFakeConn()
	dev := newTestDevice(t, conn)
	defer dev.Close()

	werr := errors.New("bus glitch")
	conn.failWr[regYear] = werr

	err := dev.SetTime(Time{Sec: 0, Min: 0, Hour: 0, Day: 1, Month: 1, Year: 2024})
	if !errors.Is(err, werr) {
		t.Fatalf("invalid error chain: got=%+v, want=%+v", err, werr)
	}
}

func TestDeviceClose(t *testing.T) {
	conn := newFakeConn()
	dev := newTestDevice(t, conn)

	err := dev.Close()
	if err != nil {
		t.Fatalf("could not close device: %+v", err)
	}
	if !conn.closed {
		t.Fatalf("connection not closed")
	}
}

func TestDeviceDumpRegisters(t *testing.T) {
	conn := newFakeConn()
	copy(conn.regs[:nRegs], []uint8{0x07, 0x02, 0x09, 0x03, 0x05, 0x07, 0x23})

	dev := newTestDevice(t, conn)
	defer dev.Close()

	out := new(strings.Builder)
	err := dev.DumpRegisters(out)
	if err != nil {
		t.Fatalf("could not dump registers: %+v", err)
	}

	if !strings.Contains(out.String(), "0x06: 0x23") {
		t.Fatalf("invalid register dump:\n%s", out.String())
	}
}
