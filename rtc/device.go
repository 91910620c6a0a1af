// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtc

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/go-daq/smbus"
	"golang.org/x/xerrors"
)

// Conn is the SMBus connection a Device drives.
// *smbus.Conn implements Conn.
type Conn interface {
	ReadReg(addr, reg uint8) (uint8, error)
	WriteReg(addr, reg, v uint8) error
	Close() error
}

var (
	smbusOpen = smbusOpenImpl
)

func smbusOpenImpl(bus int, addr uint8) (Conn, error) {
	conn, err := smbus.Open(bus, addr)
	return conn, err
}

// Device gives serialized access to a DS3231 chip on an I2C bus.
// All register transactions are protected by a single exclusive lock.
type Device struct {
	mu   sync.Mutex
	conn Conn
	addr uint8
	msg  *log.Logger
}

// Option configures a Device.
type Option func(*Device)

// WithLogger sets the logger used by the device.
func WithLogger(msg *log.Logger) Option {
	return func(dev *Device) {
		dev.msg = msg
	}
}

// Open opens the DS3231 chip at address addr on the given I2C bus.
func Open(bus int, addr uint8, opts ...Option) (*Device, error) {
	conn, err := smbusOpen(bus, addr)
	if err != nil {
		return nil, fmt.Errorf("rtc: could not open SMBus %d: %w", bus, err)
	}

	dev, err := NewDevice(conn, addr, opts...)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return dev, nil
}

// NewDevice wraps an already opened SMBus connection to the DS3231 chip
// at address addr.
//
// NewDevice normalizes the control and status registers once: the
// oscillator is enabled, alarm and unsolicited interrupt sources are
// disabled and a pending oscillator-stop flag is cleared. These registers
// are never polled again afterwards.
func NewDevice(conn Conn, addr uint8, opts ...Option) (*Device, error) {
	dev := &Device{
		conn: conn,
		addr: addr,
		msg:  log.New(os.Stdout, "rtc: ", 0),
	}
	for _, opt := range opts {
		opt(dev)
	}

	err := dev.init()
	if err != nil {
		return nil, fmt.Errorf("rtc: could not initialize device 0x%02x: %w", addr, err)
	}

	return dev, nil
}

func (dev *Device) init() error {
	ctrl, err := dev.conn.ReadReg(dev.addr, regControl)
	if err != nil {
		return fmt.Errorf("could not read control register: %w", err)
	}
	sts, err := dev.conn.ReadReg(dev.addr, regStatus)
	if err != nil {
		return fmt.Errorf("could not read status register: %w", err)
	}
	dev.msg.Printf("control: 0x%02x, status: 0x%02x", ctrl, sts)

	if ctrl&bitEOSC != 0 {
		dev.msg.Printf("enabling oscillator")
	}
	ctrl &^= bitEOSC | bitINTCN | bitA2IE | bitA1IE

	err = dev.conn.WriteReg(dev.addr, regControl, ctrl)
	if err != nil {
		return fmt.Errorf("could not write control register: %w", err)
	}

	if sts&bitOSF != 0 {
		sts &^= bitOSF
		err = dev.conn.WriteReg(dev.addr, regStatus, sts)
		if err != nil {
			return fmt.Errorf("could not clear oscillator-stop flag: %w", err)
		}
		dev.msg.Printf("cleared oscillator-stop flag")
	}

	return nil
}

// Close tears down the connection to the chip.
func (dev *Device) Close() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.conn.Close()
}

func (dev *Device) readBlock(reg uint8, buf []byte) error {
	for i := range buf {
		v, err := dev.conn.ReadReg(dev.addr, reg+uint8(i))
		if err != nil {
			return xerrors.Errorf("rtc: could not read register 0x%02x: %w",
				reg+uint8(i), err,
			)
		}
		buf[i] = v
	}
	return nil
}

func (dev *Device) writeBlock(reg uint8, buf []byte) error {
	for i := range buf {
		err := dev.conn.WriteReg(dev.addr, reg+uint8(i), buf[i])
		if err != nil {
			return xerrors.Errorf("rtc: could not write register 0x%02x: %w",
				reg+uint8(i), err,
			)
		}
	}
	return nil
}

// Now returns the current time held by the chip.
func (dev *Device) Now() (Time, error) {
	var regs [nRegs]byte

	dev.mu.Lock()
	err := dev.readBlock(regSeconds, regs[:])
	dev.mu.Unlock()
	if err != nil {
		return Time{}, err
	}

	return Decode(regs)
}

// SetTime validates t and writes it to the chip.
//
// Validation runs before any bus traffic: an invalid t leaves the chip
// untouched. The whole read-modify-write transaction (the current block
// is read back first so the hour mode bit and weekday register survive)
// runs under the device lock.
func (dev *Device) SetTime(t Time) error {
	err := t.Validate()
	if err != nil {
		return err
	}

	dev.mu.Lock()
	defer dev.mu.Unlock()

	var regs [nRegs]byte
	err = dev.readBlock(regSeconds, regs[:])
	if err != nil {
		return err
	}

	regs = Encode(regs, t)
	return dev.writeBlock(regSeconds, regs[:])
}

// DumpRegisters writes the raw content of the chip register file
// (time-of-day block, alarms, control and status) to w.
func (dev *Device) DumpRegisters(w io.Writer) error {
	var regs [regStatus + 1]byte

	dev.mu.Lock()
	err := dev.readBlock(regSeconds, regs[:])
	dev.mu.Unlock()
	if err != nil {
		return err
	}

	for i, v := range regs {
		_, err = fmt.Fprintf(w, "0x%02x: 0x%02x\n", i, v)
		if err != nil {
			return fmt.Errorf("rtc: could not dump register 0x%02x: %w", i, err)
		}
	}
	return nil
}
