// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command rtc-mon monitors the drift of a DS3231 clock chip against the
// host clock, and sends mail alerts when the drift exceeds a threshold.
package main // import "github.com/go-lpc/ds3231/cmd/rtc-mon"

import (
	"crypto/tls"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"go-hep.org/x/hep/hbook"
	mail "gopkg.in/gomail.v2"

	"github.com/go-lpc/ds3231/rtc"
)

func main() {
	var (
		bus  = flag.Int("bus", 1, "I2C bus the DS3231 chip is attached to")
		addr = flag.Int("addr", rtc.DefaultAddr, "I2C address of the DS3231 chip")
		freq = flag.Duration("freq", 30*time.Second, "probing interval")
		max  = flag.Duration("max-drift", 2*time.Second, "drift threshold for alerts")
	)

	log.SetPrefix("rtc-mon: ")
	log.SetFlags(0)

	flag.Parse()

	err := run(*bus, uint8(*addr), *freq, *max)
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(bus int, addr uint8, freq, max time.Duration) error {
	dev, err := rtc.Open(bus, addr)
	if err != nil {
		return fmt.Errorf("could not open device: %w", err)
	}
	defer dev.Close()

	mon := &monitor{
		dev:  dev,
		freq: freq,
		max:  max,
		h:    hbook.NewH1D(100, -10, 10),
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	defer signal.Stop(stop)

	tick := time.NewTicker(freq)
	defer tick.Stop()

	log.Printf("monitoring clock drift every %v...", freq)
	for {
		select {
		case <-stop:
			mon.summary()
			return nil
		case <-tick.C:
			err := mon.probe()
			if err != nil {
				log.Printf("could not probe clock: %+v", err)
			}
		}
	}
}

type monitor struct {
	dev  *rtc.Device
	freq time.Duration
	max  time.Duration

	h      *hbook.H1D
	alerts int
}

func (mon *monitor) probe() error {
	chip, err := mon.dev.Now()
	if err != nil {
		return fmt.Errorf("could not read chip time: %w", err)
	}
	host := time.Now()

	ref := time.Date(
		int(chip.Year), time.Month(chip.Month), int(chip.Day),
		int(chip.Hour), int(chip.Min), int(chip.Sec),
		0, host.Location(),
	)

	drift := ref.Sub(host.Truncate(time.Second))
	mon.h.Fill(drift.Seconds(), 1)

	if drift < 0 {
		drift = -drift
	}
	if drift > mon.max {
		mon.alert(chip, host, drift)
	}
	return nil
}

func (mon *monitor) summary() {
	log.Printf("probes: %d", int(mon.h.Entries()))
	log.Printf("drift:  mean=%+.3fs rms=%.3fs", mon.h.XMean(), mon.h.XRMS())
	log.Printf("alerts: %d", mon.alerts)
}

func (mon *monitor) alert(chip rtc.Time, host time.Time, drift time.Duration) {
	log.Printf("clock drifted by %v (chip=%v, host=%v)",
		drift, chip, host.Format("2006-01-02 15:04:05"),
	)
	mon.alerts++

	const maxAlerts = 5
	if mon.alerts < maxAlerts {
		mon.alertMail(chip, host, drift)
	}
}

var (
	alertMailUsr  = os.Getenv("MAIL_USERNAME")
	alertMailPwd  = os.Getenv("MAIL_PASSWORD")
	alertMailSrv  = os.Getenv("MAIL_SERVER")
	alertMailPort = atoi(os.Getenv("MAIL_PORT"))
	alertMailTgts = strings.Split(os.Getenv("MAIL_TGTS"), ",")
)

func (mon *monitor) alertMail(chip rtc.Time, host time.Time, drift time.Duration) {
	if alertMailUsr == "" || alertMailPwd == "" ||
		alertMailSrv == "" || alertMailPort == 0 ||
		len(alertMailTgts) == 0 {
		log.Printf("could not send mail alert: missing credentials")
		return
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", alertMailUsr)
	msg.SetHeader("Bcc", alertMailTgts...)
	msg.SetHeader("Subject", fmt.Sprintf("[rtc-mon] clock drift alert: %v", drift))
	msg.SetBody("text/plain", fmt.Sprintf("chip:  %v\nhost:  %v\ndrift: %v\nfreq:  %v",
		chip, host.Format("2006-01-02 15:04:05"), drift, mon.freq,
	))

	dial := mail.NewDialer(alertMailSrv, alertMailPort, alertMailUsr, alertMailPwd)
	dial.TLSConfig = &tls.Config{
		InsecureSkipVerify: true,
	}
	err := dial.DialAndSend(msg)
	if err != nil {
		log.Printf("could not send mail alert: %+v", err)
	}
}

func atoi(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}
