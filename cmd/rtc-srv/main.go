// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command rtc-srv starts a TDAQ server steering a DS3231 clock chip, together
// with the TCP text protocol used by rtc-ctl.
package main // import "github.com/go-lpc/ds3231/cmd/rtc-srv"

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/go-daq/tdaq"
	"github.com/go-daq/tdaq/flags"
	"golang.org/x/sync/errgroup"

	"github.com/go-lpc/ds3231/auditdb"
	"github.com/go-lpc/ds3231/rtc"
)

func main() {
	cmd := flags.New()

	log.SetPrefix("rtc-srv: ")
	log.SetFlags(0)

	bus := 1
	if len(cmd.Args) > 0 {
		v, err := strconv.Atoi(cmd.Args[0])
		if err != nil {
			log.Fatalf("could not parse I2C bus %q: %+v", cmd.Args[0], err)
		}
		bus = v
	}

	dev, err := rtc.Open(bus, rtc.DefaultAddr)
	if err != nil {
		log.Fatalf("could not open DS3231 device on bus %d: %+v", bus, err)
	}
	defer dev.Close()

	var adb *auditdb.DB
	if dbname := os.Getenv("RTC_AUDIT_DB"); dbname != "" {
		adb, err = auditdb.Open(dbname)
		if err != nil {
			log.Fatalf("could not open audit db %q: %+v", dbname, err)
		}
		defer adb.Close()
	}

	ctlAddr := os.Getenv("RTC_CTL_ADDR")
	if ctlAddr == "" {
		ctlAddr = ":8877"
	}

	clock := rtc.NewServer(dev, adb)

	srv := tdaq.New(cmd, os.Stdout)
	srv.CmdHandle("/config", clock.OnConfig)
	srv.CmdHandle("/init", clock.OnInit)
	srv.CmdHandle("/reset", clock.OnReset)
	srv.CmdHandle("/start", clock.OnStart)
	srv.CmdHandle("/stop", clock.OnStop)
	srv.CmdHandle("/quit", clock.OnQuit)

	srv.CmdHandle("/get-time", clock.OnGetTime)
	srv.CmdHandle("/set-time", clock.OnSetTime)
	srv.CmdHandle("/uie-on", clock.OnUpdateOn)
	srv.CmdHandle("/uie-off", clock.OnUpdateOff)

	var grp errgroup.Group
	grp.Go(func() error {
		return srv.Run(context.Background())
	})
	grp.Go(func() error {
		return rtc.ServeCtl(ctlAddr, dev, adb)
	})

	err = grp.Wait()
	if err != nil {
		log.Panicf("error: %+v", err)
	}
}
