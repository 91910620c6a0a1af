// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command rtc-dump dumps the registers of a DS3231 clock chip.
package main // import "github.com/go-lpc/ds3231/cmd/rtc-dump"

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/go-lpc/ds3231/rtc"
)

func main() {
	var (
		bus  = flag.Int("bus", 1, "I2C bus the DS3231 chip is attached to")
		addr = flag.Int("addr", rtc.DefaultAddr, "I2C address of the DS3231 chip")
	)

	log.SetPrefix("rtc-dump: ")
	log.SetFlags(0)

	flag.Parse()

	dev, err := rtc.Open(*bus, uint8(*addr))
	if err != nil {
		log.Fatalf("could not open device: %+v", err)
	}
	defer dev.Close()

	t, err := dev.Now()
	if err != nil {
		log.Fatalf("could not read time: %+v", err)
	}

	fmt.Printf("------------------------------------------------\n")
	fmt.Printf("%v\n", t)

	err = dev.DumpRegisters(os.Stdout)
	if err != nil {
		log.Fatalf("could not dump registers: %+v", err)
	}
}
