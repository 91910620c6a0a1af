// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command rtc-ctl is an interactive shell to read and set a DS3231 clock
// served by rtc-srv.
package main // import "github.com/go-lpc/ds3231/cmd/rtc-ctl"

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"strings"

	"github.com/peterh/liner"
)

func main() {
	var (
		addr = flag.String("addr", "localhost:8877", "address of the rtc-srv ctl server")
	)

	log.SetPrefix("rtc-ctl: ")
	log.SetFlags(0)

	flag.Parse()

	err := run(*addr)
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

type request struct {
	Name string   `json:"name"`
	Args []string `json:"args,omitempty"`
}

type reply struct {
	Msg string `json:"msg"`
	Err string `json:"err,omitempty"`
}

func run(addr string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("could not dial %q: %w", addr, err)
	}
	defer conn.Close()

	var (
		enc = json.NewEncoder(conn)
		dec = json.NewDecoder(conn)
	)

	term := liner.NewLiner()
	defer term.Close()

	term.SetCtrlCAborts(true)

	for {
		line, err := term.Prompt("rtc> ")
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Printf("\n")
				return nil
			}
			return fmt.Errorf("could not read line: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		term.AppendHistory(line)

		var req request
		switch {
		case line == "read":
			req = request{Name: "read"}
		case strings.HasPrefix(line, "write "):
			req = request{
				Name: "write",
				Args: []string{strings.TrimSpace(strings.TrimPrefix(line, "write "))},
			}
		case line == "uie-on", line == "uie-off", line == "quit":
			req = request{Name: line}
		case line == "help":
			fmt.Printf(`commands:
  read                       display the current time
  write YYYY-MM-DD HH:MM:SS  set the clock
  uie-on, uie-off            toggle update notifications
  quit                       close the session
`)
			continue
		default:
			log.Printf("unknown command %q (try \"help\")", line)
			continue
		}

		err = enc.Encode(req)
		if err != nil {
			return fmt.Errorf("could not send %q request: %w", req.Name, err)
		}

		var rep reply
		err = dec.Decode(&rep)
		if err != nil {
			return fmt.Errorf("could not decode %q reply: %w", req.Name, err)
		}
		switch {
		case rep.Err != "":
			log.Printf("error: %s", rep.Err)
		case rep.Msg != "":
			fmt.Printf("%s", ensureNL(rep.Msg))
		}

		if req.Name == "quit" {
			return nil
		}
	}
}

func ensureNL(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
