// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"

	"golang.org/x/xerrors"

	"github.com/go-lpc/ds3231/auditdb"
)

// ctlServer exposes the text protocol of a Device over TCP.
// Each accepted connection is one open session on the device: the first
// "read" request yields the current time, subsequent ones report
// end-of-stream until the client reconnects.
type ctlServer struct {
	ctl net.Listener

	msg *log.Logger
	dev *Device
	adb *auditdb.DB
}

// ServeCtl serves the text read/write protocol of dev on addr.
// A non-nil adb records every successful write.
func ServeCtl(addr string, dev *Device, adb *auditdb.DB) error {
	srv, err := newCtlServer(addr, dev, adb)
	if err != nil {
		return fmt.Errorf("rtc: could not create ctl server: %w", err)
	}
	return srv.serve()
}

func newCtlServer(addr string, dev *Device, adb *auditdb.DB) (*ctlServer, error) {
	ctl, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("rtc: could not listen on %q: %w", addr, err)
	}

	srv := &ctlServer{
		ctl: ctl,
		msg: log.New(os.Stdout, "rtc-ctl: ", 0),
		dev: dev,
		adb: adb,
	}
	return srv, nil
}

func (srv *ctlServer) serve() error {
	defer srv.close()

	for {
		conn, err := srv.ctl.Accept()
		if err != nil {
			return fmt.Errorf("rtc: could not accept connection: %w", err)
		}
		go srv.handle(conn)
	}
}

type ctlRequest struct {
	Name string   `json:"name"`
	Args []string `json:"args,omitempty"`
}

type ctlReply struct {
	Msg string `json:"msg"`
	Err string `json:"err,omitempty"`
}

func (srv *ctlServer) handle(conn net.Conn) {
	defer conn.Close()
	srv.msg.Printf("serving %v...", conn.RemoteAddr())
	defer srv.msg.Printf("serving %v... [done]", conn.RemoteAddr())

	f := srv.dev.OpenFile()
	defer f.Close()

	for {
		var req ctlRequest
		err := json.NewDecoder(conn).Decode(&req)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			srv.msg.Printf("could not decode request: %+v", err)
			srv.reply(conn, "", err)
			continue
		}

		switch strings.ToLower(req.Name) {
		case "read":
			buf := make([]byte, maxStampLen)
			n, err := f.Read(buf)
			if err != nil && !errors.Is(err, io.EOF) {
				srv.msg.Printf("could not read time: %+v", err)
				srv.reply(conn, "", err)
				continue
			}
			srv.reply(conn, string(buf[:n]), nil)

		case "write":
			if len(req.Args) == 0 {
				srv.reply(conn, "", xerrors.Errorf(
					"rtc: missing date-time argument: %w", ErrFormat,
				))
				continue
			}

			var old Time
			if srv.adb != nil {
				old, _ = srv.dev.Now()
			}

			_, err := f.Write([]byte(req.Args[0]))
			if err != nil {
				srv.msg.Printf("could not write time: %+v", err)
				srv.reply(conn, "", err)
				continue
			}
			srv.msg.Printf("time set to %q", req.Args[0])
			srv.record(old, req.Args[0])
			srv.reply(conn, "ok", nil)

		case "uie-on":
			srv.reply(conn, "ok", f.Control(CmdUpdateOn, nil))

		case "uie-off":
			srv.reply(conn, "ok", f.Control(CmdUpdateOff, nil))

		case "quit":
			srv.reply(conn, "ok", nil)
			return

		default:
			srv.msg.Printf("unknown request name=%q, args=%q", req.Name, req.Args)
			srv.reply(conn, "", fmt.Errorf("rtc: unknown request %q", req.Name))
		}
	}
}

func (srv *ctlServer) record(old Time, stamp string) {
	if srv.adb == nil {
		return
	}

	t, err := parseStamp([]byte(stamp))
	if err != nil {
		return
	}
	err = srv.adb.Record(context.Background(), auditdb.Adjustment{
		Old:    old.String(),
		New:    t.String(),
		Source: "ctl",
	})
	if err != nil {
		srv.msg.Printf("could not record time adjustment: %+v", err)
	}
}

func (srv *ctlServer) reply(conn net.Conn, msg string, err error) {
	rep := ctlReply{Msg: msg}
	if err != nil {
		rep.Msg = ""
		rep.Err = fmt.Sprintf("%+v", err)
	}

	_ = json.NewEncoder(conn).Encode(rep)
}

func (srv *ctlServer) close() {
	_ = srv.ctl.Close()
}
