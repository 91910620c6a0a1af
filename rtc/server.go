// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtc

import (
	"github.com/go-daq/tdaq"
	"golang.org/x/xerrors"

	"github.com/go-lpc/ds3231/auditdb"
)

// Server exposes a Device through TDAQ commands: /get-time replies with
// the binary encoding of the current Time, /set-time decodes a Time from
// the request frame and writes it to the chip, /uie-on and /uie-off are
// acknowledged without effect.
type Server struct {
	dev *Device
	adb *auditdb.DB // optional audit trail of set-time operations
}

// NewServer wraps dev. A non-nil adb records every successful /set-time.
func NewServer(dev *Device, adb *auditdb.DB) *Server {
	return &Server{dev: dev, adb: adb}
}

func (srv *Server) OnConfig(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /config command...")
	return nil
}

func (srv *Server) OnInit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /init command...")
	return nil
}

func (srv *Server) OnReset(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /reset command...")
	return nil
}

func (srv *Server) OnStart(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /start command...")
	return nil
}

func (srv *Server) OnStop(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /stop command...")
	return nil
}

func (srv *Server) OnQuit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /quit command...")
	return nil
}

func (srv *Server) OnGetTime(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /get-time command...")

	t, err := srv.dev.Now()
	if err != nil {
		ctx.Msg.Errorf("could not read time: %+v", err)
		return xerrors.Errorf("could not read time: %w", err)
	}

	raw, err := t.MarshalBinary()
	if err != nil {
		ctx.Msg.Errorf("could not encode time: %+v", err)
		return xerrors.Errorf("could not encode time: %w", err)
	}
	resp.Body = raw

	return nil
}

func (srv *Server) OnSetTime(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /set-time command...")

	var t Time
	err := t.UnmarshalBinary(req.Body)
	if err != nil {
		ctx.Msg.Errorf("could not decode time: %+v", err)
		return xerrors.Errorf("could not decode time: %w", err)
	}

	var old Time
	if srv.adb != nil {
		// best effort: the audit record carries a zero old-time when
		// the chip content could not be decoded.
		old, _ = srv.dev.Now()
	}

	err = srv.dev.SetTime(t)
	if err != nil {
		ctx.Msg.Errorf("could not set time to %v: %+v", t, err)
		return xerrors.Errorf("could not set time to %v: %w", t, err)
	}
	ctx.Msg.Infof("time set to %v", t)

	if srv.adb != nil {
		err = srv.adb.Record(ctx.Ctx, auditdb.Adjustment{
			Old:    old.String(),
			New:    t.String(),
			Source: "tdaq",
		})
		if err != nil {
			ctx.Msg.Errorf("could not record time adjustment: %+v", err)
		}
	}

	return nil
}

func (srv *Server) OnUpdateOn(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Infof("received /uie-on command... acknowledged (no-op)")
	return nil
}

func (srv *Server) OnUpdateOff(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Infof("received /uie-off command... acknowledged (no-op)")
	return nil
}
