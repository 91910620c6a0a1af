// Copyright 2022 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtc

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	// valid reference value, mutated per test case.
	ref := Time{Sec: 30, Min: 30, Hour: 12, Day: 15, Month: 6, Year: 2024}

	for _, tc := range []struct {
		name  string
		mod   func(t *Time)
		field string // empty means valid
	}{
		{name: "ok", mod: func(t *Time) {}},
		{name: "sec-max", mod: func(t *Time) { t.Sec = 59 }},
		{name: "sec-over", mod: func(t *Time) { t.Sec = 60 }, field: "seconds"},
		{name: "min-max", mod: func(t *Time) { t.Min = 59 }},
		{name: "min-over", mod: func(t *Time) { t.Min = 60 }, field: "minutes"},
		{name: "hour-max", mod: func(t *Time) { t.Hour = 23 }},
		{name: "hour-over", mod: func(t *Time) { t.Hour = 24 }, field: "hours"},
		{name: "year-min", mod: func(t *Time) { t.Year = 2000 }},
		{name: "year-under", mod: func(t *Time) { t.Year = 1999 }, field: "year"},
		{name: "year-max", mod: func(t *Time) { t.Year = 2199 }},
		{name: "year-over", mod: func(t *Time) { t.Year = 2200 }, field: "year"},
		{name: "month-zero", mod: func(t *Time) { t.Month = 0 }, field: "month"},
		{name: "month-over", mod: func(t *Time) { t.Month = 13 }, field: "month"},
		{name: "day-zero", mod: func(t *Time) { t.Day = 0 }, field: "day"},
		{name: "jan-31", mod: func(t *Time) { t.Month = 1; t.Day = 31 }},
		{name: "jan-32", mod: func(t *Time) { t.Month = 1; t.Day = 32 }, field: "day"},
		{name: "apr-30", mod: func(t *Time) { t.Month = 4; t.Day = 30 }},
		{name: "apr-31", mod: func(t *Time) { t.Month = 4; t.Day = 31 }, field: "day"},
		{name: "dec-31", mod: func(t *Time) { t.Month = 12; t.Day = 31 }},
		{name: "feb-28", mod: func(t *Time) { t.Month = 2; t.Day = 28; t.Year = 2001 }},
		{name: "feb-29-noleap", mod: func(t *Time) { t.Month = 2; t.Day = 29; t.Year = 2001 }, field: "day"},
		{name: "feb-29-leap", mod: func(t *Time) { t.Month = 2; t.Day = 29; t.Year = 2004 }},
		{name: "feb-29-y400", mod: func(t *Time) { t.Month = 2; t.Day = 29; t.Year = 2000 }},
		{name: "feb-29-y100", mod: func(t *Time) { t.Month = 2; t.Day = 29; t.Year = 2100 }, field: "day"},
		{name: "feb-30-leap", mod: func(t *Time) { t.Month = 2; t.Day = 30; t.Year = 2004 }, field: "day"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			v := ref
			tc.mod(&v)

			err := v.Validate()
			if tc.field == "" {
				if err != nil {
					t.Fatalf("expected a valid time, got: %+v", err)
				}
				return
			}

			if err == nil {
				t.Fatalf("expected an invalid %s", tc.field)
			}

			var ferr *FieldError
			if !errors.As(err, &ferr) {
				t.Fatalf("invalid error type: got=%#v", err)
			}
			if got, want := ferr.Field, tc.field; got != want {
				t.Fatalf("invalid field: got=%q, want=%q", got, want)
			}
		})
	}
}

func TestIsLeap(t *testing.T) {
	for _, tc := range []struct {
		year uint16
		want bool
	}{
		{year: 2000, want: true},
		{year: 2001, want: false},
		{year: 2004, want: true},
		{year: 2096, want: true},
		{year: 2100, want: false},
		{year: 2196, want: true},
	} {
		if got, want := isLeap(tc.year), tc.want; got != want {
			t.Errorf("isLeap(%d): got=%v, want=%v", tc.year, got, want)
		}
	}
}
